// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const nlPo = `msgid ""
msgstr ""
"Language: nl\n"
"Plural-Forms: nplurals=2; plural=(n != 1);\n"

msgid "Save"
msgstr "Opslaan"

msgid "Hide translated"
msgstr "Vertaalde verbergen"

msgid "Welcome, {{.Name}}!"
msgstr "Welkom, {{.Name}}!"

msgid "{{.Count}} key"
msgid_plural "{{.Count}} keys"
msgstr[0] "{{.Count}} sleutel"
msgstr[1] "{{.Count}} sleutels"
`

func testCatalogues() fstest.MapFS {
	return fstest.MapFS{
		"po/nl.po":                 {Data: []byte(nlPo)},
		"po/inline-translator.pot": {Data: []byte(`msgid ""`)},
		"po/not a locale.po":       {Data: []byte(`msgid ""`)},
	}
}

// The tests below share package state through Setup and therefore do not run in parallel.

func TestMsgKeyAsComponent(t *testing.T) {
	var _ templ.Component = MsgKey("foo")
}

func TestSetupAndTranslate(t *testing.T) {
	require.NoError(t, Setup(testCatalogues()))

	assert.Equal(t, []language.Tag{language.English, language.Dutch}, Languages())

	nl := WithTag(context.Background(), language.Dutch)

	assert.Equal(t, "Opslaan", Save.Tr(nl))
	assert.Equal(t, "Save", Save.Tr(context.Background()))
	assert.Equal(t, "Welkom, Ada!", Tr(nl, "Welcome, {{.Name}}!", "Name", "Ada"))
	assert.Equal(t, "3 sleutels", TrN(nl, "{{.Count}} key", "{{.Count}} keys", 3, "Count", 3))
	assert.Equal(t, "1 key", TrN(context.Background(), "{{.Count}} key", "{{.Count}} keys", 1, "Count", 1))

	// Unknown msgids fall back to the msgid.
	assert.Equal(t, "Cancel", Cancel.Tr(nl))

	var buf bytes.Buffer
	require.NoError(t, HideTranslated.Render(nl, &buf))
	assert.Equal(t, "Vertaalde verbergen", buf.String())
}

func TestFromRequest(t *testing.T) {
	require.NoError(t, Setup(testCatalogues()))

	tests := []struct {
		name   string
		url    string
		cookie string
		accept string
		want   language.Tag
	}{
		{"accept header", "/", "", "nl-BE,nl;q=0.9", language.Dutch},
		{"query wins", "/?lang=en", "nl", "nl", language.English},
		{"cookie", "/", "nl", "en", language.Dutch},
		{"auto ignores cookie", "/?lang=auto", "nl", "en", language.English},
		{"unsupported", "/", "", "ja", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "Lang", Value: tt.cookie})
			}

			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}

			assert.Equal(t, tt.want, FromRequest(r))
		})
	}
}

func TestUserError(t *testing.T) {
	require.NoError(t, Setup(testCatalogues()))

	err := NewUserError(WithTag(context.Background(), language.Dutch), string(Save))
	assert.Equal(t, "Opslaan", err.Error())
}
