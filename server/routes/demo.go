// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"html"
	"net/http"

	"golang.org/x/text/language"

	"codeberg.org/ride/inlinetranslator/server/request_context"
)

// Keys rendered by the demonstration page.
const (
	DemoTitleKey    = "app.title"
	DemoGreetingKey = "greeting.hello"
	DemoFooterKey   = "app.footer"
)

const guestName = "guest"

// DemoPage renders a page through the translator of the current user, so
// markers appear once translator mode is on.
//
// The locale is the locale query parameter, or the best match for Accept-Language.
func (api *API) DemoPage(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	rc := request_context.FromRequest(r)

	code := r.URL.Query().Get("locale")
	if code == "" {
		tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
		code = api.Manager.Match(tags...).Code
	}

	tr, err := api.Manager.Translator(ctx, code, rc.User)
	if err != nil {
		return err
	}

	name := guestName
	if rc.User != nil {
		name = rc.User.Name
	}

	data := demoPageData{
		Lang:     tr.Locale(),
		Title:    "Inline translator",
		Heading:  tr.Translate(ctx, DemoTitleKey, nil),
		Greeting: tr.Translate(ctx, DemoGreetingKey, map[string]string{"name": html.EscapeString(name)}),
		Footer:   tr.Translate(ctx, DemoFooterKey, nil),
	}

	if api.Manager.Authorized(rc.User) {
		enabled, err := api.Manager.Enabled(ctx, rc.User)
		if err != nil {
			return err
		}

		item := api.menuItem(r, enabled, r.URL.Path)
		data.Menu = &item
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	return demoView(data).Render(ctx, w)
}
