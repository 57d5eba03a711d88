// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"codeberg.org/ride/inlinetranslator/core/cookie"
	"codeberg.org/ride/inlinetranslator/core/untrusted"
)

type tagKey struct{}

// LangParam is the name of the URL query parameter used by HTTP helpers to read
// a preferred UI language as a BCP 47 tag. The cookie counterpart is [cookie.LangCookie].
const LangParam = "lang"

// WithTag returns a context carrying t. The zero tag clears any previous value.
func WithTag(ctx context.Context, t language.Tag) context.Context {
	return context.WithValue(ctx, tagKey{}, t)
}

// TagFrom returns the tag stored in ctx, or the [BaseLocale] tag. ctx may be nil.
func TagFrom(ctx context.Context) language.Tag {
	if ctx != nil {
		if t, _ := ctx.Value(tagKey{}).(language.Tag); t != (language.Tag{}) {
			return t
		}
	}

	return baseTag
}

// FromRequest picks the UI language for r from, in order, the [LangParam]
// query parameter, the [cookie.LangCookie] cookie and the Accept-Language
// header. A "lang=auto" query ignores the cookie.
//
// Before Setup, or for a nil r, it returns the [BaseLocale] tag.
func FromRequest(r *http.Request) language.Tag {
	if r == nil || matcher == nil {
		return baseTag
	}

	var preferred []string

	switch q := r.URL.Query().Get(LangParam); {
	case strings.EqualFold(q, "auto"):
	case q != "":
		preferred = append(preferred, q)

		fallthrough
	default:
		if c := untrusted.GetCookie(r, cookie.LangCookie); c != "" {
			preferred = append(preferred, c)
		}
	}

	if al := r.Header.Get("Accept-Language"); al != "" {
		preferred = append(preferred, al)
	}

	tag, _ := language.MatchStrings(matcher, preferred...)

	return language.Make(strippedTagString(tag))
}

// WithRequest is WithTag(ctx, FromRequest(r)).
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return WithTag(ctx, FromRequest(r))
}
