// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package cookie defines the cookie names used by the inline translator.
*/
package cookie

type CookieName string

const (
	// AccessCookie holds the signed v4.public user token.
	AccessCookie CookieName = "L10N-Access" // #nosec:G101 - false positive

	// LangCookie overrides the UI language.
	LangCookie CookieName = "Lang"
)

// AllCookieNames lists every cookie this application sets.
var AllCookieNames = []CookieName{
	AccessCookie,
	LangCookie,
}

// IsHttpOnly reports whether scripts must not read the cookie.
func IsHttpOnly(name CookieName) bool {
	return name == AccessCookie
}
