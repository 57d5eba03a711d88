// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package untrusted

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/ride/inlinetranslator/core/cookie"
	"codeberg.org/ride/inlinetranslator/server/utils"
)

// SameSite=Lax keeps the access cookie on top-level navigations from other sites.
const CookieSameSite = http.SameSiteLaxMode

const cookieMaxAge = 30 * 24 * time.Hour

// newCookie builds a site-wide cookie. value must already be escaped.
func newCookie(r *http.Request, name cookie.CookieName, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     string(name),
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   utils.IsConnectionSecure(r),
		HttpOnly: cookie.IsHttpOnly(name),
		SameSite: CookieSameSite,
	}
}

// GetCookie returns the unescaped cookie value, or "" when the cookie is
// missing or malformed.
func GetCookie(r *http.Request, name cookie.CookieName) string {
	c, err := r.Cookie(string(name))
	if err != nil {
		return ""
	}

	value, _ := url.QueryUnescape(c.Value)

	return value
}

// SetCookie stores value for cookieMaxAge. An empty value clears the cookie.
func SetCookie(w http.ResponseWriter, r *http.Request, name cookie.CookieName, value string) {
	if value == "" {
		ClearCookie(w, r, name)

		return
	}

	http.SetCookie(w, newCookie(r, name, url.QueryEscape(value), int(cookieMaxAge/time.Second)))
}

func ClearCookie(w http.ResponseWriter, r *http.Request, name cookie.CookieName) {
	http.SetCookie(w, newCookie(r, name, "", -1))
}

// GetUserToken returns the bearer token of the Authorization header, or
// the access cookie when there is none.
func GetUserToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	return GetCookie(r, cookie.AccessCookie)
}
