// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"strings"

	"codeberg.org/ride/inlinetranslator/config"
)

var (
	// baseHeaders defines the default headers to be set in responses.
	//
	// L10n-Version and L10n-Revision are added dynamically in SetResponseHeaders.
	baseHeaders = http.Header{
		"Referrer-Policy":        {"same-origin"},
		"X-Frame-Options":        {"DENY"},
		"X-Content-Type-Options": {"nosniff"},
		"Permissions-Policy":     {strings.Join(defaultPermissionsPolicy, ", ")},
	}

	defaultPermissionsPolicy = []string{
		"camera=()",
		"display-capture=()",
		"geolocation=()",
		"microphone=()",
		"payment=()",
		"usb=()",
	}
)

// SetResponseHeaders adds default headers to HTTP responses.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	headers := w.Header()

	maps.Insert(headers, maps.All(baseHeaders))

	setCacheControl(headers, r.URL.Path)

	headers.Set("L10n-Version", config.BuildVersion)
	headers.Set("L10n-Revision", config.Global.Build.Revision())
	headers.Set("Content-Security-Policy", buildCSP())

	next.ServeHTTP(w, r)
}

// setCacheControl sets cache control headers. Handlers may override them.
func setCacheControl(headers http.Header, path string) {
	cacheDuration := "private, no-cache"

	if !config.Global.Development.InDevelopment &&
		(strings.HasPrefix(path, "/js/") || strings.HasPrefix(path, "/css/")) {
		cacheDuration = "max-age=604800"
	}

	headers.Set("Cache-Control", cacheDuration)
}

func buildCSP() string {
	directives := []string{
		"base-uri 'self'",
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"form-action 'self'",
	}

	scriptSrc := "script-src 'self'"
	if origin := scriptOrigin(config.Global.Assets.ScriptURL); origin != "" {
		scriptSrc += " " + origin
	}

	directives = append(directives, scriptSrc)

	return strings.Join(directives, "; ") + ";"
}

// scriptOrigin returns the scheme and host of an absolute script URL.
func scriptOrigin(scriptURL string) string {
	scheme, rest, ok := strings.Cut(scriptURL, "://")
	if !ok || scheme == "" {
		return ""
	}

	host, _, _ := strings.Cut(rest, "/")

	return scheme + "://" + host
}
