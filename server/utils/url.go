// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseURL parses an absolute URL with scheme and host and drops a trailing slash.
func ParseURL(urlStr, urlType string) (*url.URL, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s URL: %w", urlType, err)
	}

	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf(
			"%s URL is invalid: %s. Please specify a complete URL with scheme and host, e.g. https://example.com",
			urlType,
			urlStr)
	}

	parsedURL.Path = strings.TrimSuffix(parsedURL.Path, "/")

	return parsedURL, nil
}

// SanitizeReturnPath ensures that s is a same-origin absolute path (no scheme
// or host). It returns "" when s is unsafe; callers should fall back to "/".
func SanitizeReturnPath(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/\\") {
		return ""
	}

	if !strings.HasPrefix(s, "/") {
		return ""
	}

	return s
}

// StripQuery removes the query string and fragment from a path.
func StripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}

	return s
}

// ReturnPath turns a referer value into a safe redirect target: a same-origin
// path without query string, or "/" when the value cannot be used.
//
// Absolute referers are accepted when their host equals host.
func ReturnPath(referer, host string) string {
	if u, err := url.Parse(strings.TrimSpace(referer)); err == nil && u.IsAbs() {
		if u.Host != host {
			return "/"
		}

		referer = u.EscapedPath()
	}

	if p := SanitizeReturnPath(StripQuery(referer)); p != "" {
		return p
	}

	return "/"
}
