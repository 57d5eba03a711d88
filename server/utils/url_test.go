// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/ride/inlinetranslator/server/utils"
)

func TestParseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		expected string
	}{
		{"Valid URL", "https://example.com", false, "https://example.com"},
		{"Trailing slash", "https://example.com/api/v1/i18n/", false, "https://example.com/api/v1/i18n"},
		{"Missing scheme", "example.com", true, ""},
		{"Missing host", "https://", true, ""},
		{"Empty URL", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := utils.ParseURL(tt.urlStr, "Test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("utils.ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && got.String() != tt.expected {
				t.Errorf("utils.ParseURL() got = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReturnPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		referer string
		want    string
	}{
		{"/admin/page?tab=2", "/admin/page"},
		{"/admin/page#top", "/admin/page"},
		{"http://example.com/admin?x=1", "/admin"},
		{"https://evil.example/phish", "/"},
		{"//evil.example/phish", "/"},
		{"/\\evil.example", "/"},
		{"relative/path", "/"},
		{"", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.referer, func(t *testing.T) {
			t.Parallel()

			if got := utils.ReturnPath(tt.referer, "example.com"); got != tt.want {
				t.Errorf("utils.ReturnPath(%q) = %q, want %q", tt.referer, got, tt.want)
			}
		})
	}
}

func TestIsConnectionSecure(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:1234"

	if utils.IsConnectionSecure(r) {
		t.Error("plain request reported as secure")
	}

	r.Header.Set("X-Forwarded-Proto", "https")

	if !utils.IsConnectionSecure(r) {
		t.Error("forwarded https from a private proxy reported as insecure")
	}

	r.RemoteAddr = "[::1]:1234"

	if !utils.IsConnectionSecure(r) {
		t.Error("forwarded https from a loopback proxy reported as insecure")
	}

	r.RemoteAddr = "203.0.113.7:1234"

	if utils.IsConnectionSecure(r) {
		t.Error("forwarded header from a public address must not be trusted")
	}
}
