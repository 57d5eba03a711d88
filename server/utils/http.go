// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"crypto/tls"
	"net/http"
	"net/netip"
	"time"
)

const (
	maxIdleConnsPerHost = 20
	clientTimeout       = 15 * time.Second
)

// HTTPClient is the default client of the translator API client.
var HTTPClient = &http.Client{
	Timeout: clientTimeout,
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
	},
}

// IsConnectionSecure reports whether the client reached us over TLS. An
// X-Forwarded-Proto of https counts only when the peer is a private or
// loopback address, such as a reverse proxy on the same network.
func IsConnectionSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}

	peer, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		return false
	}

	addr := peer.Addr().Unmap()

	return (addr.IsPrivate() || addr.IsLoopback()) && r.Header.Get("X-Forwarded-Proto") == "https"
}
