// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net/http"
	"net/netip"
	"strings"
)

// clientAddr returns the address of the client.
//
// X-Real-IP and then the last hop of X-Forwarded-For are honoured only when
// the peer is on a private or loopback network.
func clientAddr(r *http.Request) (netip.Addr, bool) {
	var peer netip.Addr

	if addrPort, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		peer = addrPort.Addr()
	} else if addr, err := netip.ParseAddr(r.RemoteAddr); err == nil {
		peer = addr
	}

	peer = peer.Unmap()

	if peer.IsValid() && (peer.IsPrivate() || peer.IsLoopback()) {
		if forwarded, ok := forwardedAddr(r.Header); ok {
			return forwarded, true
		}
	}

	return peer, peer.IsValid()
}

func forwardedAddr(h http.Header) (netip.Addr, bool) {
	if addr, err := netip.ParseAddr(strings.TrimSpace(h.Get("X-Real-IP"))); err == nil {
		return addr.Unmap(), true
	}

	if xff := h.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")

		if addr, err := netip.ParseAddr(strings.TrimSpace(hops[len(hops)-1])); err == nil {
			return addr.Unmap(), true
		}
	}

	return netip.Addr{}, false
}

// networkOf masks addr to IPv4Prefix or IPv6Prefix bits.
func networkOf(addr netip.Addr) netip.Prefix {
	bits := IPv6Prefix
	if addr.Is4() {
		bits = IPv4Prefix
	}

	prefix, _ := addr.Prefix(bits)

	return prefix
}
