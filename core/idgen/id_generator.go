// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package idgen creates request identifiers.
package idgen

import (
	"github.com/rs/xid"
)

// Make returns a new globally unique, time-sortable 20 character ID.
func Make() string {
	return xid.New().String()
}
