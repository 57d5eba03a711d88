// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package widget

import "github.com/PuerkitoBio/goquery"

// Entry is one translation key found on the page.
type Entry struct {
	Key         string
	Locale      string
	DisplayText string

	// Marker is the first element that carries the key.
	Marker *goquery.Selection
}

// NewEntry returns the entry for a marker.
func NewEntry(key, locale, displayText string, marker *goquery.Selection) *Entry {
	return &Entry{
		Key:         key,
		Locale:      locale,
		DisplayText: displayText,
		Marker:      marker,
	}
}
