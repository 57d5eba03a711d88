// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package translation defines the translation model shared by the server, the
API client and the inline widget, and the contract every translation backend
implements.

Translations are keyed by (locale, key). Keys are stable dot-delimited
identifiers such as "app.title". A key without a stored value for a locale is
not an error: it renders as the bracketed placeholder returned by [Placeholder].

Backends live in subpackages:

  - filestore: one JSON or YAML file per locale
  - sqlitestore: an SQLite database
  - pgstore: a PostgreSQL database
  - lrucache: a read-through cache in front of any other Store
*/
package translation
