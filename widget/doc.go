// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package widget edits translations in place on a rendered page.

A Registry indexes the translation markers of a dom.Document and renders
the panel listing them. A Controller drives the edit overlay on top of the
registry: it opens a key, shows one input per locale and saves the values
through the translator API.

The Controller serializes every access to the document. Network calls run
outside its lock and their results are applied only if the session they
belong to is still current.
*/
package widget
