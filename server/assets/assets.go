// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package assets provides access to the application's embedded static assets.

The main package assigns FS at start-up. Tests may assign an fstest.MapFS.
*/
package assets

import (
	"io/fs"
	"net/http"
)

// FS provides access to the embedded file system.
var FS fs.FS

// StaticHandler serves the files below dir in FS.
func StaticHandler(dir string) (http.Handler, error) {
	sub, err := fs.Sub(FS, dir)
	if err != nil {
		return nil, err
	}

	return http.FileServerFS(sub), nil
}
