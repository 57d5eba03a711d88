// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware provides the HTTP middleware chain and the handler
adapters that turn returned errors into responses.

A Middleware receives the next handler explicitly. Routes are registered in
the router package.
*/
package middleware
