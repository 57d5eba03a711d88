// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package untrusted reads and writes state the user agent controls: cookies and
request headers. Values read here can be anything.
*/
package untrusted
