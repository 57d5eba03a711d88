// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"runtime/debug"
	"strings"
)

// BuildVersion is the latest tagged release of the inline translator.
const BuildVersion string = "v0.4.0"

// buildInfo is the VCS stamp the Go toolchain embeds in the binary.
type buildInfo struct {
	VcsRevision string
	VcsTime     string
	VcsModified bool
}

// Revision formats the stamp as "2025-01-31-0123abcd", with "+dirty" for
// modified trees, or "unknown" for unstamped builds such as go test.
func (b *buildInfo) Revision() string {
	if len(b.VcsRevision) < 8 {
		return "unknown"
	}

	date, _, _ := strings.Cut(b.VcsTime, "T")

	rev := date + "-" + b.VcsRevision[:8]
	if b.VcsModified {
		rev += "+dirty"
	}

	return rev
}

func (b *buildInfo) load() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.VcsRevision = s.Value
		case "vcs.time":
			b.VcsTime = s.Value
		case "vcs.modified":
			b.VcsModified = s.Value == "true"
		}
	}
}
