// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package security

// MatchPath reports whether path matches pattern.
//
// In pattern, "**" matches any sequence of characters including slashes and
// "*" matches any sequence without a slash. Every other byte matches itself.
// "/l10n**" therefore covers "/l10n", "/l10n/translator/toggle" and
// "/l10nfoo".
func MatchPath(pattern, path string) bool {
	for len(pattern) > 0 {
		if pattern[0] != '*' {
			if len(path) == 0 || path[0] != pattern[0] {
				return false
			}

			pattern, path = pattern[1:], path[1:]

			continue
		}

		deep := len(pattern) > 1 && pattern[1] == '*'
		if deep {
			pattern = pattern[2:]
		} else {
			pattern = pattern[1:]
		}

		for i := 0; i <= len(path); i++ {
			if MatchPath(pattern, path[i:]) {
				return true
			}

			if i < len(path) && path[i] == '/' && !deep {
				return false
			}
		}

		return false
	}

	return len(path) == 0
}
