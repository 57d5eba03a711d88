// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

const (
	// poDomain is the gettext domain loaded for each locale.
	poDomain = "inline-translator"

	poDir = "po"
)

var (
	// localesByTag maps canonical BCP 47 tags to their loaded gotext.Locale.
	localesByTag map[string]*gotext.Locale

	// supportedTags lists the base tag followed by every loaded tag.
	supportedTags []language.Tag

	matcher language.Matcher
)

// Setup loads the catalogues found under po/ in fsys:
//
//	po/<locale>.po
//
// The locale part may use hyphens or underscores. The template
// po/inline-translator.pot is ignored. [BaseLocale] is always supported and is
// the fallback for matching. Calling Setup again replaces what was loaded.
func Setup(fsys fs.FS) error {
	Logger = log.With().Str("sys", "i18n").Logger()

	entries, err := fs.ReadDir(fsys, poDir)
	if err != nil {
		return fmt.Errorf("failed to read po directory: %w", err)
	}

	loaded := make(map[string]*gotext.Locale)

	var tags []language.Tag

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".po") {
			continue
		}

		t, err := language.Parse(strings.ReplaceAll(strings.TrimSuffix(name, ".po"), "_", "-"))
		if err != nil {
			Logger.Warn().Err(err).Str("file", name).Msg("Skipping invalid locale file")

			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(poDir, name))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		po := gotext.NewPo()
		po.Parse(data)

		canonical := t.String()

		loc := gotext.NewLocale("", canonical)
		loc.AddTranslator(poDomain, po)

		loaded[canonical] = loc
		tags = append(tags, t)

		Logger.Info().Str("locale", canonical).Msg("Loaded locale")
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].String() < tags[j].String() })

	all := make([]language.Tag, 0, len(tags)+1)
	all = append(all, baseTag)

	for _, t := range tags {
		if t != baseTag {
			all = append(all, t)
		}
	}

	localesByTag = loaded
	supportedTags = all
	matcher = language.NewMatcher(all)

	return nil
}
