// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"net/url"

	"codeberg.org/ride/inlinetranslator/core/translator"
	"codeberg.org/ride/inlinetranslator/i18n"
	"codeberg.org/ride/inlinetranslator/server/request_context"
	"codeberg.org/ride/inlinetranslator/server/utils"
)

type menuItem struct {
	Label   string `json:"label"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

// Toggle flips translator mode and sends the user back to the referer query
// parameter without its query string.
func (api *API) Toggle(w http.ResponseWriter, r *http.Request) error {
	if _, err := api.Manager.Toggle(r.Context(), request_context.FromRequest(r).User); err != nil {
		return err
	}

	http.Redirect(w, r, utils.ReturnPath(r.URL.Query().Get("referer"), r.Host), http.StatusSeeOther)

	return nil
}

// Menu describes the toggle entry for the current page.
func (api *API) Menu(w http.ResponseWriter, r *http.Request) error {
	enabled, err := api.Manager.Enabled(r.Context(), request_context.FromRequest(r).User)
	if err != nil {
		return err
	}

	referer := r.URL.Query().Get("referer")
	if referer == "" {
		referer = r.Header.Get("Referer")
	}

	return WriteJSON(w, http.StatusOK, api.menuItem(r, enabled, utils.ReturnPath(referer, r.Host)))
}

func (api *API) menuItem(r *http.Request, enabled bool, returnPath string) menuItem {
	label := i18n.EnableTranslator
	if enabled {
		label = i18n.DisableTranslator
	}

	return menuItem{
		Label:   label.Tr(r.Context()),
		URL:     api.TogglePath + "?referer=" + url.QueryEscape(returnPath),
		Enabled: enabled,
	}
}

// Locales lists the configured locales.
func (api *API) Locales(w http.ResponseWriter, _ *http.Request) error {
	return WriteJSON(w, http.StatusOK, struct {
		Default string              `json:"default"`
		Locales []translator.Locale `json:"locales"`
	}{
		Default: api.Manager.Default().Code,
		Locales: api.Manager.Locales(),
	})
}
