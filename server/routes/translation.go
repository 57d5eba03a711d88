// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"codeberg.org/ride/inlinetranslator/core/translator"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

// API serves the endpoints used by the translation widget.
type API struct {
	Manager *translator.Manager

	// TogglePath is the path of the translator mode toggle.
	TogglePath string
}

type saveRequest struct {
	Translations map[string]string `json:"translations"`
}

type saveResponse struct {
	Translation string `json:"translation"`
}

// GetTranslation answers with the variant of {key} for every configured locale.
func (api *API) GetTranslation(w http.ResponseWriter, r *http.Request) error {
	variants, err := api.Manager.Variants(r.Context(), r.PathValue("key"))
	if err != nil {
		return err
	}

	return WriteJSON(w, http.StatusOK, variants)
}

// PostTranslation stores the submitted values of {key} and answers with the
// text now resolved for {locale}.
func (api *API) PostTranslation(w http.ResponseWriter, r *http.Request) error {
	values, err := readTranslations(w, r)
	if err != nil {
		return err
	}

	text, err := api.Manager.Save(r.Context(), r.PathValue("locale"), r.PathValue("key"), values)
	if err != nil {
		return err
	}

	return WriteJSON(w, http.StatusOK, saveResponse{Translation: text})
}

// readTranslations accepts {"translations":{locale:value}} as JSON or
// translations[locale]=value as a form.
func readTranslations(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var body saveRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}

		return body.Translations, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	values := make(map[string]string)

	for name, fieldValues := range r.PostForm {
		locale, ok := strings.CutPrefix(name, "translations[")
		if !ok {
			continue
		}

		locale, ok = strings.CutSuffix(locale, "]")
		if !ok || locale == "" || len(fieldValues) == 0 {
			continue
		}

		values[locale] = fieldValues[len(fieldValues)-1]
	}

	return values, nil
}
