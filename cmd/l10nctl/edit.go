// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"codeberg.org/ride/inlinetranslator/client"
	"codeberg.org/ride/inlinetranslator/server/utils"
	"codeberg.org/ride/inlinetranslator/widget"
	"codeberg.org/ride/inlinetranslator/widget/dom"
)

var (
	errAPIRequired = errors.New("edit: -api is required")
	errPageArg     = errors.New("edit: expected exactly one page URL or file")
	errKeyRequired = errors.New("edit: -key or -list is required")
	errBadSet      = errors.New("edit: -set wants locale=value")
	errPageStatus  = errors.New("edit: unexpected page status")
)

// runEdit loads a rendered page, opens one of its keys in the overlay and
// saves the given values. With -list it prints the keys of the page instead.
func runEdit(ctx context.Context, args []string, stdout io.Writer) error {
	var sets listFlag

	fs := newFlagSet("edit")
	apiURL := fs.String("api", "", "base URL of the translator API, e.g. https://example.org/api/v1/i18n")
	token := fs.String("token", "", "user token")
	cookie := fs.Bool("cookie", false, "send the token as the access cookie instead of a bearer token")
	key := fs.String("key", "", "translation key to edit")
	locale := fs.String("locale", "", "page locale, defaults to the locale of the marker")
	list := fs.Bool("list", false, "print the translation keys of the page and exit")
	fs.Var(&sets, "set", "locale=value to save, repeatable")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return errPageArg
	}

	if *apiURL == "" && !*list {
		return errAPIRequired
	}

	if *key == "" && !*list {
		return errKeyRequired
	}

	values := make(map[string]string, len(sets))

	for _, set := range sets {
		code, value, ok := strings.Cut(set, "=")
		if !ok || code == "" {
			return fmt.Errorf("%w: %q", errBadSet, set)
		}

		values[code] = value
	}

	doc, err := loadPage(ctx, fs.Arg(0), *token)
	if err != nil {
		return err
	}

	var api widget.API

	if !*list {
		opts := []client.Option{client.WithBearerToken(*token)}
		if *cookie {
			opts = []client.Option{client.WithAccessCookie(*token)}
		}

		api, err = client.New(*apiURL, opts...)
		if err != nil {
			return err
		}
	}

	controller := widget.NewController(ctx, doc, widget.Options{API: api, Locale: *locale})
	if err := controller.Start(); err != nil {
		return err
	}

	if *list {
		for _, entry := range controller.Registry().Entries() {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", entry.Key, entry.Locale, entry.DisplayText)
		}

		return nil
	}

	if err := controller.Open(ctx, *key); err != nil {
		return err
	}

	for code, value := range values {
		if err := controller.SetValue(code, value); err != nil {
			controller.Cancel()

			return err
		}
	}

	if err := controller.Save(ctx); err != nil {
		controller.Cancel()

		return err
	}

	entry, _ := controller.Registry().Entry(*key)
	fmt.Fprintf(stdout, "%s\t%s\n", entry.Key, entry.DisplayText)

	return nil
}

// loadPage reads an http(s) URL with the user token, or a local file.
func loadPage(ctx context.Context, target, token string) (*dom.Document, error) {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		f, err := os.Open(target)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return dom.Parse(f)
	}

	pageURL, err := utils.ParseURL(target, "page")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := utils.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", errPageStatus, resp.Status)
	}

	return dom.Parse(resp.Body)
}
