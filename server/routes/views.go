// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

// demoPageData holds translator output. Heading, Greeting and Footer are
// HTML and may contain markers.
type demoPageData struct {
	Lang     string
	Title    string
	Heading  string
	Greeting string
	Footer   string
	Menu     *menuItem
}

func demoView(data demoPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			"<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
			templ.EscapeString(data.Lang), templ.EscapeString(data.Title)); err != nil {
			return err
		}

		if data.Menu != nil {
			if _, err := fmt.Fprintf(w, "<nav><a class=\"translator_toggle\" href=\"%s\">%s</a></nav>\n",
				templ.EscapeString(data.Menu.URL), templ.EscapeString(data.Menu.Label)); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w,
			"<main>\n<h1>%s</h1>\n<p>%s</p>\n</main>\n<footer>%s</footer>\n</body>\n</html>\n",
			data.Heading, data.Greeting, data.Footer)

		return err
	})
}

func errorView(lang string, status int, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := strconv.Itoa(status) + " " + http.StatusText(status)

		_, err := fmt.Fprintf(w,
			"<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n<h1>%s</h1>\n<p class=\"error\">%s</p>\n</body>\n</html>\n",
			templ.EscapeString(lang), templ.EscapeString(title), templ.EscapeString(title), templ.EscapeString(message))

		return err
	})
}
