// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"bytes"
	"maps"
	"mime"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"codeberg.org/ride/inlinetranslator/core/translator"
	"codeberg.org/ride/inlinetranslator/server/request_context"
)

// InjectAssets adds the widget stylesheet and script to HTML pages served to
// authorized users with translator mode on. Other responses pass untouched.
func InjectAssets(manager *translator.Manager, styleURL, scriptURL string) Middleware {
	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		user := request_context.FromRequest(r).User

		if r.Method != http.MethodGet || !manager.Authorized(user) {
			next.ServeHTTP(w, r)

			return
		}

		enabled, err := manager.Enabled(r.Context(), user)
		if err != nil || !enabled {
			next.ServeHTTP(w, r)

			return
		}

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, r)

		body := recorder.Body.Bytes()

		mediaType, _, _ := mime.ParseMediaType(recorder.Header().Get("Content-Type"))
		if mediaType == "text/html" && recorder.Code == http.StatusOK {
			if injected, err := injectAssets(body, styleURL, scriptURL); err != nil {
				log.Warn().Str("sys", "assets").Err(err).Msg("Failed to inject translator assets")
			} else {
				body = injected
			}
		}

		maps.Copy(w.Header(), recorder.Header())
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(recorder.Code)

		if _, err := w.Write(body); err != nil {
			log.Err(err).Msg("Failed to write response body")
		}
	}
}

// injectAssets appends a stylesheet link and a deferred script to the head of page.
func injectAssets(page []byte, styleURL, scriptURL string) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	head := doc.Find("head").First()

	if styleURL != "" && head.Find(`link[href="`+styleURL+`"]`).Length() == 0 {
		head.AppendNodes(element("link", "rel", "stylesheet", "href", styleURL))
	}

	if scriptURL != "" && head.Find(`script[src="`+scriptURL+`"]`).Length() == 0 {
		head.AppendNodes(element("script", "defer", "", "src", scriptURL))
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Get(0)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func element(tag string, attrs ...string) *html.Node {
	node := &html.Node{Type: html.ElementNode, Data: tag}

	for i := 0; i+1 < len(attrs); i += 2 {
		node.Attr = append(node.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}

	return node
}
