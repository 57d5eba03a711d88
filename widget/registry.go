// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package widget

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"codeberg.org/ride/inlinetranslator/core/translation"
	"codeberg.org/ride/inlinetranslator/i18n"
	"codeberg.org/ride/inlinetranslator/widget/dom"
)

// ErrAlreadyScanned is returned by a second Scan of the same registry.
var ErrAlreadyScanned = errors.New("widget: document already scanned")

const (
	keyAttr     = "data-translation-key"
	localeAttr  = "data-locale"
	activeClass = "inline_translation--active"

	markerSelector = ".inline_translation[" + keyAttr + "]"

	// A glyph is the older marker style: an empty element after the text
	// that names its key and, through data-for, the class of the element
	// holding the text.
	glyphClass    = "admin-translation"
	glyphKeyAttr  = "data-key"
	glyphForAttr  = "data-for"
	glyphSelector = "." + glyphClass + "[" + glyphKeyAttr + "]"

	anchorSelector = markerSelector + ", " + glyphSelector
)

// markerKey returns the key carried by a marker or a glyph.
func markerKey(marker *goquery.Selection) string {
	if key, ok := marker.Attr(keyAttr); ok {
		return key
	}

	key, _ := marker.Attr(glyphKeyAttr)

	return key
}

func isGlyph(marker *goquery.Selection) bool {
	_, ok := marker.Attr(keyAttr)

	return !ok && marker.HasClass(glyphClass)
}

// Registry indexes the translation markers of a document.
//
// A Registry is not safe for concurrent use. The Controller guards it.
type Registry struct {
	doc     *dom.Document
	entries []*Entry
	byKey   map[string]*Entry
	rows    map[string]*goquery.Selection
	panel   *goquery.Selection
	scanned bool
}

// NewRegistry returns an empty registry for doc.
func NewRegistry(doc *dom.Document) *Registry {
	return &Registry{
		doc:   doc,
		byKey: make(map[string]*Entry),
		rows:  make(map[string]*goquery.Selection),
	}
}

// Scan indexes every marker and appends the panel to the body. Labels are
// translated for the language of ctx.
func (r *Registry) Scan(ctx context.Context) error {
	if r.scanned {
		return ErrAlreadyScanned
	}

	r.scanned = true

	r.doc.Find(anchorSelector).Each(func(_ int, marker *goquery.Selection) {
		key := markerKey(marker)
		if key == "" {
			return
		}

		if _, seen := r.byKey[key]; seen {
			return
		}

		locale, _ := marker.Attr(localeAttr)
		entry := NewEntry(key, locale, r.textOf(marker).First().Text(), marker)

		r.entries = append(r.entries, entry)
		r.byKey[key] = entry
	})

	r.doc.Body().AppendHtml(r.panelHTML(ctx))
	r.panel = r.doc.Body().ChildrenFiltered(".translation_list").Last()

	r.panel.Find("ul > li").Each(func(_ int, row *goquery.Selection) {
		key, _ := row.Attr(keyAttr)
		r.rows[key] = row
	})

	return nil
}

func (r *Registry) panelHTML(ctx context.Context) string {
	var b strings.Builder

	b.WriteString(`<div class="translation_list">`)
	b.WriteString(`<input type="search" class="translation_list--search" placeholder="`)
	b.WriteString(html.EscapeString(i18n.SearchTranslations.Tr(ctx)))
	b.WriteString(`">`)
	b.WriteString(`<label><input type="checkbox" class="translation_list--hide-translated"> `)
	b.WriteString(html.EscapeString(i18n.HideTranslated.Tr(ctx)))
	b.WriteString(`</label><ul>`)

	for _, entry := range r.entries {
		b.WriteString(`<li ` + keyAttr + `="`)
		b.WriteString(html.EscapeString(entry.Key))
		b.WriteString(`">`)
		b.WriteString(rowHTML(entry))
		b.WriteString(`</li>`)
	}

	b.WriteString(`</ul><div class="translation_form" hidden>`)
	b.WriteString(`<div class="translation_form--input"></div>`)
	b.WriteString(`<p class="translation_form--error" hidden></p>`)
	b.WriteString(`<button class="translation_form--save">`)
	b.WriteString(html.EscapeString(i18n.Save.Tr(ctx)))
	b.WriteString(`</button><button class="translation_form--cancel">`)
	b.WriteString(html.EscapeString(i18n.Cancel.Tr(ctx)))
	b.WriteString(`</button></div></div>`)

	return b.String()
}

func rowHTML(entry *Entry) string {
	return html.EscapeString(entry.DisplayText) + "<small>" + html.EscapeString(entry.Key) + "</small>"
}

// Entries returns the entries in the order their keys first appear.
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Entry returns the entry for key.
func (r *Registry) Entry(key string) (*Entry, bool) {
	entry, ok := r.byKey[key]

	return entry, ok
}

// Markers returns every marker and glyph of the document that carries key.
func (r *Registry) Markers(key string) *goquery.Selection {
	return r.doc.Find(anchorSelector).FilterFunction(func(_ int, marker *goquery.Selection) bool {
		return markerKey(marker) == key
	})
}

// textOf returns the elements showing the text of marker: the marker
// itself, or for a glyph the elements with its data-for class.
func (r *Registry) textOf(marker *goquery.Selection) *goquery.Selection {
	if !isGlyph(marker) {
		return marker
	}

	class, _ := marker.Attr(glyphForAttr)
	if class == "" {
		return r.none()
	}

	return r.doc.Find("[class]").FilterFunction(func(_ int, el *goquery.Selection) bool {
		return el.HasClass(class)
	})
}

// Row returns the panel row of key.
func (r *Registry) Row(key string) *goquery.Selection {
	if row, ok := r.rows[key]; ok {
		return row
	}

	return r.none()
}

// Panel returns the panel element. It is empty before Scan.
func (r *Registry) Panel() *goquery.Selection {
	if r.panel == nil {
		return r.none()
	}

	return r.panel
}

func (r *Registry) none() *goquery.Selection {
	return r.doc.Root().Slice(0, 0)
}

// Find returns the panel elements matching selector.
func (r *Registry) Find(selector string) *goquery.Selection {
	return r.Panel().Find(selector)
}

// Filter shows the rows whose entry matches p and hides the others.
func (r *Registry) Filter(p Predicate) {
	for _, entry := range r.entries {
		dom.SetHidden(r.rows[entry.Key], !p(entry))
	}
}

// VisibleKeys returns the keys of the rows that are not hidden.
func (r *Registry) VisibleKeys() []string {
	var keys []string

	for _, entry := range r.entries {
		if !dom.IsHidden(r.rows[entry.Key]) {
			keys = append(keys, entry.Key)
		}
	}

	return keys
}

// Highlight marks or unmarks every marker of key.
func (r *Registry) Highlight(key string, on bool) {
	markers := r.Markers(key)

	if on {
		markers.AddClass(activeClass)
	} else {
		markers.RemoveClass(activeClass)
	}
}

// Update sets the text of key on its entry, its markers and its row.
// Markers nested inside the text of key are kept after the new text.
// Unknown keys are ignored.
func (r *Registry) Update(key, text string) {
	entry, ok := r.byKey[key]
	if !ok {
		return
	}

	entry.DisplayText = text

	escaped := html.EscapeString(text)
	r.Markers(key).Each(func(_ int, marker *goquery.Selection) {
		target := r.textOf(marker)
		target.Contents().Not(anchorSelector).Remove()
		target.PrependHtml(escaped)
	})

	if row, ok := r.rows[key]; ok {
		row.SetHtml(rowHTML(entry))
	}
}

// Predicate selects registry entries.
type Predicate func(*Entry) bool

// Search matches entries whose key or text contains q. Matching is case
// sensitive and an empty q matches every entry.
func Search(q string) Predicate {
	return func(entry *Entry) bool {
		return q == "" || strings.Contains(entry.Key, q) || strings.Contains(entry.DisplayText, q)
	}
}

// HideTranslated matches entries that still show their placeholder.
func HideTranslated() Predicate {
	return func(entry *Entry) bool {
		return translation.IsPlaceholder(entry.Key, entry.DisplayText)
	}
}

// All matches entries that match every predicate.
func All(predicates ...Predicate) Predicate {
	return func(entry *Entry) bool {
		for _, p := range predicates {
			if !p(entry) {
				return false
			}
		}

		return true
	}
}
