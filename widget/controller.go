// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package widget

import (
	"context"
	"errors"
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/core/translation"
	"codeberg.org/ride/inlinetranslator/i18n"
	"codeberg.org/ride/inlinetranslator/widget/dom"
)

var (
	// ErrSuperseded is returned when a response arrives for a session that
	// was closed or replaced in the meantime. The response is dropped.
	ErrSuperseded = errors.New("widget: session superseded")

	// ErrNotEditing is returned by SetValue and Save outside the Editing state.
	ErrNotEditing = errors.New("widget: overlay is not editing")

	// ErrUnknownKey is returned by Open for keys that are not on the page.
	ErrUnknownKey = errors.New("widget: unknown translation key")

	errNotStarted = errors.New("widget: controller not started")
)

// API is the part of the translator API the overlay uses.
type API interface {
	FetchVariants(ctx context.Context, key string) (map[string]translation.LocaleVariant, error)
	SaveVariants(ctx context.Context, locale, key string, values map[string]string) (string, error)
}

// State is the state of the edit overlay.
type State int

const (
	Closed State = iota
	Loading
	Editing
	Saving
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Loading:
		return "loading"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Modifier is the key that must be held to activate a marker.
type Modifier int

const (
	Alt Modifier = iota
	Ctrl
	Meta
	Shift
)

func (m Modifier) held(ev *dom.Event) bool {
	switch m {
	case Ctrl:
		return ev.CtrlKey
	case Meta:
		return ev.MetaKey
	case Shift:
		return ev.ShiftKey
	default:
		return ev.AltKey
	}
}

// Options configures a Controller.
type Options struct {
	API API

	// Modifier activates markers on click. The zero value is Alt.
	Modifier Modifier

	// Locale is the page locale. Its input gets the focus. When empty the
	// locale of the marker is used.
	Locale string
}

type session struct {
	entry    *Entry
	state    State
	variants map[string]translation.LocaleVariant
	pending  map[string]string
	scope    *dom.Scope
	err      error
}

// Controller drives the edit overlay of a document.
type Controller struct {
	mu sync.Mutex
	wg sync.WaitGroup

	ctx      context.Context
	doc      *dom.Document
	registry *Registry
	api      API
	modifier Modifier
	locale   string

	current        *session
	query          string
	hideTranslated bool
	started        bool
}

// NewController returns a controller for doc. ctx is used for background
// requests and carries the language of the labels.
func NewController(ctx context.Context, doc *dom.Document, opts Options) *Controller {
	return &Controller{
		ctx:      ctx,
		doc:      doc,
		registry: NewRegistry(doc),
		api:      opts.API,
		modifier: opts.Modifier,
		locale:   opts.Locale,
	}
}

// Registry returns the registry of the controller. Use it only while no
// event is dispatched and no request is in flight, e.g. after Wait.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Start scans the document and attaches the gesture listeners of the
// markers, the rows and the filter inputs.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.registry.Scan(c.ctx); err != nil {
		return err
	}

	c.started = true

	c.doc.Find(anchorSelector).Each(func(_ int, marker *goquery.Selection) {
		key := markerKey(marker)
		if key == "" {
			return
		}

		c.doc.AddEventListener(marker, dom.Click, func(ev *dom.Event) {
			if !c.modifier.held(ev) {
				return
			}

			ev.StopPropagation()
			c.activateLocked(key)
		})
	})

	for _, entry := range c.registry.Entries() {
		key := entry.Key
		row := c.registry.Row(key)

		c.doc.AddEventListener(row, dom.Click, func(*dom.Event) { c.activateLocked(key) })
		c.doc.AddEventListener(row, dom.MouseEnter, func(*dom.Event) { c.registry.Highlight(key, true) })
		c.doc.AddEventListener(row, dom.MouseLeave, func(*dom.Event) {
			if c.current == nil || c.current.entry.Key != key {
				c.registry.Highlight(key, false)
			}
		})
	}

	c.doc.AddEventListener(c.registry.Find(".translation_list--search"), dom.Input, func(ev *dom.Event) {
		c.query = ev.Value
		c.filterLocked()
	})
	c.doc.AddEventListener(c.registry.Find(".translation_list--hide-translated"), dom.Change, func(ev *dom.Event) {
		c.hideTranslated = ev.Checked
		c.filterLocked()
	})

	return nil
}

// Dispatch delivers ev to the document. Requests started by the listeners
// run in the background; Wait blocks until they are done.
func (c *Controller) Dispatch(ev *dom.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.doc.Dispatch(ev)
}

// Wait blocks until every background request has been applied.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Filter shows the rows matching query, and only the untranslated ones
// when hideTranslated is set.
func (c *Controller) Filter(query string, hideTranslated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = query
	c.hideTranslated = hideTranslated
	c.filterLocked()
}

func (c *Controller) filterLocked() {
	p := Search(c.query)
	if c.hideTranslated {
		p = All(p, HideTranslated())
	}

	c.registry.Filter(p)
}

// State returns the state of the overlay.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return Closed
	}

	return c.current.state
}

// ActiveKey returns the key being edited, or "" when the overlay is closed.
func (c *Controller) ActiveKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return ""
	}

	return c.current.entry.Key
}

// Pending returns a copy of the values the inputs hold.
func (c *Controller) Pending() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}

	return maps.Clone(c.current.pending)
}

// Err returns the error of the last request of the open session.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}

	return c.current.err
}

// HTML renders the document.
func (c *Controller) HTML() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.doc.HTML()
}

// Open closes the current session and edits key. It returns once the
// variants are shown, or with ErrSuperseded if another session took over
// while they were loading.
func (c *Controller) Open(ctx context.Context, key string) error {
	c.mu.Lock()
	s, err := c.beginOpenLocked(key)
	c.mu.Unlock()

	if err != nil {
		return err
	}

	return c.load(ctx, s)
}

// SetValue sets the value of the input for locale.
func (c *Controller) SetValue(locale, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current
	if s == nil || s.state != Editing {
		return ErrNotEditing
	}

	if _, ok := s.variants[locale]; !ok {
		return fmt.Errorf("%w: %q", translation.ErrUnknownLocale, locale)
	}

	c.inputs().FilterFunction(byName(locale)).SetAttr("value", value)
	s.pending[locale] = value

	return nil
}

// Save submits the values of the inputs. On success the page shows the new
// text and the overlay closes. On failure the overlay stays in Editing with
// an error message.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	s, values, err := c.beginSaveLocked()
	c.mu.Unlock()

	if err != nil {
		return err
	}

	return c.save(ctx, s, values)
}

// Cancel closes the overlay without saving.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
}

func (c *Controller) activateLocked(key string) {
	s, err := c.beginOpenLocked(key)
	if err != nil {
		log.Debug().Str("sys", "widget").Err(err).Str("key", key).Msg("Ignoring activation")

		return
	}

	c.wg.Go(func() { _ = c.load(c.ctx, s) })
}

func (c *Controller) beginOpenLocked(key string) (*session, error) {
	if !c.started {
		return nil, errNotStarted
	}

	entry, ok := c.registry.Entry(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	c.closeLocked()

	s := &session{
		entry: entry,
		state: Loading,
		scope: c.doc.NewScope(),
	}
	c.current = s

	form := c.registry.Find(".translation_form")
	form.SetAttr(keyAttr, key)
	dom.SetHidden(form, false)

	s.scope.On(nil, dom.KeyDown, func(ev *dom.Event) {
		if ev.Key == "Escape" && c.current == s {
			c.closeLocked()
		}
	})
	s.scope.On(nil, dom.Click, func(ev *dom.Event) {
		if c.current == s && !dom.Contains(c.registry.Panel(), ev.Target) {
			c.closeLocked()
		}
	})
	s.scope.On(c.registry.Find(".translation_form--cancel"), dom.Click, func(*dom.Event) {
		if c.current == s {
			c.closeLocked()
		}
	})
	s.scope.On(c.registry.Find(".translation_form--save"), dom.Click, func(*dom.Event) {
		if c.current != s {
			return
		}

		saving, values, err := c.beginSaveLocked()
		if err != nil {
			return
		}

		c.wg.Go(func() { _ = c.save(c.ctx, saving, values) })
	})

	return s, nil
}

func (c *Controller) load(ctx context.Context, s *session) error {
	variants, err := c.api.FetchVariants(ctx, s.entry.Key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != s {
		log.Debug().Str("sys", "widget").Str("key", s.entry.Key).Msg("Dropping variants of a superseded session")

		return ErrSuperseded
	}

	if err != nil {
		log.Warn().Str("sys", "widget").Err(err).Str("key", s.entry.Key).Msg("Failed to load translations")

		s.err = err
		c.showErrorLocked(i18n.LoadFailed.Tr(c.ctx))

		return err
	}

	s.variants = variants
	s.pending = make(map[string]string, len(variants))
	s.state = Editing

	c.renderInputsLocked(s)
	c.registry.Highlight(s.entry.Key, true)

	return nil
}

func (c *Controller) renderInputsLocked(s *session) {
	codes := slices.Sorted(maps.Keys(s.variants))

	var b strings.Builder

	for _, code := range codes {
		variant := s.variants[code]

		value := ""
		if variant.Translation != nil {
			value = *variant.Translation
		}

		s.pending[code] = value

		label := variant.Locale
		if label == "" {
			label = code
		}

		b.WriteString(`<label ` + localeAttr + `="` + html.EscapeString(code) + `">`)
		b.WriteString(html.EscapeString(label))
		b.WriteString(`<input name="` + html.EscapeString(code) + `" value="` + html.EscapeString(value) + `"></label>`)
	}

	c.registry.Find(".translation_form--input").SetHtml(b.String())

	focus := c.locale
	if _, ok := s.variants[focus]; !ok {
		focus = s.entry.Locale
	}

	c.inputs().Each(func(_ int, input *goquery.Selection) {
		code, _ := input.Attr("name")

		if code == focus {
			input.SetAttr("data-focused", "")
		}

		s.scope.On(input, dom.Input, func(ev *dom.Event) {
			if c.current == s && s.state == Editing {
				s.pending[code] = ev.Value
			}
		})
	})
}

func (c *Controller) beginSaveLocked() (*session, map[string]string, error) {
	s := c.current
	if s == nil || s.state != Editing {
		return nil, nil, ErrNotEditing
	}

	s.state = Saving
	s.err = nil
	c.hideErrorLocked()

	return s, maps.Clone(s.pending), nil
}

func (c *Controller) save(ctx context.Context, s *session, values map[string]string) error {
	locale := s.entry.Locale
	if locale == "" {
		locale = c.locale
	}

	text, err := c.api.SaveVariants(ctx, locale, s.entry.Key, values)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != s || s.state != Saving {
		log.Debug().Str("sys", "widget").Str("key", s.entry.Key).Msg("Dropping save response of a superseded session")

		return ErrSuperseded
	}

	if err != nil {
		log.Warn().Str("sys", "widget").Err(err).Str("key", s.entry.Key).Msg("Failed to save translations")

		s.state = Editing
		s.err = err
		c.showErrorLocked(i18n.SaveFailed.Tr(c.ctx))

		return err
	}

	c.registry.Update(s.entry.Key, text)
	c.filterLocked()
	c.closeLocked()

	return nil
}

func (c *Controller) closeLocked() {
	s := c.current
	if s == nil {
		return
	}

	s.scope.Close()
	s.state = Closed
	s.pending = nil
	c.current = nil

	c.registry.Highlight(s.entry.Key, false)

	form := c.registry.Find(".translation_form")
	form.RemoveAttr(keyAttr)
	dom.SetHidden(form, true)
	c.registry.Find(".translation_form--input").Empty()
	c.hideErrorLocked()
}

func (c *Controller) showErrorLocked(message string) {
	msg := c.registry.Find(".translation_form--error")
	msg.SetText(message)
	dom.SetHidden(msg, false)
}

func (c *Controller) hideErrorLocked() {
	msg := c.registry.Find(".translation_form--error")
	msg.Empty()
	dom.SetHidden(msg, true)
}

func (c *Controller) inputs() *goquery.Selection {
	return c.registry.Find(".translation_form--input input")
}

func byName(name string) func(int, *goquery.Selection) bool {
	return func(_ int, sel *goquery.Selection) bool {
		n, _ := sel.Attr("name")

		return n == name
	}
}
