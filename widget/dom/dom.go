// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package dom is a headless HTML document with browser-like event listeners.

Events bubble from their target up to the document node. Listeners are
called in registration order on each node, and only listeners registered
when dispatch starts are called. A Scope groups listeners so they can be
removed together.

A Document is not safe for concurrent use.
*/
package dom

import (
	"bytes"
	"io"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// EventType names an event, like the DOM event types.
type EventType string

const (
	Click      EventType = "click"
	Input      EventType = "input"
	Change     EventType = "change"
	KeyDown    EventType = "keydown"
	MouseEnter EventType = "mouseenter"
	MouseLeave EventType = "mouseleave"
)

// Event is dispatched to the listeners of its target and the target's ancestors.
type Event struct {
	Type   EventType
	Target *goquery.Selection

	// Key is the key of a KeyDown event, e.g. "Escape".
	Key string

	AltKey   bool
	CtrlKey  bool
	MetaKey  bool
	ShiftKey bool

	// Value is the new value of the target of an Input event.
	Value string

	// Checked is the new state of a checkbox target of a Change event.
	Checked bool

	stopped bool
}

// StopPropagation keeps the event from reaching further ancestors.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

// Handler handles an event.
type Handler func(ev *Event)

// ListenerID identifies a registered listener.
type ListenerID uint64

type listener struct {
	id      ListenerID
	node    *html.Node
	typ     EventType
	handler Handler
}

// Document is an HTML document with an event listener registry.
type Document struct {
	doc       *goquery.Document
	listeners []*listener
	nextID    ListenerID
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	return &Document{doc: doc}, nil
}

// ParseString is Parse for an in-memory page.
func ParseString(page string) (*Document, error) {
	return Parse(strings.NewReader(page))
}

// Root returns the document node.
func (d *Document) Root() *goquery.Selection {
	return d.doc.Selection
}

// Find returns the elements matching selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Body returns the body element.
func (d *Document) Body() *goquery.Selection {
	return d.doc.Find("body").First()
}

// HTML renders the document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.doc.Get(0)); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// AddEventListener registers handler for events of typ reaching target. A nil
// or empty target means the document itself.
func (d *Document) AddEventListener(target *goquery.Selection, typ EventType, handler Handler) ListenerID {
	node := d.doc.Get(0)
	if target != nil && target.Length() > 0 {
		node = target.Get(0)
	}

	d.nextID++
	d.listeners = append(d.listeners, &listener{id: d.nextID, node: node, typ: typ, handler: handler})

	return d.nextID
}

// RemoveEventListener unregisters a listener. Unknown ids are ignored.
func (d *Document) RemoveEventListener(id ListenerID) {
	d.listeners = slices.DeleteFunc(d.listeners, func(l *listener) bool { return l.id == id })
}

// ListenerCount returns the number of registered listeners.
func (d *Document) ListenerCount() int {
	return len(d.listeners)
}

func (d *Document) registered(id ListenerID) bool {
	return slices.ContainsFunc(d.listeners, func(l *listener) bool { return l.id == id })
}

// Dispatch delivers ev to its target and the target's ancestors.
//
// Input events set the value attribute of the target first, and Change
// events set or clear its checked attribute.
func (d *Document) Dispatch(ev *Event) {
	if ev.Target == nil || ev.Target.Length() == 0 {
		ev.Target = d.doc.Selection
	}

	switch ev.Type {
	case Input:
		ev.Target.SetAttr("value", ev.Value)
	case Change:
		if ev.Checked {
			ev.Target.SetAttr("checked", "")
		} else {
			ev.Target.RemoveAttr("checked")
		}
	}

	snapshot := slices.Clone(d.listeners)

	for node := ev.Target.Get(0); node != nil && !ev.stopped; node = node.Parent {
		for _, l := range snapshot {
			if l.node != node || l.typ != ev.Type || !d.registered(l.id) {
				continue
			}

			l.handler(ev)
		}
	}
}

// Scope owns listeners that are removed together by Close.
type Scope struct {
	doc    *Document
	ids    []ListenerID
	closed bool
}

// NewScope returns an empty scope.
func (d *Document) NewScope() *Scope {
	return &Scope{doc: d}
}

// On registers a listener owned by the scope. After Close it does nothing.
func (s *Scope) On(target *goquery.Selection, typ EventType, handler Handler) {
	if s.closed {
		return
	}

	s.ids = append(s.ids, s.doc.AddEventListener(target, typ, handler))
}

// Close removes every listener of the scope. Calling it again has no effect.
func (s *Scope) Close() {
	if s.closed {
		return
	}

	for _, id := range s.ids {
		s.doc.RemoveEventListener(id)
	}

	s.ids = nil
	s.closed = true
}

// Closed reports whether Close was called.
func (s *Scope) Closed() bool {
	return s.closed
}

// Len returns the number of listeners the scope holds.
func (s *Scope) Len() int {
	return len(s.ids)
}

// Contains reports whether inner is container or one of its descendants.
func Contains(container, inner *goquery.Selection) bool {
	if container == nil || inner == nil || container.Length() == 0 || inner.Length() == 0 {
		return false
	}

	root := container.Get(0)

	for node := inner.Get(0); node != nil; node = node.Parent {
		if node == root {
			return true
		}
	}

	return false
}

// SetHidden sets or removes the hidden attribute.
func SetHidden(sel *goquery.Selection, hidden bool) {
	if hidden {
		sel.SetAttr("hidden", "")
	} else {
		sel.RemoveAttr("hidden")
	}
}

// IsHidden reports whether the first element of sel has the hidden attribute.
func IsHidden(sel *goquery.Selection) bool {
	_, hidden := sel.Attr("hidden")

	return hidden
}
