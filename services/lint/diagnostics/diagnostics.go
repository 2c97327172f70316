// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diagnostics holds the per-document diagnostic sets published to
// the editor.
//
// A document's set is a flat offense list. Each linter owns the entries
// whose source equals its name and replaces only those, so a run of one
// linter never disturbs another's entries.
package diagnostics

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/AleutianAI/lintbridge/services/lint/offense"
	"github.com/AleutianAI/lintbridge/services/lint/textdoc"
)

// =============================================================================
// DIAGNOSTIC PROJECTION
// =============================================================================

// Diagnostic is the editor-facing projection of an offense. It keeps every
// field needed to find the originating offense again with Lookup.
type Diagnostic struct {
	Range       textdoc.Range    `json:"range"`
	Severity    offense.Severity `json:"severity"`
	Source      string           `json:"source"`
	Code        string           `json:"code,omitempty"`
	Message     string           `json:"message"`
	DocsURL     string           `json:"docsUrl,omitempty"`
	Correctable bool             `json:"correctable,omitempty"`
}

// FromOffense projects o into a Diagnostic.
func FromOffense(o offense.Offense) Diagnostic {
	return Diagnostic{
		Range: textdoc.Range{
			Start: textdoc.Position{Line: o.Location.LineStart, Character: o.Location.ColumnStart},
			End:   textdoc.Position{Line: o.Location.LineEnd, Character: o.Location.ColumnEnd},
		},
		Severity:    o.Severity,
		Source:      o.Source,
		Code:        o.Code,
		Message:     o.Message,
		DocsURL:     o.DocsURL,
		Correctable: o.Correctable,
	}
}

// Matches reports whether d was projected from o: same source, code,
// message and exact range.
func (d Diagnostic) Matches(o offense.Offense) bool {
	return d.Source == o.Source &&
		d.Code == o.Code &&
		d.Message == o.Message &&
		d.Range == FromOffense(o).Range
}

// =============================================================================
// COLLECTION
// =============================================================================

// Event reports a document's diagnostic set after a change.
type Event struct {
	URI      string            `json:"uri"`
	Offenses []offense.Offense `json:"offenses"`
}

// Collection maps document URIs to their offense lists.
//
// Description:
//
//	Every mutation is a read-modify-write under one lock, so concurrent
//	ReplaceBySource calls for different linters on the same document
//	never interleave. Subscribers receive a snapshot after each change.
//
// Thread Safety: Safe for concurrent use.
type Collection struct {
	mu     sync.RWMutex
	docs   map[string][]offense.Offense
	subs   map[int]*subscriber
	nextID int
	logger *slog.Logger
}

// NewCollection creates an empty collection. A nil logger uses slog.Default.
func NewCollection(logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{
		docs:   make(map[string][]offense.Offense),
		subs:   make(map[int]*subscriber),
		logger: logger,
	}
}

// Set replaces the whole set of uri.
func (c *Collection) Set(uri string, offenses []offense.Offense) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs[uri] = slices.Clone(offenses)
	c.publishLocked(uri)
}

// ReplaceBySource removes every entry of uri whose source is source and
// appends offenses.
//
// Inputs:
//
//	uri - The document
//	source - The linter whose entries are replaced
//	offenses - The linter's new entries
func (c *Collection) ReplaceBySource(uri, source string, offenses []offense.Offense) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := slices.DeleteFunc(slices.Clone(c.docs[uri]), func(o offense.Offense) bool {
		return o.Source == source
	})
	c.docs[uri] = append(kept, offenses...)
	c.publishLocked(uri)
}

// Clear removes the set of uri.
func (c *Collection) Clear(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[uri]; !ok {
		return
	}
	delete(c.docs, uri)
	c.publishLocked(uri)
}

// Offenses returns a copy of the set of uri.
func (c *Collection) Offenses(uri string) []offense.Offense {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.docs[uri])
}

// Diagnostics returns the projection of the set of uri.
func (c *Collection) Diagnostics(uri string) []Diagnostic {
	offenses := c.Offenses(uri)
	out := make([]Diagnostic, 0, len(offenses))
	for _, o := range offenses {
		out = append(out, FromOffense(o))
	}
	return out
}

// Lookup finds the offense a diagnostic was projected from.
func (c *Collection) Lookup(uri string, d Diagnostic) (offense.Offense, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, o := range c.docs[uri] {
		if d.Matches(o) {
			return o, true
		}
	}
	return offense.Offense{}, false
}

// URIs returns the documents that have a set, sorted.
func (c *Collection) URIs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	uris := make([]string, 0, len(c.docs))
	for uri := range c.docs {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	return uris
}

// Subscribe registers for change events.
//
// Description:
//
//	Returns a channel receiving an Event after every change and a cancel
//	function that unregisters and closes it. Undelivered events are
//	coalesced per document: a subscriber that falls behind skips
//	superseded snapshots of a document but always receives the newest
//	snapshot of every document that changed.
//
// Inputs:
//
//	buffer - Channel capacity, at least 1
//
// Outputs:
//
//	<-chan Event - The event stream
//	func() - Cancels the subscription. Safe to call more than once.
func (c *Collection) Subscribe(buffer int) (<-chan Event, func()) {
	sub := newSubscriber(max(1, buffer))

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = sub
	c.mu.Unlock()

	go sub.pump()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			sub.close()
		})
	}
	return sub.out, cancel
}

// publishLocked queues a snapshot of uri for every subscriber. Callers hold
// c.mu for writing.
func (c *Collection) publishLocked(uri string) {
	if len(c.subs) == 0 {
		return
	}
	ev := Event{URI: uri, Offenses: slices.Clone(c.docs[uri])}
	for id, sub := range c.subs {
		if sub.push(ev) {
			c.logger.Debug("Diagnostics subscriber lagging, replaced pending event",
				slog.Int("subscriber", id),
				slog.String("uri", uri))
		}
	}
}

// subscriber holds the undelivered events of one subscription, at most one
// per URI, in the order their URIs first became pending.
type subscriber struct {
	mu      sync.Mutex
	pending map[string]Event
	order   []string
	notify  chan struct{}
	out     chan Event
	done    chan struct{}
	stopped chan struct{}
}

func newSubscriber(buffer int) *subscriber {
	return &subscriber{
		pending: make(map[string]Event),
		notify:  make(chan struct{}, 1),
		out:     make(chan Event, buffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// push queues ev, replacing a pending event of the same URI. It reports
// whether one was replaced. It never blocks.
func (s *subscriber) push(ev Event) bool {
	s.mu.Lock()
	_, replaced := s.pending[ev.URI]
	if !replaced {
		s.order = append(s.order, ev.URI)
	}
	s.pending[ev.URI] = ev
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return replaced
}

// next pops the oldest pending event.
func (s *subscriber) next() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return Event{}, false
	}
	uri := s.order[0]
	s.order = s.order[1:]
	ev := s.pending[uri]
	delete(s.pending, uri)
	return ev, true
}

// pump moves pending events to out until close.
func (s *subscriber) pump() {
	defer close(s.stopped)
	for {
		ev, ok := s.next()
		if !ok {
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}

// close stops the pump and closes out.
func (s *subscriber) close() {
	close(s.done)
	<-s.stopped
	close(s.out)
}
