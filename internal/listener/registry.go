// Package listener implements the per-subject listener registry shared by the contact and character
// routers. Subscriptions are live and may change at any time; dispatch reads a snapshot that is only
// rebuilt by Rebuild, so changes made while dispatching take effect from the next step.
package listener

import (
	"encoding/binary"
	"slices"

	"github.com/oomph-ac/physcore/backend"
	"github.com/zeebo/xxh3"
)

// Entry is a single subscription. Handler must be of a comparable dynamic type (usually a pointer), as
// entries are matched by handler equality when unsubscribing.
type Entry[H comparable] struct {
	Handler H

	filter      map[backend.BodyID]struct{}
	fingerprint uint64
}

// Matches returns true if other passes the entry's filter. An entry without a filter matches any body.
func (e *Entry[H]) Matches(other backend.BodyID) bool {
	if e.filter == nil {
		return true
	}
	_, ok := e.filter[other]
	return ok
}

// sameFilter compares the filter of the entry as an unordered set against filter.
func (e *Entry[H]) sameFilter(filter map[backend.BodyID]struct{}, fingerprint uint64) bool {
	if e.fingerprint != fingerprint || len(e.filter) != len(filter) {
		return false
	}
	for id := range filter {
		if _, ok := e.filter[id]; !ok {
			return false
		}
	}
	return true
}

// Registry maps (kind, subject) to the entries subscribed for it. kind is an index below the amount of
// kinds passed to New.
type Registry[H comparable] struct {
	live     []map[backend.BodyID][]*Entry[H]
	snapshot []map[backend.BodyID][]*Entry[H]
}

// New returns an empty registry for kinds distinct event kinds.
func New[H comparable](kinds int) *Registry[H] {
	r := &Registry[H]{
		live:     make([]map[backend.BodyID][]*Entry[H], kinds),
		snapshot: make([]map[backend.BodyID][]*Entry[H], kinds),
	}
	for i := range kinds {
		r.live[i] = make(map[backend.BodyID][]*Entry[H])
		r.snapshot[i] = make(map[backend.BodyID][]*Entry[H])
	}
	return r
}

// Subscribe appends a subscription of h for kind events of self. filter restricts the other body of the
// event; an empty filter accepts any other body.
func (r *Registry[H]) Subscribe(kind int, self backend.BodyID, filter []backend.BodyID, h H) {
	set, fp := filterSet(filter)
	r.live[kind][self] = append(r.live[kind][self], &Entry[H]{Handler: h, filter: set, fingerprint: fp})
}

// Unsubscribe removes the first subscription of self for kind whose handler equals h and whose filter
// holds the same ids as filter, in any order. It returns false if no such subscription exists.
func (r *Registry[H]) Unsubscribe(kind int, self backend.BodyID, filter []backend.BodyID, h H) bool {
	entries := r.live[kind][self]
	set, fp := filterSet(filter)
	for i, e := range entries {
		if e.Handler != h || !e.sameFilter(set, fp) {
			continue
		}
		entries = slices.Delete(slices.Clone(entries), i, i+1)
		if len(entries) == 0 {
			delete(r.live[kind], self)
		} else {
			r.live[kind][self] = entries
		}
		return true
	}
	return false
}

// Clear empties the dispatch snapshot of every kind. Live subscriptions are kept.
func (r *Registry[H]) Clear() {
	for _, m := range r.snapshot {
		clear(m)
	}
}

// RegisterInterest copies the live subscriptions of self for kind into the dispatch snapshot. Subjects
// without subscriptions are not registered, so that dispatch for them is a single map miss.
func (r *Registry[H]) RegisterInterest(kind int, self backend.BodyID) {
	entries := r.live[kind][self]
	if len(entries) == 0 {
		return
	}
	r.snapshot[kind][self] = slices.Clone(entries)
}

// Rebuild clears the snapshot and registers interest for every subject that currently has subscriptions.
func (r *Registry[H]) Rebuild() {
	r.Clear()
	for kind, m := range r.live {
		for self := range m {
			r.RegisterInterest(kind, self)
		}
	}
}

// Interested returns true if self has subscriptions for kind in the current snapshot.
func (r *Registry[H]) Interested(kind int, self backend.BodyID) bool {
	_, ok := r.snapshot[kind][self]
	return ok
}

// Listeners returns the snapshot entries of self for kind in subscription order. The returned slice must
// not be modified.
func (r *Registry[H]) Listeners(kind int, self backend.BodyID) []*Entry[H] {
	return r.snapshot[kind][self]
}

// Subscribed returns the amount of live subscriptions of self for kind.
func (r *Registry[H]) Subscribed(kind int, self backend.BodyID) int {
	return len(r.live[kind][self])
}

// Subjects returns the amount of subjects that have at least one live subscription for kind.
func (r *Registry[H]) Subjects(kind int) int {
	return len(r.live[kind])
}

// filterSet deduplicates filter into a set and returns an order independent fingerprint of it.
func filterSet(filter []backend.BodyID) (map[backend.BodyID]struct{}, uint64) {
	if len(filter) == 0 {
		return nil, 0
	}
	set := make(map[backend.BodyID]struct{}, len(filter))
	var (
		fp  uint64
		buf [4]byte
	)
	for _, id := range filter {
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = struct{}{}
		binary.LittleEndian.PutUint32(buf[:], uint32(id))
		fp += xxh3.Hash(buf[:])
	}
	return set, fp
}
