// Package keymap holds mode-scoped key bindings and the two-pass build that
// turns configuration into a total lookup table: ParseRaw converts key strings
// into sequences, and MergeDefaults lays each UI mode's bindings over the
// mode-agnostic defaults.
package keymap

import "github.com/Beastwick18/nyaa/internal/keys"

// Entry is one binding of a Keymap.
type Entry struct {
	Keys keys.Sequence
	Spec ActionSpec
}

// Keymap maps key sequences to action specs, preserving insertion order.
// Order only affects iteration, never lookup.
type Keymap struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty keymap.
func New() *Keymap {
	return &Keymap{index: make(map[string]int)}
}

// Len returns the number of bindings.
func (k *Keymap) Len() int {
	return len(k.entries)
}

// Set binds seq to spec. Rebinding an existing sequence replaces its spec in
// place and keeps its position.
func (k *Keymap) Set(seq keys.Sequence, spec ActionSpec) {
	id := seq.ID()
	if i, ok := k.index[id]; ok {
		k.entries[i].Spec = spec
		return
	}
	k.index[id] = len(k.entries)
	k.entries = append(k.entries, Entry{Keys: seq.Clone(), Spec: spec})
}

// Get returns the spec bound to exactly seq.
func (k *Keymap) Get(seq keys.Sequence) (ActionSpec, bool) {
	i, ok := k.index[seq.ID()]
	if !ok {
		return ActionSpec{}, false
	}
	return k.entries[i].Spec, true
}

// Entries returns the bindings in insertion order.
func (k *Keymap) Entries() []Entry {
	out := make([]Entry, len(k.entries))
	copy(out, k.entries)
	return out
}

// Continuations returns the bindings that strictly extend prefix, in
// insertion order.
func (k *Keymap) Continuations(prefix keys.Sequence) []Entry {
	var out []Entry
	for _, e := range k.entries {
		if len(e.Keys) > len(prefix) && e.Keys.HasPrefix(prefix) {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns an independent copy of k.
func (k *Keymap) Clone() *Keymap {
	c := &Keymap{
		entries: make([]Entry, len(k.entries)),
		index:   make(map[string]int, len(k.index)),
	}
	copy(c.entries, k.entries)
	for id, i := range k.index {
		c.index[id] = i
	}
	return c
}

// Overlay sets every binding of other on top of k.
func (k *Keymap) Overlay(other *Keymap) {
	for _, e := range other.entries {
		k.Set(e.Keys, e.Spec)
	}
}
