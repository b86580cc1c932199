package keys

import (
	"fmt"
	"strings"
)

// Sequence is an ordered list of keys; the unit of binding.
type Sequence []Key

// Equal reports whether s and other hold the same keys in the same order.
func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether s starts with prefix. Every sequence has the
// empty prefix.
func (s Sequence) HasPrefix(prefix Sequence) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)].Equal(prefix)
}

// Clone returns a copy that does not share storage with s.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// String renders the sequence for display, e.g. "g<C-x>space".
func (s Sequence) String() string {
	var b strings.Builder
	for _, k := range s {
		b.WriteString(k.String())
	}
	return b.String()
}

// Spec renders the sequence in a form ParseSequence accepts and that parses
// back to an equal sequence.
func (s Sequence) Spec() string {
	var b strings.Builder
	for _, k := range s {
		b.WriteString(k.render(true))
	}
	return b.String()
}

// ID returns a string that is unique per sequence, for use as a map key.
func (s Sequence) ID() string {
	var b strings.Builder
	for _, k := range s {
		fmt.Fprintf(&b, "%d.%d.%d.%d;", k.Code, k.Mods, k.F, k.Rune)
	}
	return b.String()
}
