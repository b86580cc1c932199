package keymap

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Beastwick18/nyaa/internal/keys"
)

// Config is the configuration shape of key bindings:
// input mode name → bucket name ("_" or a UI mode name) → bindings.
type Config map[string]map[string]Bindings

// ErrDuplicateBinding is returned when one bucket binds a sequence twice,
// possibly under two spellings such as <C-x> and <Ctrl-x>.
var ErrDuplicateBinding = errors.New("duplicate binding")

// Binding is one configured key string and its spec.
type Binding struct {
	Keys string
	Spec ActionSpec
	// Line is the document line of the key; 0 when not decoded from YAML.
	Line int
}

// Bindings keeps configured bindings in document order.
type Bindings []Binding

// UnmarshalYAML decodes a mapping of key strings to specs, preserving order.
func (b *Bindings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of keys to actions", node.Line)
	}
	out := make(Bindings, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var spec ActionSpec
		if err := node.Content[i+1].Decode(&spec); err != nil {
			return fmt.Errorf("key %q: %w", node.Content[i].Value, err)
		}
		out = append(out, Binding{Keys: node.Content[i].Value, Spec: spec, Line: node.Content[i].Line})
	}
	*b = out
	return nil
}

// RawKeyBindings is the parsed but unmerged configuration:
// input mode → bucket → keymap.
type RawKeyBindings map[InputMode]map[Bucket]*Keymap

// Bucket returns the keymap for (in, b), creating it if needed.
func (r RawKeyBindings) Bucket(in InputMode, b Bucket) *Keymap {
	buckets, ok := r[in]
	if !ok {
		buckets = make(map[Bucket]*Keymap)
		r[in] = buckets
	}
	km, ok := buckets[b]
	if !ok {
		km = New()
		buckets[b] = km
	}
	return km
}

// Overlay lays every bucket of other over r, replacing colliding sequences.
func (r RawKeyBindings) Overlay(other RawKeyBindings) {
	for in, buckets := range other {
		for b, km := range buckets {
			r.Bucket(in, b).Overlay(km)
		}
	}
}

// ParseRaw parses every key string in cfg. Any unknown mode name,
// unparseable key string or sequence bound twice in one bucket fails the
// whole build; no partial result is returned. Mode names are checked first.
// Among key errors the one earliest in the document is reported. Empty key
// strings mean "unbound" and are skipped.
func ParseRaw(cfg Config) (RawKeyBindings, error) {
	type bucketRef struct {
		in             InputMode
		b              Bucket
		inName, bucket string
	}
	var refs []bucketRef
	for _, inName := range slices.Sorted(maps.Keys(cfg)) {
		in, err := ParseInputMode(inName)
		if err != nil {
			return nil, err
		}
		for _, bucketName := range slices.Sorted(maps.Keys(cfg[inName])) {
			b, err := ParseBucket(bucketName)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", inName, err)
			}
			refs = append(refs, bucketRef{in, b, inName, bucketName})
		}
	}

	var (
		firstErr  error
		firstLine int
	)
	raw := make(RawKeyBindings)
	for _, ref := range refs {
		km := raw.Bucket(ref.in, ref.b)
		seen := make(map[string]Binding)
		for _, binding := range cfg[ref.inName][ref.bucket] {
			seq, err := keys.ParseSequence(binding.Keys)
			if err == nil && len(seq) > 0 {
				if prev, dup := seen[seq.ID()]; dup {
					err = fmt.Errorf("%q repeats %q: %w", binding.Keys, prev.Keys, ErrDuplicateBinding)
				}
				seen[seq.ID()] = binding
			}
			if err != nil {
				if firstErr == nil || binding.Line > 0 && binding.Line < firstLine {
					if binding.Line > 0 {
						err = fmt.Errorf("line %d: %w", binding.Line, err)
					}
					firstErr = fmt.Errorf("%s.%s: %w", ref.inName, ref.bucket, err)
					firstLine = binding.Line
				}
				continue
			}
			if len(seq) == 0 {
				continue
			}
			km.Set(seq, binding.Spec)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return raw, nil
}

// KeyBindings is the merged, immutable lookup table. It holds a keymap for
// every declared (input mode, UI mode) pair.
type KeyBindings struct {
	modes map[InputMode]map[UIMode]*Keymap
}

var emptyKeymap = New()

// Keymap returns the keymap for ui within in. It never fails: modes absent
// from configuration resolve to their inherited defaults, and undeclared
// values resolve to an empty keymap. The result must not be modified.
func (kb *KeyBindings) Keymap(ui UIMode, in InputMode) *Keymap {
	if kb == nil {
		return emptyKeymap
	}
	if km, ok := kb.modes[in][ui]; ok {
		return km
	}
	return emptyKeymap
}

// MergeDefaults resolves raw into a total KeyBindings. For each input mode,
// every UI mode starts from a copy of the default bucket; a mode's own
// bindings then replace colliding sequences and add new ones. Modes with no
// section of their own get the defaults unchanged.
func MergeDefaults(raw RawKeyBindings) *KeyBindings {
	kb := &KeyBindings{modes: make(map[InputMode]map[UIMode]*Keymap)}
	for _, in := range InputModes() {
		buckets := raw[in]
		base, ok := buckets[DefaultOf()]
		if !ok {
			base = New()
		}
		modes := make(map[UIMode]*Keymap, len(UIModes()))
		for _, ui := range UIModes() {
			km := base.Clone()
			if own, ok := buckets[ModeOf(ui)]; ok {
				km.Overlay(own)
			}
			modes[ui] = km
		}
		kb.modes[in] = modes
	}
	return kb
}

// Build parses and merges cfg in one step.
func Build(cfg Config) (*KeyBindings, error) {
	raw, err := ParseRaw(cfg)
	if err != nil {
		return nil, err
	}
	return MergeDefaults(raw), nil
}
