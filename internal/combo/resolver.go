package combo

import (
	"github.com/Beastwick18/nyaa/internal/keymap"
	"github.com/Beastwick18/nyaa/internal/keys"
)

// Hint is one possible continuation of a pending combo.
type Hint struct {
	// Keys is the remainder still to be typed.
	Keys  keys.Sequence
	Label string
}

// Result is the outcome of resolving a combo.
type Result struct {
	Status Status
	// Combo is the display form of the resolved keys, repeat prefix included.
	Combo string
	// Multiplier and Actions are the bound spec's view; set on Successful.
	Multiplier int
	Actions    []keymap.Action
	// Repeat is the digit prefix typed before the combo, independent of
	// Multiplier. HasRepeat is false when no digits were typed.
	Repeat    int
	HasRepeat bool
	// Hints lists the continuations in keymap order; set on Pending.
	Hints []Hint
}

// Resolver matches combos against key bindings.
type Resolver struct {
	// Label describes an action in hints. Nil uses the action name.
	Label func(keymap.Action) string
}

// Lookup classifies seq against the keymap of (ui, in) without touching any
// tracker. Only an exact match is Successful; a prefix of one or more
// bindings is Pending, even when a single continuation remains.
func (r Resolver) Lookup(kb *keymap.KeyBindings, ui keymap.UIMode, in keymap.InputMode, seq keys.Sequence) Result {
	km := kb.Keymap(ui, in)
	res := Result{Combo: seq.String()}

	if spec, ok := km.Get(seq); ok {
		res.Status = Successful
		res.Multiplier, res.Actions = spec.View()
		return res
	}

	candidates := km.Continuations(seq)
	if len(candidates) == 0 {
		res.Status = Unmatched
		return res
	}
	res.Status = Pending
	res.Hints = make([]Hint, len(candidates))
	for i, c := range candidates {
		res.Hints[i] = Hint{
			Keys:  c.Keys[len(seq):].Clone(),
			Label: c.Spec.Label(r.Label),
		}
	}
	return res
}

// Resolve looks up the tracker's events, records the new status on t and
// carries the digit prefix into the result. The tracker is cleared when the
// combo is finished, either Successful or Unmatched.
func (r Resolver) Resolve(t *Tracker, kb *keymap.KeyBindings, ui keymap.UIMode, in keymap.InputMode) Result {
	res := r.Lookup(kb, ui, in, t.events)
	res.Combo = t.Display()
	res.Repeat, res.HasRepeat = t.Repeat()
	t.SetStatus(res.Status)
	if res.Status == Successful || res.Status == Unmatched {
		t.Clear()
	}
	return res
}
