package combo

import (
	"math"
	"strconv"

	"github.com/Beastwick18/nyaa/internal/keys"
)

// DefaultNonCombo lists the keys that always cancel the combo in progress.
var DefaultNonCombo = []keys.Key{keys.Named(keys.CodeEsc)}

// Tracker accumulates the keystrokes of one combo. It is owned by the input
// loop and is not safe for concurrent use.
type Tracker struct {
	status    Status
	repeat    int
	hasRepeat bool
	events    keys.Sequence
	nonCombo  map[keys.Key]bool
}

// NewTracker returns a tracker in the Cancelled state. With no arguments the
// non-combo set is DefaultNonCombo.
func NewTracker(nonCombo ...keys.Key) *Tracker {
	if len(nonCombo) == 0 {
		nonCombo = DefaultNonCombo
	}
	t := &Tracker{nonCombo: make(map[keys.Key]bool, len(nonCombo))}
	for _, k := range nonCombo {
		t.nonCombo[k] = true
	}
	return t
}

// PushKey folds k into the combo.
//
// An unmodified digit pushed before any other key extends the repeat count
// instead of becoming an event. A non-combo key clears the combo and
// returns Cancelled. Otherwise k is appended and the current status is
// returned unchanged; the resolver decides the new one.
func (t *Tracker) PushKey(k keys.Key) Status {
	if t.nonCombo[k] {
		t.Clear()
		t.status = Cancelled
		return Cancelled
	}
	if k.IsDigit() && len(t.events) == 0 {
		digit := int(k.Rune - '0')
		switch {
		case !t.hasRepeat:
			t.repeat = digit
		case t.repeat > (math.MaxInt-digit)/10:
			t.repeat = math.MaxInt
		default:
			t.repeat = t.repeat*10 + digit
		}
		t.hasRepeat = true
		return t.status
	}
	t.events = append(t.events, k)
	return t.status
}

// Clear empties the repeat count and events. The status is left to the caller.
func (t *Tracker) Clear() {
	t.repeat = 0
	t.hasRepeat = false
	t.events = nil
}

// Status returns the last status set by the resolver or caller.
func (t *Tracker) Status() Status {
	return t.status
}

// SetStatus records a status transition decided outside the tracker.
func (t *Tracker) SetStatus(s Status) {
	t.status = s
}

// Repeat returns the digit-prefix count and whether one was typed.
func (t *Tracker) Repeat() (int, bool) {
	return t.repeat, t.hasRepeat
}

// Events returns a copy of the keys pushed so far, digits excluded.
func (t *Tracker) Events() keys.Sequence {
	return t.events.Clone()
}

// Idle reports whether nothing has been pushed since the last clear.
func (t *Tracker) Idle() bool {
	return len(t.events) == 0 && !t.hasRepeat
}

// Display renders the combo in progress, e.g. "3gg".
func (t *Tracker) Display() string {
	s := t.events.String()
	if t.hasRepeat {
		s = strconv.Itoa(t.repeat) + s
	}
	return s
}
