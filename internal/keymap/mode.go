package keymap

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is wrapped when configuration names a mode that does not exist.
var ErrUnknownMode = errors.New("unknown mode")

// InputMode selects a whole keymap namespace.
type InputMode uint8

const (
	// Normal routes every keystroke through combo matching.
	Normal InputMode = iota
	// Insert routes unbound keystrokes to a text input.
	Insert
)

var inputModeNames = [...]string{
	Normal: "normal",
	Insert: "insert",
}

// InputModes returns every declared input mode.
func InputModes() []InputMode {
	return []InputMode{Normal, Insert}
}

func (m InputMode) String() string {
	if int(m) < len(inputModeNames) {
		return inputModeNames[m]
	}
	return fmt.Sprintf("InputMode(%d)", m)
}

// ParseInputMode looks up an input mode by its configuration name.
func ParseInputMode(name string) (InputMode, error) {
	for _, m := range InputModes() {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: input mode %q", ErrUnknownMode, name)
}

// UIMode is the screen or popup that currently has focus.
type UIMode uint8

const (
	Main UIMode = iota
	Search
	Category
	Sort
	Batch
	Help
	Clients
)

var uiModeNames = [...]string{
	Main:     "main",
	Search:   "search",
	Category: "category",
	Sort:     "sort",
	Batch:    "batch",
	Help:     "help",
	Clients:  "clients",
}

// UIModes returns every declared UI mode in declaration order.
func UIModes() []UIMode {
	return []UIMode{Main, Search, Category, Sort, Batch, Help, Clients}
}

func (m UIMode) String() string {
	if int(m) < len(uiModeNames) {
		return uiModeNames[m]
	}
	return fmt.Sprintf("UIMode(%d)", m)
}

// ParseUIMode looks up a UI mode by its configuration name.
func ParseUIMode(name string) (UIMode, error) {
	for _, m := range UIModes() {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: ui mode %q", ErrUnknownMode, name)
}

// DefaultBucket is the configuration key of the mode-agnostic bucket.
const DefaultBucket = "_"

// Bucket is either the default bucket or one concrete UI mode.
type Bucket struct {
	Mode    UIMode
	Default bool
}

// DefaultOf returns the default bucket.
func DefaultOf() Bucket {
	return Bucket{Default: true}
}

// ModeOf returns the bucket of a concrete UI mode.
func ModeOf(m UIMode) Bucket {
	return Bucket{Mode: m}
}

func (b Bucket) String() string {
	if b.Default {
		return DefaultBucket
	}
	return b.Mode.String()
}

// ParseBucket parses a configuration bucket key.
func ParseBucket(name string) (Bucket, error) {
	if name == DefaultBucket {
		return DefaultOf(), nil
	}
	m, err := ParseUIMode(name)
	if err != nil {
		return Bucket{}, err
	}
	return ModeOf(m), nil
}
