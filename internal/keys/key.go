// Package keys parses human-readable key combos such as "<C-x>" or "gg" into
// normalized key descriptors and renders them back for display.
package keys

import (
	"fmt"
	"strings"
	"unicode"
)

// Code identifies a key independent of its modifiers.
// Character keys use CodeRune and carry the character in Key.Rune.
type Code uint8

const (
	CodeNone Code = iota
	CodeRune
	CodeEnter
	CodeEsc
	CodeTab
	CodeBackTab
	CodeBackspace
	CodeDelete
	CodeInsert
	CodeHome
	CodeEnd
	CodePageUp
	CodePageDown
	CodeUp
	CodeDown
	CodeLeft
	CodeRight
	// CodeF is a function key; Key.F holds its index (1-12).
	CodeF
)

var codeNames = map[Code]string{
	CodeEnter:     "CR",
	CodeEsc:       "Esc",
	CodeTab:       "Tab",
	CodeBackTab:   "BackTab",
	CodeBackspace: "BS",
	CodeDelete:    "Del",
	CodeInsert:    "Insert",
	CodeHome:      "Home",
	CodeEnd:       "End",
	CodePageUp:    "PageUp",
	CodePageDown:  "PageDown",
	CodeUp:        "Up",
	CodeDown:      "Down",
	CodeLeft:      "Left",
	CodeRight:     "Right",
}

// Modifier is a bit set of modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
)

// ModNone indicates no modifiers.
const ModNone Modifier = 0

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// prefix renders m in the short "C-A-S-" form used inside <...>.
func (m Modifier) prefix() string {
	var b strings.Builder
	if m.Has(ModCtrl) {
		b.WriteString("C-")
	}
	if m.Has(ModAlt) {
		b.WriteString("A-")
	}
	if m.Has(ModShift) {
		b.WriteString("S-")
	}
	return b.String()
}

// Key is a single normalized keystroke. Keys are comparable and may be used
// as map keys; two keys are equal iff code, rune, function index and
// modifiers are all equal.
type Key struct {
	Code Code
	Rune rune
	F    uint8
	Mods Modifier
}

// Char returns the unmodified key for r.
func Char(r rune) Key {
	return Key{Code: CodeRune, Rune: r}
}

// Named returns the unmodified named key c.
func Named(c Code) Key {
	return Key{Code: c}
}

// Fn returns function key n (1-12).
func Fn(n int) Key {
	return Key{Code: CodeF, F: uint8(n)}
}

// With returns k with mods added.
func (k Key) With(mods Modifier) Key {
	k.Mods |= mods
	return k
}

// IsDigit reports whether k is an unmodified ASCII digit.
func (k Key) IsDigit() bool {
	return k.Code == CodeRune && k.Mods == ModNone && k.Rune >= '0' && k.Rune <= '9'
}

// String returns the canonical display form, e.g. "a", "space", "<C-x>",
// "<CR>" or "<F5>". Synonyms collapse to one spelling.
func (k Key) String() string {
	return k.render(false)
}

func (k Key) render(spec bool) string {
	mods := k.Mods
	var name string
	switch k.Code {
	case CodeRune:
		if unicode.IsUpper(k.Rune) {
			mods &^= ModShift
		}
		switch k.Rune {
		case ' ':
			if mods == ModNone && !spec {
				return "space"
			}
			name = "Space"
		case '<':
			name = "lt"
		case '>':
			name = "gt"
		default:
			if mods == ModNone {
				return string(k.Rune)
			}
			name = string(k.Rune)
		}
	case CodeF:
		name = fmt.Sprintf("F%d", k.F)
	case CodeBackTab:
		mods &^= ModShift
		name = codeNames[k.Code]
	case CodeNone:
		return ""
	default:
		name = codeNames[k.Code]
	}
	return "<" + mods.prefix() + name + ">"
}
