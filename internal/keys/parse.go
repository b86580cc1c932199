package keys

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidKey is wrapped by every parse failure.
var ErrInvalidKey = errors.New("invalid key")

// modifierPrefixes are stripped from the front of a token, long forms first.
var modifierPrefixes = []struct {
	prefix string
	mod    Modifier
}{
	{"ctrl-", ModCtrl},
	{"alt-", ModAlt},
	{"shift-", ModShift},
	{"c-", ModCtrl},
	{"a-", ModAlt},
	{"s-", ModShift},
}

// namedKeys maps lower-cased key names to keys. "tab" is handled separately
// because its meaning depends on Shift.
var namedKeys = map[string]Key{
	"esc":       Named(CodeEsc),
	"enter":     Named(CodeEnter),
	"cr":        Named(CodeEnter),
	"left":      Named(CodeLeft),
	"right":     Named(CodeRight),
	"up":        Named(CodeUp),
	"down":      Named(CodeDown),
	"home":      Named(CodeHome),
	"end":       Named(CodeEnd),
	"pageup":    Named(CodePageUp),
	"pagedown":  Named(CodePageDown),
	"backtab":   {Code: CodeBackTab, Mods: ModShift},
	"backspace": Named(CodeBackspace),
	"bs":        Named(CodeBackspace),
	"delete":    Named(CodeDelete),
	"del":       Named(CodeDelete),
	"insert":    Named(CodeInsert),
	"f1":        Fn(1),
	"f2":        Fn(2),
	"f3":        Fn(3),
	"f4":        Fn(4),
	"f5":        Fn(5),
	"f6":        Fn(6),
	"f7":        Fn(7),
	"f8":        Fn(8),
	"f9":        Fn(9),
	"f10":       Fn(10),
	"f11":       Fn(11),
	"f12":       Fn(12),
	"space":     Char(' '),
	"hyphen":    Char('-'),
	"minus":     Char('-'),
	"-":         Char('-'),
	"lt":        Char('<'),
	"gt":        Char('>'),
}

// ParseToken parses a single token without angle brackets, such as
// "Ctrl-x", "c-a-Del", "F5" or "j".
//
// Modifier prefixes (ctrl-/c-, alt-/a-, shift-/s-) stack and are matched
// case-insensitively. An uppercase letter implies Shift, and an explicit
// Shift upper-cases a lowercase letter.
func ParseToken(raw string) (Key, error) {
	rest := raw
	var mods Modifier
	for {
		lower := strings.ToLower(rest)
		stripped := false
		for _, p := range modifierPrefixes {
			if strings.HasPrefix(lower, p.prefix) {
				mods |= p.mod
				rest = rest[len(p.prefix):]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}

	name := strings.ToLower(rest)
	if name == "tab" {
		if mods.Has(ModShift) {
			return Key{Code: CodeBackTab, Mods: mods}, nil
		}
		return Key{Code: CodeTab, Mods: mods}, nil
	}
	if k, ok := namedKeys[name]; ok {
		return k.With(mods), nil
	}

	runes := []rune(rest)
	if len(runes) != 1 {
		return Key{}, fmt.Errorf("unable to parse %q: %w", raw, ErrInvalidKey)
	}
	r := runes[0]
	switch {
	case unicode.IsUpper(r):
		mods |= ModShift
	case mods.Has(ModShift) && unicode.IsLower(r):
		r = unicode.ToUpper(r)
	}
	return Key{Code: CodeRune, Rune: r, Mods: mods}, nil
}

// ParseSequence parses a combo string such as "gg", "<C-x>abc" or
// "<Space><S-Tab>". Text inside <...> is one token; every other character is
// a token of its own. The empty string yields an empty sequence.
func ParseSequence(raw string) (Sequence, error) {
	seq := Sequence{}
	var (
		token    strings.Builder
		compound bool
	)
	for _, r := range raw {
		switch {
		case compound && r == '>':
			if token.Len() == 0 {
				return nil, fmt.Errorf("unable to parse %q: empty key: %w", raw, ErrInvalidKey)
			}
			k, err := ParseToken(token.String())
			if err != nil {
				return nil, err
			}
			seq = append(seq, k)
			token.Reset()
			compound = false
		case compound:
			token.WriteRune(r)
		case r == '<':
			compound = true
		default:
			k, err := ParseToken(string(r))
			if err != nil {
				return nil, err
			}
			seq = append(seq, k)
		}
	}
	if compound {
		return nil, fmt.Errorf("unable to parse %q: unterminated '<': %w", raw, ErrInvalidKey)
	}
	return seq, nil
}

// MustParseSequence parses raw and panics on error.
// Use only for known-valid combos in initialization code and tests.
func MustParseSequence(raw string) Sequence {
	seq, err := ParseSequence(raw)
	if err != nil {
		panic(err)
	}
	return seq
}
