package keys

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

var teaNamed = map[tea.KeyType]Key{
	tea.KeyEnter:      Named(CodeEnter),
	tea.KeyTab:        Named(CodeTab),
	tea.KeyShiftTab:   {Code: CodeBackTab, Mods: ModShift},
	tea.KeyEsc:        Named(CodeEsc),
	tea.KeyBackspace:  Named(CodeBackspace),
	tea.KeyDelete:     Named(CodeDelete),
	tea.KeyInsert:     Named(CodeInsert),
	tea.KeyHome:       Named(CodeHome),
	tea.KeyEnd:        Named(CodeEnd),
	tea.KeyPgUp:       Named(CodePageUp),
	tea.KeyPgDown:     Named(CodePageDown),
	tea.KeyUp:         Named(CodeUp),
	tea.KeyDown:       Named(CodeDown),
	tea.KeyLeft:       Named(CodeLeft),
	tea.KeyRight:      Named(CodeRight),
	tea.KeyCtrlUp:     {Code: CodeUp, Mods: ModCtrl},
	tea.KeyCtrlDown:   {Code: CodeDown, Mods: ModCtrl},
	tea.KeyCtrlLeft:   {Code: CodeLeft, Mods: ModCtrl},
	tea.KeyCtrlRight:  {Code: CodeRight, Mods: ModCtrl},
	tea.KeyShiftUp:    {Code: CodeUp, Mods: ModShift},
	tea.KeyShiftDown:  {Code: CodeDown, Mods: ModShift},
	tea.KeyShiftLeft:  {Code: CodeLeft, Mods: ModShift},
	tea.KeyShiftRight: {Code: CodeRight, Mods: ModShift},
	tea.KeySpace:      Char(' '),
	tea.KeyCtrlAt:     {Code: CodeRune, Rune: ' ', Mods: ModCtrl},
	tea.KeyF1:         Fn(1),
	tea.KeyF2:         Fn(2),
	tea.KeyF3:         Fn(3),
	tea.KeyF4:         Fn(4),
	tea.KeyF5:         Fn(5),
	tea.KeyF6:         Fn(6),
	tea.KeyF7:         Fn(7),
	tea.KeyF8:         Fn(8),
	tea.KeyF9:         Fn(9),
	tea.KeyF10:        Fn(10),
	tea.KeyF11:        Fn(11),
	tea.KeyF12:        Fn(12),
}

// FromMsg converts a Bubble Tea key message into a Key. It reports false for
// messages that do not describe a single keystroke, such as pastes.
func FromMsg(msg tea.KeyMsg) (Key, bool) {
	k, ok := teaNamed[msg.Type]
	switch {
	case ok:
	case msg.Type == tea.KeyRunes:
		if len(msg.Runes) != 1 || msg.Paste {
			return Key{}, false
		}
		k = Char(msg.Runes[0])
		if unicode.IsUpper(k.Rune) {
			k.Mods |= ModShift
		}
	case msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ:
		k = Key{Code: CodeRune, Rune: rune('a' + msg.Type - tea.KeyCtrlA), Mods: ModCtrl}
	default:
		return Key{}, false
	}
	if msg.Alt {
		k.Mods |= ModAlt
	}
	return k, true
}
