package tui

import (
	"fmt"
	"log/slog"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Beastwick18/nyaa/internal/client"
	"github.com/Beastwick18/nyaa/internal/config"
	"github.com/Beastwick18/nyaa/internal/keymap"
	"github.com/Beastwick18/nyaa/internal/results"
)

const (
	ActQuit           keymap.Action = "quit"
	ActUp             keymap.Action = "up"
	ActDown           keymap.Action = "down"
	ActTop            keymap.Action = "top"
	ActBottom         keymap.Action = "bottom"
	ActSearch         keymap.Action = "search"
	ActSubmit         keymap.Action = "submit"
	ActClose          keymap.Action = "close"
	ActClearSearch    keymap.Action = "clear_search"
	ActCategory       keymap.Action = "category"
	ActSort           keymap.Action = "sort"
	ActReverseSort    keymap.Action = "reverse_sort"
	ActSelect         keymap.Action = "select"
	ActDownload       keymap.Action = "download"
	ActToggleMark     keymap.Action = "toggle_mark"
	ActBatch          keymap.Action = "batch"
	ActDownloadMarked keymap.Action = "download_marked"
	ActClearMarks     keymap.Action = "clear_marks"
	ActHelp           keymap.Action = "help"
	ActClients        keymap.Action = "clients"
)

var actionDescriptions = map[keymap.Action]string{
	ActQuit:           "quit",
	ActUp:             "move up",
	ActDown:           "move down",
	ActTop:            "go to top",
	ActBottom:         "go to bottom",
	ActSearch:         "search",
	ActSubmit:         "apply search",
	ActClose:          "close",
	ActClearSearch:    "clear search",
	ActCategory:       "pick category",
	ActSort:           "pick sort",
	ActReverseSort:    "reverse sort",
	ActSelect:         "choose",
	ActDownload:       "download",
	ActToggleMark:     "toggle mark",
	ActBatch:          "batch mode",
	ActDownloadMarked: "download marked",
	ActClearMarks:     "clear marks",
	ActHelp:           "help",
	ActClients:        "pick client",
}

// Actions lists every action the browser understands, sorted by name.
func Actions() []keymap.Action {
	out := make([]keymap.Action, 0, len(actionDescriptions))
	for a := range actionDescriptions {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// Describe returns the human description of a, or its name when unknown.
func Describe(a keymap.Action) string {
	if d, ok := actionDescriptions[a]; ok {
		return d
	}
	return string(a)
}

// CheckActions reports the first binding in kb that names an unknown action.
func CheckActions(kb *keymap.KeyBindings) error {
	for _, in := range keymap.InputModes() {
		for _, ui := range keymap.UIModes() {
			for _, e := range kb.Keymap(ui, in).Entries() {
				for _, a := range e.Spec.Actions() {
					if _, ok := actionDescriptions[a]; !ok {
						return fmt.Errorf("%s.%s %s: unknown action %q", in, ui, e.Keys.Spec(), a)
					}
				}
			}
		}
	}
	return nil
}

// maxReplay bounds how many times one combo may run its actions.
const maxReplay = 1000

// replayCount combines the typed count with the binding's multiplier. A
// missing or zero count means once.
func replayCount(repeat int, hasRepeat bool, multiplier int) int {
	r := 1
	if hasRepeat && repeat > 1 {
		r = repeat
	}
	if multiplier < 1 {
		multiplier = 1
	}
	if r > maxReplay/multiplier {
		return maxReplay
	}
	return r * multiplier
}

// run performs one action.
func (m Model) run(a keymap.Action) (Model, tea.Cmd) {
	switch a {
	case ActQuit:
		m.quitting = true
		return m, tea.Quit

	case ActUp:
		m.move(-1)
	case ActDown:
		m.move(1)
	case ActTop:
		m.move(-m.listLen())
	case ActBottom:
		m.move(m.listLen())

	case ActSearch:
		m.setMode(keymap.Search)
		m.input.SetValue(m.query)
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd

	case ActSubmit:
		if m.mode == keymap.Search {
			m.query = m.input.Value()
			m.input.Blur()
			m.setMode(keymap.Main)
			m.applyFilter()
		}

	case ActClose:
		m.close()

	case ActClearSearch:
		m.query = ""
		m.input.SetValue("")
		m.applyFilter()

	case ActCategory:
		m.setMode(keymap.Category)
		m.menuCursor = max(0, slices.Index(m.categoryOptions(), m.category))

	case ActSort:
		m.setMode(keymap.Sort)
		m.menuCursor = int(m.sortKey)

	case ActClients:
		if len(m.clients) == 0 {
			m.err = config.ErrNoClient
			return m, nil
		}
		m.setMode(keymap.Clients)
		m.menuCursor = 0
		if m.client != nil {
			m.menuCursor = max(0, slices.IndexFunc(m.clients, func(c client.Client) bool {
				return c.Name() == m.client.Name()
			}))
		}

	case ActReverseSort:
		m.reverse = !m.reverse
		m.applyFilter()

	case ActSelect:
		m.selectMenu()

	case ActDownload:
		if sel := m.selected(); sel != nil {
			return m, m.downloadCmd([]results.Item{*sel})
		}

	case ActToggleMark:
		if sel := m.selected(); sel != nil {
			if m.marked[sel.Link] {
				delete(m.marked, sel.Link)
			} else {
				m.marked[sel.Link] = true
			}
		}

	case ActBatch:
		m.setMode(keymap.Batch)

	case ActDownloadMarked:
		var items []results.Item
		for _, it := range m.items {
			if m.marked[it.Link] {
				items = append(items, it)
			}
		}
		if len(items) == 0 {
			m.message = "nothing marked"
			return m, nil
		}
		m.marked = make(map[string]bool)
		if m.mode == keymap.Batch {
			m.setMode(keymap.Main)
		}
		return m, m.downloadCmd(items)

	case ActClearMarks:
		m.marked = make(map[string]bool)

	case ActHelp:
		if m.mode != keymap.Help {
			m.setMode(keymap.Help)
		}

	default:
		m.err = fmt.Errorf("unknown action %q", a)
	}
	return m, nil
}

// close leaves the current popup or mode.
func (m *Model) close() {
	switch m.mode {
	case keymap.Search:
		m.input.SetValue(m.query)
		m.input.Blur()
		m.setMode(keymap.Main)
	case keymap.Help:
		m.setMode(m.prevMode)
	case keymap.Main:
		m.err = nil
		m.message = ""
	default:
		m.setMode(keymap.Main)
	}
}

func (m *Model) selectMenu() {
	switch m.mode {
	case keymap.Category:
		opts := m.categoryOptions()
		if m.menuCursor < len(opts) {
			m.category = opts[m.menuCursor]
		}
		m.setMode(keymap.Main)
		m.applyFilter()
	case keymap.Sort:
		sortKeys := results.SortKeys()
		if m.menuCursor < len(sortKeys) {
			m.sortKey = sortKeys[m.menuCursor]
		}
		m.setMode(keymap.Main)
		m.applyFilter()
	case keymap.Clients:
		if m.menuCursor < len(m.clients) {
			m.client = m.clients[m.menuCursor]
			m.message = "client: " + m.client.Name()
			slog.Info("client selected", "client", m.client.Name())
		}
		m.setMode(keymap.Main)
	}
}
