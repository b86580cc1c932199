package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Beastwick18/nyaa/internal/client"
	"github.com/Beastwick18/nyaa/internal/combo"
	"github.com/Beastwick18/nyaa/internal/config"
	"github.com/Beastwick18/nyaa/internal/keymap"
	"github.com/Beastwick18/nyaa/internal/keys"
	"github.com/Beastwick18/nyaa/internal/results"
)

const downloadTimeout = 30 * time.Second

// History records downloads. *state.Store implements it.
type History interface {
	RecordDownload(title, link, client string) error
	Downloaded(links []string) (map[string]bool, error)
}

// BindingsMsg delivers a rebuilt binding table, or the error that prevented
// building one.
type BindingsMsg struct {
	Bindings     *keymap.KeyBindings
	ComboTimeout time.Duration
	Err          error
}

type comboTimeoutMsg struct {
	seq int
}

type downloadedMsg struct {
	Links  []string
	Client string
	Err    error
}

// Options configures a Model.
type Options struct {
	Items        []results.Item
	Bindings     *keymap.KeyBindings
	ComboTimeout time.Duration
	Client       client.Client
	// Clients are offered by the client picker.
	Clients []client.Client
	History History
	// SortKey and Reverse set the initial ordering.
	SortKey results.SortKey
	Reverse bool
	// NonCombo overrides combo.DefaultNonCombo.
	NonCombo []keys.Key
}

type Model struct {
	items      []results.Item
	filtered   []results.Item
	categories []string
	cursor     int
	scroll     int
	menuCursor int

	query    string
	category string
	sortKey  results.SortKey
	reverse  bool
	input    textinput.Model

	marked     map[string]bool
	downloaded map[string]bool

	mode     keymap.UIMode
	prevMode keymap.UIMode

	bindings     *keymap.KeyBindings
	tracker      *combo.Tracker
	resolver     combo.Resolver
	comboTimeout time.Duration
	comboSeq     int
	last         combo.Result

	client  client.Client
	clients []client.Client
	history History

	width, height int
	message       string
	err           error
	quitting      bool
}

func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search titles..."
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 60

	if opts.ComboTimeout <= 0 {
		opts.ComboTimeout = config.DefaultComboTimeout
	}

	m := Model{
		items:        opts.Items,
		categories:   results.Categories(opts.Items),
		input:        ti,
		marked:       make(map[string]bool),
		downloaded:   make(map[string]bool),
		mode:         keymap.Main,
		prevMode:     keymap.Main,
		bindings:     opts.Bindings,
		tracker:      combo.NewTracker(opts.NonCombo...),
		resolver:     combo.Resolver{Label: Describe},
		comboTimeout: opts.ComboTimeout,
		client:       opts.Client,
		clients:      opts.Clients,
		history:      opts.History,
		sortKey:      opts.SortKey,
		reverse:      opts.Reverse,
	}
	if m.history != nil {
		links := make([]string, len(m.items))
		for i, it := range m.items {
			links[i] = it.Link
		}
		if done, err := m.history.Downloaded(links); err == nil {
			m.downloaded = done
		} else {
			slog.Warn("loading download history", "error", err)
		}
	}
	m.applyFilter()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool {
	return m.quitting
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case BindingsMsg:
		if msg.Err != nil {
			slog.Error("reloading keybindings", "error", msg.Err)
			m.err = fmt.Errorf("reload: %w", msg.Err)
			return m, nil
		}
		m.bindings = msg.Bindings
		if msg.ComboTimeout > 0 {
			m.comboTimeout = msg.ComboTimeout
		}
		m.tracker.Clear()
		m.tracker.SetStatus(combo.Cancelled)
		m.last = combo.Result{Status: combo.Cancelled}
		m.err = nil
		m.message = "keybindings reloaded"
		slog.Info("keybindings reloaded")
		return m, nil

	case comboTimeoutMsg:
		if msg.seq == m.comboSeq && m.tracker.Status() == combo.Pending && !m.tracker.Idle() {
			m.last = combo.Result{Status: combo.Cancelled, Combo: m.tracker.Display()}
			m.tracker.Clear()
			m.tracker.SetStatus(combo.Cancelled)
		}
		return m, nil

	case downloadedMsg:
		for _, l := range msg.Links {
			m.downloaded[l] = true
		}
		if msg.Err != nil {
			slog.Warn("download failed", "client", msg.Client, "error", msg.Err)
			m.err = msg.Err
			return m, nil
		}
		m.message = fmt.Sprintf("sent %d to %s", len(msg.Links), msg.Client)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 12
		m.ensureCursorVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) inputMode() keymap.InputMode {
	if m.mode == keymap.Search {
		return keymap.Insert
	}
	return keymap.Normal
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits
	if key.Matches(msg, hardKeys.CtrlC) {
		m.quitting = true
		return m, tea.Quit
	}

	in, ui := m.inputMode(), m.mode
	k, ok := keys.FromMsg(msg)
	if !ok {
		if in == keymap.Insert {
			return m.insert(msg)
		}
		return m, nil
	}

	wasIdle := m.tracker.Idle()

	// In insert mode a key that starts no binding is text.
	if in == keymap.Insert && wasIdle {
		if m.resolver.Lookup(m.bindings, ui, in, keys.Sequence{k}).Status == combo.Unmatched {
			m.tracker.SetStatus(combo.Inserted)
			m.last = combo.Result{Status: combo.Inserted, Combo: k.String()}
			return m.insert(msg)
		}
	}

	prev := m.tracker.Display()
	m.tracker.PushKey(k)
	if m.tracker.Idle() {
		// A non-combo key. On its own it may still be bound.
		if wasIdle {
			res := m.resolver.Lookup(m.bindings, ui, in, keys.Sequence{k})
			if res.Status == combo.Successful {
				m.tracker.SetStatus(combo.Successful)
				m.last = res
				return m.dispatch(res)
			}
		}
		m.last = combo.Result{Status: combo.Cancelled, Combo: prev}
		return m, nil
	}

	res := m.resolver.Resolve(m.tracker, m.bindings, ui, in)
	m.last = res
	switch res.Status {
	case combo.Successful:
		return m.dispatch(res)
	case combo.Pending:
		m.comboSeq++
		seq := m.comboSeq
		return m, tea.Tick(m.comboTimeout, func(time.Time) tea.Msg {
			return comboTimeoutMsg{seq: seq}
		})
	}
	return m, nil
}

// dispatch runs a resolved combo's actions in order, replayed per
// replayCount.
func (m Model) dispatch(res combo.Result) (tea.Model, tea.Cmd) {
	n := replayCount(res.Repeat, res.HasRepeat, res.Multiplier)
	slog.Debug("dispatch", "combo", res.Combo, "actions", res.Actions, "times", n)

	var cmds []tea.Cmd
	for range n {
		for _, a := range res.Actions {
			var cmd tea.Cmd
			m, cmd = m.run(a)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			if m.quitting {
				return m, tea.Quit
			}
		}
	}
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

func (m Model) insert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) downloadCmd(items []results.Item) tea.Cmd {
	cl, history := m.client, m.history
	if cl == nil {
		return func() tea.Msg { return downloadedMsg{Err: config.ErrNoClient} }
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
		defer cancel()

		var sent []string
		for _, it := range items {
			if err := cl.Download(ctx, it.Link); err != nil {
				return downloadedMsg{Links: sent, Client: cl.Name(), Err: fmt.Errorf("%s: %w", it.Title, err)}
			}
			sent = append(sent, it.Link)
			if history != nil {
				if err := history.RecordDownload(it.Title, it.Link, cl.Name()); err != nil {
					slog.Warn("recording download", "link", it.Link, "error", err)
				}
			}
		}
		return downloadedMsg{Links: sent, Client: cl.Name()}
	}
}

func (m *Model) setMode(mode keymap.UIMode) {
	if mode == keymap.Help && m.mode != keymap.Help {
		m.prevMode = m.mode
	}
	m.mode = mode
}

func (m Model) categoryOptions() []string {
	return append([]string{""}, m.categories...)
}

func (m Model) listLen() int {
	switch m.mode {
	case keymap.Category:
		return len(m.categoryOptions())
	case keymap.Sort:
		return len(results.SortKeys())
	case keymap.Clients:
		return len(m.clients)
	default:
		return len(m.filtered)
	}
}

// inMenu reports whether a picker popup has focus.
func (m Model) inMenu() bool {
	switch m.mode {
	case keymap.Category, keymap.Sort, keymap.Clients:
		return true
	}
	return false
}

func (m *Model) move(delta int) {
	n := m.listLen()
	if m.inMenu() {
		m.menuCursor = clamp(m.menuCursor+delta, 0, n-1)
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, n-1)
	m.ensureCursorVisible()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func (m *Model) applyFilter() {
	m.filtered = results.Filter(m.items, m.query, m.category)
	results.Sort(m.filtered, m.sortKey, m.reverse)
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.ensureCursorVisible()
}

func (m Model) maxVisibleRows() int {
	if m.height <= 0 {
		return len(m.filtered)
	}
	return max(1, m.height-6)
}

func (m *Model) ensureCursorVisible() {
	maxVis := m.maxVisibleRows()
	if maxVis <= 0 {
		m.scroll = 0
		return
	}
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+maxVis {
		m.scroll = m.cursor - maxVis + 1
	}
	// Clamp scroll
	m.scroll = clamp(m.scroll, 0, max(0, len(m.filtered)-maxVis))
}

func (m Model) selected() *results.Item {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	it := m.filtered[m.cursor]
	return &it
}
