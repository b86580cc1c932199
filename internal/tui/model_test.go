package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Beastwick18/nyaa/internal/client"
	"github.com/Beastwick18/nyaa/internal/combo"
	"github.com/Beastwick18/nyaa/internal/config"
	"github.com/Beastwick18/nyaa/internal/keymap"
	"github.com/Beastwick18/nyaa/internal/keys"
	"github.com/Beastwick18/nyaa/internal/results"
)

type fakeClient struct {
	name  string
	links []string
	fail  error
}

func (f *fakeClient) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeClient) Download(_ context.Context, link string) error {
	if f.fail != nil {
		return f.fail
	}
	f.links = append(f.links, link)
	return nil
}

type fakeHistory struct {
	recorded []string
	done     map[string]bool
}

func (f *fakeHistory) RecordDownload(_, link, _ string) error {
	f.recorded = append(f.recorded, link)
	return nil
}

func (f *fakeHistory) Downloaded(links []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, l := range links {
		if f.done[l] {
			out[l] = true
		}
	}
	return out, nil
}

func testItems() []results.Item {
	items := make([]results.Item, 30)
	for i := range items {
		cat := "Anime"
		if i%10 == 9 {
			cat = "Music"
		}
		items[i] = results.Item{
			Title:    fmt.Sprintf("Item %02d", i),
			Category: cat,
			Seeders:  i,
			Link:     fmt.Sprintf("magnet:%02d", i),
		}
	}
	return items
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Items == nil {
		opts.Items = testItems()
	}
	if opts.Bindings == nil {
		kb, err := config.Default().KeyBindings()
		require.NoError(t, err)
		opts.Bindings = kb
	}
	return NewModel(opts)
}

func runeMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	enterMsg = tea.KeyMsg{Type: tea.KeyEnter}
	escMsg   = tea.KeyMsg{Type: tea.KeyEsc}
	spaceMsg = tea.KeyMsg{Type: tea.KeySpace}
	ctrlDMsg = tea.KeyMsg{Type: tea.KeyCtrlD}
)

// send feeds msgs through Update and returns the final model and the
// commands produced along the way.
func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, []tea.Cmd) {
	t.Helper()
	var cmds []tea.Cmd
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = next.(Model)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, cmds
}

func typeKeys(t *testing.T, m Model, s string) (Model, []tea.Cmd) {
	t.Helper()
	var msgs []tea.Msg
	for _, r := range s {
		msgs = append(msgs, runeMsg(r))
	}
	return send(t, m, msgs...)
}

// drain runs cmds and returns their messages, flattening batches.
func drain(cmds ...tea.Cmd) []tea.Msg {
	var out []tea.Msg
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			out = append(out, drain(batch...)...)
			continue
		}
		out = append(out, msg)
	}
	return out
}

func TestMovement(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = typeKeys(t, m, "j")
	assert.Equal(t, 1, m.cursor)

	m, _ = typeKeys(t, m, "3j")
	assert.Equal(t, 4, m.cursor)

	m, _ = typeKeys(t, m, "k")
	assert.Equal(t, 3, m.cursor)

	m, _ = typeKeys(t, m, "G")
	assert.Equal(t, 29, m.cursor)

	m, _ = typeKeys(t, m, "gg")
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, combo.Successful, m.last.Status)
}

func TestRepeatTimesMultiplier(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = send(t, m, ctrlDMsg)
	assert.Equal(t, 10, m.cursor)

	m, _ = typeKeys(t, m, "gg")
	m, _ = typeKeys(t, m, "2")
	m, _ = send(t, m, ctrlDMsg)
	assert.Equal(t, 20, m.cursor)

	// Clamped at the end of the list.
	m, _ = typeKeys(t, m, "9")
	m, _ = send(t, m, ctrlDMsg)
	assert.Equal(t, 29, m.cursor)
}

func TestPendingShowsHints(t *testing.T) {
	m := newTestModel(t, Options{})

	m, cmds := typeKeys(t, m, "g")
	assert.Equal(t, combo.Pending, m.last.Status)
	require.Len(t, m.last.Hints, 1)
	assert.Equal(t, "g", m.last.Hints[0].Keys.String())
	assert.Equal(t, "go to top", m.last.Hints[0].Label)
	assert.Len(t, cmds, 1, "pending combo schedules a timeout")
	assert.Contains(t, m.View(), "go to top")
}

func TestUnmatchedCombo(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = typeKeys(t, m, "jj")

	m, _ = typeKeys(t, m, "gx")

	assert.Equal(t, combo.Unmatched, m.last.Status)
	assert.Equal(t, "gx", m.last.Combo)
	assert.Equal(t, 2, m.cursor)
	assert.True(t, m.tracker.Idle())
}

func TestEscCancelsPendingCombo(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = typeKeys(t, m, "3g")

	m, _ = send(t, m, escMsg)

	assert.Equal(t, combo.Cancelled, m.last.Status)
	assert.True(t, m.tracker.Idle())
	assert.Equal(t, keymap.Main, m.mode)

	// A following g starts a new combo rather than completing gg.
	m, _ = typeKeys(t, m, "g")
	assert.Equal(t, combo.Pending, m.last.Status)
}

func TestStandaloneEscRunsItsBinding(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = typeKeys(t, m, "c")
	require.Equal(t, keymap.Category, m.mode)

	m, _ = send(t, m, escMsg)

	assert.Equal(t, keymap.Main, m.mode)
	assert.Equal(t, combo.Successful, m.last.Status)
}

func TestComboTimeout(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = typeKeys(t, m, "g")

	// A stale timeout is ignored.
	m, _ = send(t, m, comboTimeoutMsg{seq: m.comboSeq - 1})
	assert.Equal(t, combo.Pending, m.tracker.Status())

	m, _ = send(t, m, comboTimeoutMsg{seq: m.comboSeq})
	assert.Equal(t, combo.Cancelled, m.tracker.Status())
	assert.Equal(t, combo.Cancelled, m.last.Status)
	assert.True(t, m.tracker.Idle())

	m, _ = typeKeys(t, m, "g")
	assert.Equal(t, combo.Pending, m.last.Status)
}

func TestSearchInsertsText(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = typeKeys(t, m, "/")
	require.Equal(t, keymap.Search, m.mode)
	require.Equal(t, keymap.Insert, m.inputMode())

	m, _ = typeKeys(t, m, "item 2")
	assert.Equal(t, combo.Inserted, m.last.Status)
	assert.Equal(t, "item 2", m.input.Value())
	_, hasRepeat := m.tracker.Repeat()
	assert.False(t, hasRepeat, "digits are text in insert mode")

	m, _ = send(t, m, enterMsg)
	assert.Equal(t, keymap.Main, m.mode)
	assert.Equal(t, "item 2", m.query)
	assert.Len(t, m.filtered, 12)

	// <C-l> clears the search and jumps to the top.
	m, _ = typeKeys(t, m, "j")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.query)
	assert.Len(t, m.filtered, 30)
	assert.Equal(t, 0, m.cursor)
}

func TestSearchEscRestoresQuery(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = typeKeys(t, m, "/abc")

	m, _ = send(t, m, escMsg)

	assert.Equal(t, keymap.Main, m.mode)
	assert.Empty(t, m.query)
	assert.Empty(t, m.input.Value())
}

func TestCategoryMenu(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = typeKeys(t, m, "c")
	assert.Equal(t, keymap.Category, m.mode)
	assert.Equal(t, 0, m.menuCursor)

	// Options are "All", "Anime", "Music".
	m, _ = typeKeys(t, m, "2j")
	assert.Equal(t, 2, m.menuCursor)
	m, _ = send(t, m, enterMsg)

	assert.Equal(t, keymap.Main, m.mode)
	assert.Equal(t, "Music", m.category)
	assert.Len(t, m.filtered, 3)
}

func TestSortMenu(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = typeKeys(t, m, "s")
	require.Equal(t, keymap.Sort, m.mode)
	m, _ = typeKeys(t, m, "2j")
	m, _ = send(t, m, enterMsg)

	assert.Equal(t, results.SortSeeders, m.sortKey)
	assert.Equal(t, "Item 29", m.filtered[0].Title)

	m, _ = typeKeys(t, m, "r")
	assert.Equal(t, "Item 00", m.filtered[0].Title)
}

func TestInitialSort(t *testing.T) {
	m := newTestModel(t, Options{SortKey: results.SortSeeders, Reverse: true})

	assert.Equal(t, "Item 00", m.filtered[0].Title)
	assert.Contains(t, m.View(), "sort: seeders ↑")
}

func TestClientPicker(t *testing.T) {
	local := &fakeClient{name: "local"}
	seedbox := &fakeClient{name: "seedbox"}

	tests := []struct {
		name       string
		current    *fakeClient
		keys       string
		wantCursor int
		want       *fakeClient
	}{
		{"move to second", local, "j", 0, seedbox},
		{"keep current", seedbox, "", 1, seedbox},
		{"clamped at top", seedbox, "5k", 1, local},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, Options{
				Client:  tt.current,
				Clients: []client.Client{local, seedbox},
			})

			m, _ = typeKeys(t, m, "C")
			require.Equal(t, keymap.Clients, m.mode)
			assert.Equal(t, tt.wantCursor, m.menuCursor)
			view := m.View()
			assert.Contains(t, view, "Client")
			assert.Contains(t, view, "seedbox")

			m, _ = typeKeys(t, m, tt.keys)
			m, _ = send(t, m, enterMsg)

			assert.Equal(t, keymap.Main, m.mode)
			assert.Same(t, tt.want, m.client)
			assert.Contains(t, m.View(), "client: "+tt.want.Name())
		})
	}
}

func TestClientPickerSendsToChosenClient(t *testing.T) {
	local := &fakeClient{name: "local"}
	seedbox := &fakeClient{name: "seedbox"}
	m := newTestModel(t, Options{Client: local, Clients: []client.Client{local, seedbox}})

	m, _ = typeKeys(t, m, "Cj")
	m, _ = send(t, m, enterMsg)
	m, cmds := send(t, m, enterMsg)
	m, _ = send(t, m, drain(cmds...)...)

	assert.Empty(t, local.links)
	assert.Equal(t, []string{"magnet:00"}, seedbox.links)
	assert.Equal(t, "sent 1 to seedbox", m.message)
}

func TestClientPickerWithoutClients(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = typeKeys(t, m, "C")

	assert.Equal(t, keymap.Main, m.mode)
	assert.ErrorIs(t, m.err, config.ErrNoClient)
}

func TestHelpReturnsToPreviousMode(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = typeKeys(t, m, "v?")
	require.Equal(t, keymap.Help, m.mode)
	assert.Contains(t, m.View(), "download marked")

	m, _ = typeKeys(t, m, "q")
	assert.Equal(t, keymap.Batch, m.mode)
	assert.False(t, m.quitting)
}

func TestDownloadSelected(t *testing.T) {
	cl := &fakeClient{}
	hist := &fakeHistory{}
	m := newTestModel(t, Options{Client: cl, History: hist})

	m, cmds := send(t, m, runeMsg('j'), enterMsg)
	msgs := drain(cmds...)
	require.Len(t, msgs, 1)
	m, _ = send(t, m, msgs...)

	assert.Equal(t, []string{"magnet:01"}, cl.links)
	assert.Equal(t, []string{"magnet:01"}, hist.recorded)
	assert.True(t, m.downloaded["magnet:01"])
	assert.Equal(t, "sent 1 to fake", m.message)
}

func TestDownloadWithoutClient(t *testing.T) {
	m := newTestModel(t, Options{})

	m, cmds := send(t, m, enterMsg)
	m, _ = send(t, m, drain(cmds...)...)

	assert.ErrorIs(t, m.err, config.ErrNoClient)
}

func TestDownloadFailureKeepsEarlierLinks(t *testing.T) {
	cl := &fakeClient{fail: errors.New("refused")}
	m := newTestModel(t, Options{Client: cl})

	m, cmds := send(t, m, enterMsg)
	m, _ = send(t, m, drain(cmds...)...)

	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "refused")
	assert.Contains(t, m.View(), "refused")
}

func TestBatchDownload(t *testing.T) {
	cl := &fakeClient{}
	m := newTestModel(t, Options{Client: cl})

	m, _ = typeKeys(t, m, "v")
	require.Equal(t, keymap.Batch, m.mode)
	m, _ = send(t, m, spaceMsg, runeMsg('j'), runeMsg('j'), spaceMsg)
	assert.Len(t, m.marked, 2)

	m, cmds := typeKeys(t, m, "D")
	m, _ = send(t, m, drain(cmds...)...)

	assert.Equal(t, []string{"magnet:00", "magnet:02"}, cl.links)
	assert.Empty(t, m.marked)
	assert.Equal(t, keymap.Main, m.mode)
}

func TestClearMarks(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = send(t, m, runeMsg('v'), spaceMsg, runeMsg('j'), spaceMsg)
	require.Len(t, m.marked, 2)

	m, _ = typeKeys(t, m, "x")
	assert.Empty(t, m.marked)

	m, cmds := typeKeys(t, m, "D")
	assert.Empty(t, cmds)
	assert.Equal(t, "nothing marked", m.message)
}

func TestHistoryMarksDownloaded(t *testing.T) {
	hist := &fakeHistory{done: map[string]bool{"magnet:03": true}}
	m := newTestModel(t, Options{History: hist})

	assert.True(t, m.downloaded["magnet:03"])
	assert.False(t, m.downloaded["magnet:04"])
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, Options{})

	m, cmds := typeKeys(t, m, "q")

	assert.True(t, m.Quitting())
	require.Len(t, cmds, 1)
	assert.IsType(t, tea.QuitMsg{}, cmds[0]())
}

func TestCtrlCAlwaysQuits(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = typeKeys(t, m, "/abc")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, m.Quitting())
}

func TestReloadBindings(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = send(t, m, BindingsMsg{Err: errors.New("bad key")})
	assert.ErrorContains(t, m.err, "bad key")
	m, _ = typeKeys(t, m, "j")
	assert.Equal(t, 1, m.cursor, "old bindings stay active")

	cfg, err := config.Parse([]byte("keybinds:\n  normal:\n    _:\n      j: up\n      k: down\n"))
	require.NoError(t, err)
	kb, err := cfg.KeyBindings()
	require.NoError(t, err)

	m, _ = typeKeys(t, m, "g")
	m, _ = send(t, m, BindingsMsg{Bindings: kb})
	assert.NoError(t, m.err)
	assert.True(t, m.tracker.Idle(), "reload drops the combo in progress")

	m, _ = typeKeys(t, m, "kk")
	assert.Equal(t, 3, m.cursor)
}

func TestReplayCount(t *testing.T) {
	tests := []struct {
		repeat     int
		hasRepeat  bool
		multiplier int
		want       int
	}{
		{0, false, 1, 1},
		{0, true, 1, 1},
		{1, true, 1, 1},
		{5, true, 1, 5},
		{0, false, 10, 10},
		{3, true, 10, 30},
		{999999, true, 10, maxReplay},
		{1 << 62, true, 1 << 30, maxReplay},
		{2, true, 0, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, replayCount(tt.repeat, tt.hasRepeat, tt.multiplier),
			"repeat=%d has=%v mult=%d", tt.repeat, tt.hasRepeat, tt.multiplier)
	}
}

func TestCheckActions(t *testing.T) {
	kb, err := config.Default().KeyBindings()
	require.NoError(t, err)
	assert.NoError(t, CheckActions(kb))

	raw := make(keymap.RawKeyBindings)
	raw.Bucket(keymap.Normal, keymap.ModeOf(keymap.Main)).Set(keys.MustParseSequence("z"), keymap.Single("fly"))
	err = CheckActions(keymap.MergeDefaults(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fly")
}

func TestUnknownActionShowsError(t *testing.T) {
	raw := make(keymap.RawKeyBindings)
	raw.Bucket(keymap.Normal, keymap.DefaultOf()).Set(keys.MustParseSequence("z"), keymap.Single("fly"))
	m := newTestModel(t, Options{Bindings: keymap.MergeDefaults(raw)})

	m, _ = typeKeys(t, m, "z")

	assert.ErrorContains(t, m.err, "fly")
}

func TestNonComboOverride(t *testing.T) {
	ctrlG := keys.Char('g').With(keys.ModCtrl)
	m := newTestModel(t, Options{NonCombo: []keys.Key{ctrlG}})
	m, _ = typeKeys(t, m, "g")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})

	assert.Equal(t, combo.Cancelled, m.last.Status)
	assert.True(t, m.tracker.Idle())
}
