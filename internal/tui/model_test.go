package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/park285/cheese-review-bot/internal/replay"
	"github.com/park285/cheese-review-bot/internal/service/review"
)

func sampleProvider() replay.Provider {
	return replay.ProviderFunc(func(context.Context, int64) (*replay.Loaded, error) {
		return review.LoadParsed(review.SampleGame())
	})
}

func openModel(t *testing.T, provider replay.Provider) (*Model, *replay.Viewer) {
	t.Helper()
	ctx := context.Background()
	v := replay.Open(ctx, provider, 1)
	t.Cleanup(v.Close)
	m := New(ctx, v, nil)
	err := v.Wait(ctx)
	m.Update(loadedMsg{err: err})
	return m, v
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelNavigationKeys(t *testing.T) {
	m, _ := openModel(t, sampleProvider())
	if got := m.cursor(); got != replay.StartCursor {
		t.Fatalf("cursor after load = %d, want start", got)
	}
	if got := m.moves.Index(); got != 0 {
		t.Fatalf("list index after load = %d, want 0", got)
	}

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.cursor(); got != 1 {
		t.Fatalf("cursor after two rights = %d, want 1", got)
	}
	if got := m.moves.Index(); got != 2 {
		t.Fatalf("list index = %d, want 2", got)
	}

	press(m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.cursor(); got != 0 {
		t.Fatalf("cursor after left = %d, want 0", got)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEnd})
	if got := m.cursor(); got != 6 {
		t.Fatalf("cursor after end = %d, want 6", got)
	}
	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.cursor(); got != 6 {
		t.Fatalf("right at the last move moved the cursor to %d", got)
	}

	press(m, tea.KeyMsg{Type: tea.KeyHome})
	if got := m.cursor(); got != replay.StartCursor {
		t.Fatalf("cursor after home = %d, want start", got)
	}
	press(m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.cursor(); got != replay.StartCursor {
		t.Fatalf("left at the start moved the cursor to %d", got)
	}
}

func TestModelEnterSelectsListRow(t *testing.T) {
	m, _ := openModel(t, sampleProvider())

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.cursor(); got != replay.StartCursor {
		t.Fatalf("moving the list selection changed the board: cursor %d", got)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.cursor(); got != 2 {
		t.Fatalf("cursor after enter = %d, want 2", got)
	}
	if !strings.Contains(m.View(), "2. Bc4 • 3/7") {
		t.Fatalf("status line missing from view:\n%s", m.View())
	}
}

func TestModelIgnoresKeysWhileLoading(t *testing.T) {
	release := make(chan struct{})
	provider := replay.ProviderFunc(func(ctx context.Context, _ int64) (*replay.Loaded, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return review.LoadParsed(review.SampleGame())
	})
	ctx := context.Background()
	v := replay.Open(ctx, provider, 9)
	defer v.Close()
	m := New(ctx, v, nil)

	if cmd := press(m, tea.KeyMsg{Type: tea.KeyRight}); cmd != nil {
		t.Fatalf("key while loading returned a command")
	}
	if !strings.Contains(m.View(), "Loading game #9") {
		t.Fatalf("loading view = %q", m.View())
	}

	close(release)
	if err := v.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	m.Update(loadedMsg{})
	if got := m.cursor(); got != replay.StartCursor {
		t.Fatalf("key sent while loading was applied: cursor %d", got)
	}
}

func TestModelShowsLoadFailure(t *testing.T) {
	boom := errors.New("game not found")
	m, _ := openModel(t, replay.ProviderFunc(func(context.Context, int64) (*replay.Loaded, error) {
		return nil, boom
	}))
	if !errors.Is(m.loadErr, boom) {
		t.Fatalf("loadErr = %v, want %v", m.loadErr, boom)
	}
	view := m.View()
	if !strings.Contains(view, "Could not load this game") || !strings.Contains(view, "game not found") {
		t.Fatalf("failure view = %q", view)
	}
	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.snap.State != replay.StateFailed {
		t.Fatalf("state = %v, want failed", m.snap.State)
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := openModel(t, sampleProvider())
	cmd := press(m, runes("q"))
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}

func TestModelViewShowsTitleAndStatus(t *testing.T) {
	m, _ := openModel(t, sampleProvider())
	view := m.View()
	for _, want := range []string{"Sample: Scholar's mate vs Claire", "Start position • 0/7 • viewing as White", "Moves"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRenderBoardOrientation(t *testing.T) {
	white, err := renderBoard(review.StandardFEN, replay.WhitePerspective)
	if err != nil {
		t.Fatalf("render white: %v", err)
	}
	if !strings.HasPrefix(white, "8 ") {
		t.Fatalf("white board should start on rank 8:\n%s", white)
	}

	black, err := renderBoard(review.StandardFEN, replay.BlackPerspective)
	if err != nil {
		t.Fatalf("render black: %v", err)
	}
	if !strings.HasPrefix(black, "1 ") {
		t.Fatalf("black board should start on rank 1:\n%s", black)
	}
	lines := strings.Split(black, "\n")
	if last := lines[len(lines)-1]; strings.Index(last, "h") > strings.Index(last, "a") {
		t.Fatalf("black board files not flipped: %q", last)
	}

	if _, err := renderBoard("not a fen", replay.WhitePerspective); err == nil {
		t.Fatalf("expected error for invalid position")
	}
}

func TestStatusLine(t *testing.T) {
	mv := replay.Move{MoveNumber: 3, Color: replay.Black, Algebraic: "Nf6"}
	got := statusLine(replay.Frame{Cursor: 5, Total: 7, Orientation: replay.BlackPerspective, LastMove: &mv})
	if want := "3... Nf6 • 6/7 • viewing as Black"; got != want {
		t.Fatalf("statusLine = %q, want %q", got, want)
	}
}

func TestNavigationBindingsMatchDispatch(t *testing.T) {
	keys := newKeyMap()
	bindings := map[replay.Action]key.Binding{
		replay.ActionStepBackward: keys.prev,
		replay.ActionStepForward:  keys.next,
		replay.ActionGoToStart:    keys.start,
		replay.ActionGoToEnd:      keys.end,
	}
	for action, binding := range bindings {
		if len(binding.Keys()) == 0 {
			t.Fatalf("%v has no keys", action)
		}
		for _, k := range binding.Keys() {
			if got, ok := replay.DefaultKeys[k]; !ok || got != action {
				t.Fatalf("help key %q for %v dispatches as %v (bound=%v)", k, action, got, ok)
			}
		}
	}
	for k, action := range replay.DefaultKeys {
		found := false
		for _, bk := range bindings[action].Keys() {
			found = found || bk == k
		}
		if !found {
			t.Fatalf("dispatch key %q is missing from help", k)
		}
	}
}
