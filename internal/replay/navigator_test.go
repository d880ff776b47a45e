package replay

import "testing"

func threeMoveReplay(t *testing.T) *GameReplay {
	t.Helper()
	g, err := NewGameReplay("S0", []Move{
		{MoveNumber: 1, Color: White, Algebraic: "e4", Position: "P1"},
		{MoveNumber: 1, Color: Black, Algebraic: "e5", Position: "P2"},
		{MoveNumber: 2, Color: White, Algebraic: "Nf3", Position: "P3"},
	})
	if err != nil {
		t.Fatalf("NewGameReplay: %v", err)
	}
	return g
}

func emptyReplay(t *testing.T) *GameReplay {
	t.Helper()
	g, err := NewGameReplay("S0", nil)
	if err != nil {
		t.Fatalf("NewGameReplay: %v", err)
	}
	return g
}

func TestNavigatorStartsAtStartingPosition(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	if n.Cursor() != -1 || n.Position() != "S0" {
		t.Fatalf("initial state: cursor=%d pos=%q", n.Cursor(), n.Position())
	}
	if !n.AtStart() || n.AtEnd() {
		t.Fatalf("boundary flags: start=%v end=%v", n.AtStart(), n.AtEnd())
	}
}

func TestGoToEveryValidIndex(t *testing.T) {
	g := threeMoveReplay(t)
	n := NewNavigator(g, WhitePerspective)
	want := map[int]string{-1: "S0", 0: "P1", 1: "P2", 2: "P3"}
	for _, i := range []int{2, 0, -1, 1} {
		n.GoTo(i)
		if n.Cursor() != i {
			t.Fatalf("GoTo(%d): cursor=%d", i, n.Cursor())
		}
		if n.Position() != want[i] {
			t.Fatalf("GoTo(%d): position=%q want %q", i, n.Position(), want[i])
		}
	}
}

func TestGoToOutOfRangeIsNoop(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	n.GoTo(1)
	for _, i := range []int{-2, 3, 5, -100, 1 << 30} {
		if n.GoTo(i) {
			t.Fatalf("GoTo(%d) reported a change", i)
		}
		if n.Cursor() != 1 || n.Position() != "P2" {
			t.Fatalf("GoTo(%d) moved state: cursor=%d pos=%q", i, n.Cursor(), n.Position())
		}
	}
}

func TestJumpsAreIdempotent(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	if !n.GoToEnd() {
		t.Fatalf("first GoToEnd should move")
	}
	if n.GoToEnd() {
		t.Fatalf("second GoToEnd should be a no-op")
	}
	if n.Cursor() != 2 || n.Position() != "P3" {
		t.Fatalf("after GoToEnd: cursor=%d pos=%q", n.Cursor(), n.Position())
	}
	n.GoToStart()
	if n.GoToStart() {
		t.Fatalf("second GoToStart should be a no-op")
	}
	if n.Cursor() != -1 || n.Position() != "S0" {
		t.Fatalf("after GoToStart: cursor=%d pos=%q", n.Cursor(), n.Position())
	}
}

func TestSteppingForwardAndBack(t *testing.T) {
	g := threeMoveReplay(t)
	n := NewNavigator(g, WhitePerspective)
	for i := 0; i < g.Len(); i++ {
		if !n.StepForward() {
			t.Fatalf("StepForward #%d did not move", i)
		}
	}
	if n.Cursor() != g.Len()-1 {
		t.Fatalf("after %d steps cursor=%d", g.Len(), n.Cursor())
	}
	if n.StepForward() || n.Cursor() != g.Len()-1 {
		t.Fatalf("StepForward past the end moved to %d", n.Cursor())
	}
	for i := 0; i < g.Len(); i++ {
		if !n.StepBackward() {
			t.Fatalf("StepBackward #%d did not move", i)
		}
	}
	if n.Cursor() != -1 {
		t.Fatalf("after stepping back cursor=%d", n.Cursor())
	}
	if n.StepBackward() || n.Cursor() != -1 || n.Position() != "S0" {
		t.Fatalf("StepBackward past the start: cursor=%d pos=%q", n.Cursor(), n.Position())
	}
}

func TestConcreteSequence(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	steps := []struct {
		name    string
		op      func() bool
		cursor  int
		pos     string
		changed bool
	}{
		{"GoToEnd", n.GoToEnd, 2, "P3", true},
		{"StepBackward", n.StepBackward, 1, "P2", true},
		{"GoTo(5)", func() bool { return n.GoTo(5) }, 1, "P2", false},
		{"StepForward", n.StepForward, 2, "P3", true},
	}
	for _, s := range steps {
		changed := s.op()
		if changed != s.changed || n.Cursor() != s.cursor || n.Position() != s.pos {
			t.Fatalf("%s: changed=%v cursor=%d pos=%q; want %v %d %q", s.name, changed, n.Cursor(), n.Position(), s.changed, s.cursor, s.pos)
		}
	}
}

func TestEmptyGameStaysAtStart(t *testing.T) {
	n := NewNavigator(emptyReplay(t), BlackPerspective)
	ops := map[string]func() bool{
		"GoToEnd":      n.GoToEnd,
		"StepForward":  n.StepForward,
		"GoTo(0)":      func() bool { return n.GoTo(0) },
		"StepBackward": n.StepBackward,
	}
	for name, op := range ops {
		if op() {
			t.Fatalf("%s changed an empty game", name)
		}
		if n.Cursor() != -1 || n.Position() != "S0" {
			t.Fatalf("%s: cursor=%d pos=%q", name, n.Cursor(), n.Position())
		}
	}
	if !n.AtStart() || !n.AtEnd() {
		t.Fatalf("empty game should sit on both boundaries")
	}
}

func TestOnChangeFiresOnlyOnChange(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	var frames []Frame
	n.OnChange(func(f Frame) { frames = append(frames, f) })
	n.StepBackward()
	n.GoTo(9)
	n.StepForward()
	n.GoToEnd()
	n.GoToEnd()
	if len(frames) != 2 {
		t.Fatalf("expected 2 change notifications, got %d", len(frames))
	}
	last := frames[1]
	if last.Cursor != 2 || last.Position != "P3" || last.Total != 3 {
		t.Fatalf("unexpected frame: %+v", last)
	}
	if last.LastMove == nil || last.LastMove.Algebraic != "Nf3" {
		t.Fatalf("expected last move Nf3, got %+v", last.LastMove)
	}
	if frames[0].Cursor != 0 || frames[0].Position != "P1" {
		t.Fatalf("first frame: %+v", frames[0])
	}
}

func TestFrameAtStartHasNoLastMove(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), BlackPerspective)
	f := n.Frame()
	if f.LastMove != nil || f.Orientation != BlackPerspective || f.Position != "S0" {
		t.Fatalf("start frame: %+v", f)
	}
}

func TestIsActiveTracksCursor(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	n.GoTo(1)
	for i := range n.Moves() {
		if n.IsActive(i) != (i == 1) {
			t.Fatalf("IsActive(%d)=%v with cursor 1", i, n.IsActive(i))
		}
	}
}
