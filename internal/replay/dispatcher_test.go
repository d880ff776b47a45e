package replay

import "testing"

func TestKeysMapOneToOne(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	d := NewDispatcher(n)
	steps := []struct {
		key    string
		cursor int
	}{
		{"End", 2},
		{"left", 1},
		{"LEFT", 0},
		{"home", -1},
		{"right", 0},
	}
	for _, s := range steps {
		handled, _ := d.HandleKey(s.key)
		if !handled {
			t.Fatalf("key %q not handled", s.key)
		}
		if n.Cursor() != s.cursor {
			t.Fatalf("after %q cursor=%d want %d", s.key, n.Cursor(), s.cursor)
		}
	}
}

func TestBoundaryKeysAreStillConsumed(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	d := NewDispatcher(n)
	handled, changed := d.HandleKey("left")
	if !handled || changed {
		t.Fatalf("left at start: handled=%v changed=%v", handled, changed)
	}
	handled, changed = d.HandleKey("home")
	if !handled || changed {
		t.Fatalf("home at start: handled=%v changed=%v", handled, changed)
	}
}

func TestUnknownKeysPassThrough(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	d := NewDispatcher(n)
	for _, k := range []string{"up", "down", "enter", "a", ""} {
		if handled, _ := d.HandleKey(k); handled {
			t.Fatalf("key %q should not be handled", k)
		}
	}
	if n.Cursor() != -1 {
		t.Fatalf("unknown keys moved the cursor to %d", n.Cursor())
	}
}

// Selection and keys must act on one cursor: a key after a selection steps
// from the selected entry, not from where the dispatcher was created.
func TestSelectionAndKeysShareTheCursor(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	d := NewDispatcher(n)
	if !d.Select(2) {
		t.Fatalf("Select(2) did not move")
	}
	d.HandleKey("left")
	if n.Cursor() != 1 {
		t.Fatalf("left after Select(2): cursor=%d", n.Cursor())
	}
	// direct navigator calls are also visible to the dispatcher
	n.GoToStart()
	d.HandleKey("right")
	if n.Cursor() != 0 || n.Position() != "P1" {
		t.Fatalf("right after GoToStart: cursor=%d pos=%q", n.Cursor(), n.Position())
	}
}

func TestSelectOutOfRangeIsIgnored(t *testing.T) {
	n := NewNavigator(threeMoveReplay(t), WhitePerspective)
	d := NewDispatcher(n)
	d.Select(1)
	if d.Select(7) || d.Select(-4) {
		t.Fatalf("out-of-range selection reported a change")
	}
	if n.Cursor() != 1 {
		t.Fatalf("cursor moved to %d", n.Cursor())
	}
}

func TestGesturesMatchKeys(t *testing.T) {
	byKey := NewNavigator(threeMoveReplay(t), WhitePerspective)
	byGesture := NewNavigator(threeMoveReplay(t), WhitePerspective)
	dk, dg := NewDispatcher(byKey), NewDispatcher(byGesture)
	keys := []string{"right", "right", "end", "right", "left", "home", "left", "end"}
	for _, k := range keys {
		dk.HandleKey(k)
		a, _ := dk.ActionForKey(k)
		dg.Do(a)
		if byKey.Cursor() != byGesture.Cursor() {
			t.Fatalf("after %q: key cursor %d gesture cursor %d", k, byKey.Cursor(), byGesture.Cursor())
		}
	}
}

func TestKeysFor(t *testing.T) {
	cases := map[Action]string{
		ActionStepBackward: "left",
		ActionStepForward:  "right",
		ActionGoToStart:    "home",
		ActionGoToEnd:      "end",
	}
	for action, want := range cases {
		got := KeysFor(action)
		if len(got) != 1 || got[0] != want {
			t.Fatalf("KeysFor(%v) = %v, want [%s]", action, got, want)
		}
	}
	if got := KeysFor(ActionNone); len(got) != 0 {
		t.Fatalf("KeysFor(none) = %v", got)
	}
}
