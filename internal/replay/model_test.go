package replay

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewGameReplayRejectsMalformedSequences(t *testing.T) {
	cases := []struct {
		name  string
		start string
		moves []Move
		want  error
	}{
		{"empty start", " ", nil, ErrEmptyStartingPosition},
		{"black first", "S0", []Move{{MoveNumber: 1, Color: Black, Position: "P1"}}, ErrColorSequence},
		{"white twice", "S0", []Move{
			{MoveNumber: 1, Color: White, Position: "P1"},
			{MoveNumber: 2, Color: White, Position: "P2"},
		}, ErrColorSequence},
		{"number skips", "S0", []Move{
			{MoveNumber: 1, Color: White, Position: "P1"},
			{MoveNumber: 1, Color: Black, Position: "P2"},
			{MoveNumber: 3, Color: White, Position: "P3"},
		}, ErrMoveNumber},
		{"zero number", "S0", []Move{{MoveNumber: 0, Color: White, Position: "P1"}}, ErrMoveNumber},
		{"blank position", "S0", []Move{{MoveNumber: 1, Color: White, Position: ""}}, ErrEmptyPosition},
	}
	for _, tc := range cases {
		if _, err := NewGameReplay(tc.start, tc.moves); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestGameReplayOwnsItsMoves(t *testing.T) {
	moves := []Move{{MoveNumber: 1, Color: White, Algebraic: "e4", Position: "P1"}}
	g, err := NewGameReplay("S0", moves)
	if err != nil {
		t.Fatalf("NewGameReplay: %v", err)
	}
	moves[0].Position = "mutated"
	out := g.Moves()
	out[0].Position = "mutated too"
	if got := g.PositionAt(0); got != "P1" {
		t.Fatalf("replay was mutated through a caller slice: %q", got)
	}
}

func TestGameReplayJSONValidates(t *testing.T) {
	g, err := NewGameReplay("S0", []Move{{MoveNumber: 1, Color: White, Algebraic: "e4", Position: "P1"}})
	if err != nil {
		t.Fatalf("NewGameReplay: %v", err)
	}
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back GameReplay
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.StartingPosition() != "S0" || back.Len() != 1 || back.PositionAt(0) != "P1" {
		t.Fatalf("decoded replay mismatch: %s", data)
	}
	bad := []byte(`{"startingPosition":"S0","moves":[{"moveNumber":1,"color":"b","position":"P1"}]}`)
	if err := json.Unmarshal(bad, &back); !errors.Is(err, ErrColorSequence) {
		t.Fatalf("expected color sequence error, got %v", err)
	}
}

func TestMoveLabel(t *testing.T) {
	if got := (Move{MoveNumber: 3, Color: White}).Label(); got != "3." {
		t.Fatalf("white label %q", got)
	}
	if got := (Move{MoveNumber: 3, Color: Black}).Label(); got != "3..." {
		t.Fatalf("black label %q", got)
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]Color{"w": White, "WHITE": White, " b ": Black, "black": Black} {
		got, ok := ParseColor(in)
		if !ok || got != want {
			t.Fatalf("ParseColor(%q)=%q,%v", in, got, ok)
		}
	}
	if _, ok := ParseColor("red"); ok {
		t.Fatalf("expected red to be rejected")
	}
}
