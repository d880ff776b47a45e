package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Color is the side that played a half-move.
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

// ParseColor accepts "w"/"b" and the long forms.
func ParseColor(raw string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "w", "white":
		return White, true
	case "b", "black":
		return Black, true
	default:
		return "", false
	}
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// Orientation selects which side sits at the bottom of the rendered board.
type Orientation int

const (
	WhitePerspective Orientation = iota
	BlackPerspective
)

// OrientationFor returns the perspective of the player with color c.
func OrientationFor(c Color) Orientation {
	if c == Black {
		return BlackPerspective
	}
	return WhitePerspective
}

func (o Orientation) String() string {
	if o == BlackPerspective {
		return "black"
	}
	return "white"
}

// Move is one recorded half-move together with the position it produced.
type Move struct {
	MoveNumber int    `json:"moveNumber"`
	Color      Color  `json:"color"`
	Algebraic  string `json:"algebraic"`
	Position   string `json:"position"`
}

// Label renders the move-list prefix: "3." for white, "3..." for black.
func (m Move) Label() string {
	if m.Color == Black {
		return fmt.Sprintf("%d...", m.MoveNumber)
	}
	return fmt.Sprintf("%d.", m.MoveNumber)
}

var (
	ErrEmptyStartingPosition = errors.New("replay: starting position is empty")
	ErrColorSequence         = errors.New("replay: move colors must alternate starting with white")
	ErrMoveNumber            = errors.New("replay: move number out of sequence")
	ErrEmptyPosition         = errors.New("replay: move position is empty")
)

// GameReplay is an immutable recorded game. Index i of Moves is half-move i+1.
type GameReplay struct {
	startingPosition string
	moves            []Move
}

// NewGameReplay validates the move sequence and returns a replay that owns a copy of it.
func NewGameReplay(startingPosition string, moves []Move) (*GameReplay, error) {
	start := strings.TrimSpace(startingPosition)
	if start == "" {
		return nil, ErrEmptyStartingPosition
	}
	copied := make([]Move, len(moves))
	copy(copied, moves)
	for i, mv := range copied {
		want := White
		if i%2 == 1 {
			want = Black
		}
		if mv.Color != want {
			return nil, fmt.Errorf("%w: index %d is %q", ErrColorSequence, i, mv.Color)
		}
		if i > 0 {
			prev := copied[i-1].MoveNumber
			if (want == White && mv.MoveNumber != prev+1) || (want == Black && mv.MoveNumber != prev) {
				return nil, fmt.Errorf("%w: index %d has number %d after %d", ErrMoveNumber, i, mv.MoveNumber, prev)
			}
		} else if mv.MoveNumber < 1 {
			return nil, fmt.Errorf("%w: first move number %d", ErrMoveNumber, mv.MoveNumber)
		}
		if strings.TrimSpace(mv.Position) == "" {
			return nil, fmt.Errorf("%w: index %d", ErrEmptyPosition, i)
		}
	}
	return &GameReplay{startingPosition: start, moves: copied}, nil
}

// StartingPosition is the position before any move (cursor -1).
func (g *GameReplay) StartingPosition() string { return g.startingPosition }

// Len is the number of half-moves.
func (g *GameReplay) Len() int { return len(g.moves) }

// Moves returns a copy of the move list.
func (g *GameReplay) Moves() []Move {
	out := make([]Move, len(g.moves))
	copy(out, g.moves)
	return out
}

// MoveAt returns the move at index i.
func (g *GameReplay) MoveAt(i int) (Move, bool) {
	if i < 0 || i >= len(g.moves) {
		return Move{}, false
	}
	return g.moves[i], true
}

// PositionAt maps a cursor value to its position. Values outside the move
// range map to the starting position.
func (g *GameReplay) PositionAt(cursor int) string {
	if cursor < 0 || cursor >= len(g.moves) {
		return g.startingPosition
	}
	return g.moves[cursor].Position
}

// replayJSON is the cache encoding.
type replayJSON struct {
	StartingPosition string `json:"startingPosition"`
	Moves            []Move `json:"moves"`
}

func (g *GameReplay) MarshalJSON() ([]byte, error) {
	return json.Marshal(replayJSON{StartingPosition: g.startingPosition, Moves: g.moves})
}

// UnmarshalJSON runs the same validation as NewGameReplay.
func (g *GameReplay) UnmarshalJSON(data []byte) error {
	var raw replayJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := NewGameReplay(raw.StartingPosition, raw.Moves)
	if err != nil {
		return err
	}
	*g = *decoded
	return nil
}
