package replay

// StartCursor is the cursor value of the starting position.
const StartCursor = -1

// Frame is what a board renderer needs for one cursor value.
type Frame struct {
	Position    string
	Orientation Orientation
	Cursor      int
	Total       int
	// LastMove is the move that produced Position, nil at the start.
	LastMove *Move
}

// Navigator holds the cursor for one view of a GameReplay. The position is
// always derived from the cursor and never stored.
//
// A Navigator is not safe for concurrent use; Viewer serializes access.
type Navigator struct {
	replay      *GameReplay
	orientation Orientation
	cursor      int
	onChange    func(Frame)
}

// NewNavigator starts at the starting position.
func NewNavigator(replay *GameReplay, orientation Orientation) *Navigator {
	return &Navigator{replay: replay, orientation: orientation, cursor: StartCursor}
}

// OnChange registers fn to run after every cursor change. No-op transitions
// do not fire it.
func (n *Navigator) OnChange(fn func(Frame)) { n.onChange = fn }

func (n *Navigator) Replay() *GameReplay { return n.replay }

func (n *Navigator) Cursor() int { return n.cursor }

func (n *Navigator) Len() int { return n.replay.Len() }

// Moves returns the full move list for rendering a selectable list.
func (n *Navigator) Moves() []Move { return n.replay.Moves() }

// Position derives the displayed position from the cursor.
func (n *Navigator) Position() string {
	if n.cursor == StartCursor {
		return n.replay.StartingPosition()
	}
	return n.replay.moves[n.cursor].Position
}

func (n *Navigator) Orientation() Orientation { return n.orientation }

func (n *Navigator) AtStart() bool { return n.cursor == StartCursor }

func (n *Navigator) AtEnd() bool { return n.cursor == n.replay.Len()-1 }

// IsActive reports whether list entry i is the one on display.
func (n *Navigator) IsActive(i int) bool { return i == n.cursor }

// Frame snapshots the renderer input for the current cursor.
func (n *Navigator) Frame() Frame {
	f := Frame{
		Position:    n.Position(),
		Orientation: n.orientation,
		Cursor:      n.cursor,
		Total:       n.replay.Len(),
	}
	if mv, ok := n.replay.MoveAt(n.cursor); ok {
		f.LastMove = &mv
	}
	return f
}

// GoTo moves the cursor to index when -1 <= index <= N-1 and ignores
// anything else. It reports whether the cursor changed.
func (n *Navigator) GoTo(index int) bool {
	if index < StartCursor || index > n.replay.Len()-1 {
		return false
	}
	if index == n.cursor {
		return false
	}
	n.cursor = index
	if n.onChange != nil {
		n.onChange(n.Frame())
	}
	return true
}

func (n *Navigator) StepBackward() bool { return n.GoTo(n.cursor - 1) }

func (n *Navigator) StepForward() bool { return n.GoTo(n.cursor + 1) }

func (n *Navigator) GoToStart() bool { return n.GoTo(StartCursor) }

// GoToEnd is a no-op on an empty game since N-1 == -1 is the start.
func (n *Navigator) GoToEnd() bool { return n.GoTo(n.replay.Len() - 1) }
