package reviewdto

type MoveEntry struct {
	Index     int
	Label     string
	Algebraic string
	Active    bool
}

// ReviewState is one rendered frame of an open review.
type ReviewState struct {
	ViewerID     string
	GameID       int64
	Title        string
	Cursor       int
	Total        int
	FEN          string
	Orientation  string
	ActiveLabel  string
	Moves        []MoveEntry
	OpeningCode  string
	OpeningTitle string
	AtStart      bool
	AtEnd        bool
	BoardImage   []byte
}

// Ply is the 1-based half-move number on display, 0 at the start.
func (s *ReviewState) Ply() int {
	if s == nil {
		return 0
	}
	return s.Cursor + 1
}
