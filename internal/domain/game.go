package domain

import "time"

const (
	SourcePGN      = "pgn"
	SourceSample   = "sample"
	SourceChessCom = "chesscom"

	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
)

// Game is a stored game that can be replayed.
type Game struct {
	ID           int64
	OwnerHash    string
	Title        string
	WhitePlayer  string
	BlackPlayer  string
	UserColor    string
	OpponentName string
	Result       string
	Status       string
	StartingFEN  string
	Source       string
	SourceRef    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GameMove is one half-move row with the FEN it produced.
type GameMove struct {
	MoveNumber int
	Color      string
	Algebraic  string
	FEN        string
}

// ImportedGame is the metadata captured from a Chess.com import.
type ImportedGame struct {
	ID             int64
	OwnerHash      string
	ChessComGameID string
	SourceURL      string
	WhiteUsername  string
	BlackUsername  string
	ResultMessage  string
	IsFinished     bool
	GameEndReason  string
	EndTime        *time.Time
	TimeControl    string
	UUID           string
	GameID         *int64
	ImportedAt     time.Time
}
