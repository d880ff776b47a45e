package reviewdto

import "time"

type GameSummary struct {
	ID        int64
	Title     string
	White     string
	Black     string
	UserColor string
	Result    string
	Source    string
	CreatedAt time.Time
}

type ImportResult struct {
	GameID   int64
	Title    string
	Plies    int
	ImportID int64
	ChessCom *ChessComMeta
}

type ChessComMeta struct {
	GameID        string
	SourceURL     string
	WhiteUsername string
	BlackUsername string
	ResultMessage string
	IsFinished    bool
	GameEndReason string
	EndTime       *time.Time
	TimeControl   string
	UUID          string
}
