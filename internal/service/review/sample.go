package review

import "github.com/park285/cheese-review-bot/internal/domain"

// SampleGame is a short Italian-game miniature used to try the viewer
// without importing anything.
func SampleGame() *ParsedGame {
	return &ParsedGame{
		Game: domain.Game{
			Title:        "Sample: Scholar's mate vs Claire",
			WhitePlayer:  "You",
			BlackPlayer:  "Claire",
			UserColor:    "w",
			OpponentName: "Claire",
			Result:       "1-0",
			Status:       domain.StatusCompleted,
			StartingFEN:  StandardFEN,
			Source:       domain.SourceSample,
		},
		Moves: []domain.GameMove{
			{MoveNumber: 1, Color: "w", Algebraic: "e4", FEN: "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"},
			{MoveNumber: 1, Color: "b", Algebraic: "e5", FEN: "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"},
			{MoveNumber: 2, Color: "w", Algebraic: "Bc4", FEN: "rnbqkbnr/pppp1ppp/8/4p3/2B1P3/8/PPPP1PPP/RNBQK1NR b KQkq - 1 2"},
			{MoveNumber: 2, Color: "b", Algebraic: "Nc6", FEN: "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/8/PPPP1PPP/RNBQK1NR w KQkq - 2 3"},
			{MoveNumber: 3, Color: "w", Algebraic: "Qh5", FEN: "r1bqkbnr/pppp1ppp/2n5/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 3 3"},
			{MoveNumber: 3, Color: "b", Algebraic: "Nf6", FEN: "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"},
			{MoveNumber: 4, Color: "w", Algebraic: "Qxf7#", FEN: "r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4"},
		},
	}
}
