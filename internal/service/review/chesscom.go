package review

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-review-bot/internal/chesscom"
	"github.com/park285/cheese-review-bot/internal/domain"
	"github.com/park285/cheese-review-bot/internal/replay"
)

// ParseChessComGame builds a storable game from an embedded PGN when the
// payload has one, otherwise by replaying the decoded move list from the
// standard start (or the SetUp FEN header).
func ParseChessComGame(g *chesscom.Game, userColor string) (*ParsedGame, error) {
	if g == nil {
		return nil, ErrNilGame
	}
	if g.PGN != "" {
		parsed, err := ParsePGN(g.PGN, userColor)
		if err != nil {
			return nil, err
		}
		tagChessCom(parsed, g)
		return parsed, nil
	}
	if len(g.MovesUCI) > maxImportedPlies {
		return nil, ErrGameTooLong
	}

	startFEN := StandardFEN
	if fen := strings.TrimSpace(g.Headers["FEN"]); fen != "" {
		startFEN = fen
	}
	opt, err := nchess.FEN(startFEN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	moveNumber, err := firstMoveNumber(startFEN)
	if err != nil {
		return nil, err
	}
	game := nchess.NewGame(opt)

	uci := nchess.UCINotation{}
	san := nchess.AlgebraicNotation{}
	out := make([]domain.GameMove, 0, len(g.MovesUCI))
	for i, raw := range g.MovesUCI {
		pos := game.Position()
		mv, err := uci.Decode(pos, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: ply %d %q: %v", ErrInvalidPGN, i+1, raw, err)
		}
		if err := game.PushNotationMove(raw, uci, nil); err != nil {
			return nil, fmt.Errorf("%w: ply %d %q: %v", ErrInvalidPGN, i+1, raw, err)
		}
		notation := san.Encode(pos, mv)
		color := string(replay.White)
		if i%2 == 1 {
			color = string(replay.Black)
		}
		out = append(out, domain.GameMove{
			MoveNumber: moveNumber,
			Color:      color,
			Algebraic:  notation,
			FEN:        game.Position().String(),
		})
		if color == string(replay.Black) {
			moveNumber++
		}
	}

	color := string(replay.White)
	if c, ok := replay.ParseColor(userColor); ok {
		color = string(c)
	}
	opponent := g.BlackUsername
	if color == string(replay.Black) {
		opponent = g.WhiteUsername
	}
	result := strings.TrimSpace(g.Headers["Result"])
	if result == "" {
		result = "*"
	}
	status := domain.StatusInProgress
	if g.IsFinished || result != "*" {
		status = domain.StatusCompleted
	}

	parsed := &ParsedGame{
		Game: domain.Game{
			WhitePlayer:  g.WhiteUsername,
			BlackPlayer:  g.BlackUsername,
			UserColor:    color,
			OpponentName: opponent,
			Result:       result,
			Status:       status,
			StartingFEN:  startFEN,
		},
		Moves: out,
	}
	tagChessCom(parsed, g)
	return parsed, nil
}

func tagChessCom(parsed *ParsedGame, g *chesscom.Game) {
	white := g.WhiteUsername
	if white == "" {
		white = parsed.Game.WhitePlayer
	}
	black := g.BlackUsername
	if black == "" {
		black = parsed.Game.BlackPlayer
	}
	parsed.Game.Title = fmt.Sprintf("Chess.com: %s vs %s", orUnknown(white), orUnknown(black))
	parsed.Game.Source = domain.SourceChessCom
	parsed.Game.SourceRef = g.ID
	if g.IsFinished {
		parsed.Game.Status = domain.StatusCompleted
	}
}
