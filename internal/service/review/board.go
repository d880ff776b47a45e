package review

import (
	"fmt"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"

	"github.com/park285/cheese-review-bot/internal/replay"
)

func positionFromFEN(fen string) (*nchess.Position, error) {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return nchess.NewGame(opt).Position(), nil
}

// highlightAt decodes the move that produced the frame so both its squares can
// be marked. Stored notation the library cannot read yields no highlight.
func highlightAt(r *replay.GameReplay, cursor int) *MoveHighlight {
	mv, ok := r.MoveAt(cursor)
	if !ok {
		return nil
	}
	before, err := positionFromFEN(r.PositionAt(cursor - 1))
	if err != nil {
		return nil
	}
	decoded, err := nchess.AlgebraicNotation{}.Decode(before, mv.Algebraic)
	if err != nil {
		return nil
	}
	return &MoveHighlight{From: decoded.S1(), To: decoded.S2()}
}

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

func bookECO() *opening.BookECO {
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })
	return ecoBook
}

// OpeningAt names the ECO opening reached after the move at cursor. Only
// games from the standard start are looked up.
func OpeningAt(r *replay.GameReplay, cursor int) (code, title string) {
	if r == nil || cursor < 0 || r.StartingPosition() != StandardFEN {
		return "", ""
	}
	game := nchess.NewGame()
	for i := 0; i <= cursor; i++ {
		mv, ok := r.MoveAt(i)
		if !ok {
			break
		}
		if err := game.PushNotationMove(mv.Algebraic, nchess.AlgebraicNotation{}, nil); err != nil {
			break
		}
	}
	book := bookECO()
	if book == nil {
		return "", ""
	}
	if eco := book.Find(game.Moves()); eco != nil {
		return eco.Code(), eco.Title()
	}
	return "", ""
}
