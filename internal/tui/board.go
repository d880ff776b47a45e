package tui

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-review-bot/internal/replay"
)

// White pieces use the outline glyphs, black the filled ones, so both stay
// readable on either square color.
var glyphs = map[nchess.PieceType][2]string{
	nchess.King:   {"♔", "♚"},
	nchess.Queen:  {"♕", "♛"},
	nchess.Rook:   {"♖", "♜"},
	nchess.Bishop: {"♗", "♝"},
	nchess.Knight: {"♘", "♞"},
	nchess.Pawn:   {"♙", "♟"},
}

func glyph(p nchess.Piece) string {
	g, ok := glyphs[p.Type()]
	if !ok {
		return " "
	}
	if p.Color() == nchess.Black {
		return g[1]
	}
	return g[0]
}

// renderBoard draws the position with the owner's side at the bottom.
func renderBoard(fen string, o replay.Orientation) (string, error) {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return "", fmt.Errorf("invalid position: %w", err)
	}
	board := nchess.NewGame(opt).Position().Board()
	flipped := o == replay.BlackPerspective

	var b strings.Builder
	for row := 0; row < 8; row++ {
		rank := 7 - row
		if flipped {
			rank = row
		}
		b.WriteString(styles.coord.Render(fmt.Sprintf("%d ", rank+1)))
		for col := 0; col < 8; col++ {
			file := col
			if flipped {
				file = 7 - col
			}
			sq := nchess.NewSquare(nchess.File(file), nchess.Rank(rank))
			style := styles.darkSquare
			if (file+rank)%2 == 1 {
				style = styles.lightSquare
			}
			b.WriteString(style.Foreground(styles.piece).Render(" " + glyph(board.Piece(sq)) + " "))
		}
		b.WriteString("\n")
	}
	b.WriteString("  ")
	for col := 0; col < 8; col++ {
		file := col
		if flipped {
			file = 7 - col
		}
		b.WriteString(styles.coord.Render(" " + string(rune('a'+file)) + " "))
	}
	return b.String(), nil
}
