package chesscom

import (
	"fmt"
	"strings"
)

// tcnAlphabet indexes squares a1..h8 (0..63) followed by promotion and drop
// codes.
const tcnAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!?{~}(^)[_]@#$,./&-*++="

const tcnPromotions = "qnrbkp"

// DecodeTCN turns Chess.com's two-characters-per-move list into UCI moves.
func DecodeTCN(tcn string) ([]string, error) {
	if len(tcn)%2 != 0 {
		return nil, fmt.Errorf("tcn length %d is odd", len(tcn))
	}
	out := make([]string, 0, len(tcn)/2)
	for i := 0; i < len(tcn); i += 2 {
		from := strings.IndexByte(tcnAlphabet, tcn[i])
		to := strings.IndexByte(tcnAlphabet, tcn[i+1])
		if from < 0 || to < 0 {
			return nil, fmt.Errorf("tcn move %d has unknown code %q", i/2, tcn[i:i+2])
		}
		if from > 63 {
			return nil, fmt.Errorf("tcn move %d is a piece drop", i/2)
		}
		promo := ""
		if to > 63 {
			promo = string(tcnPromotions[(to-64)/3])
			dir := 8
			if from < 16 {
				dir = -8
			}
			to = from + dir + (to-1)%3 - 1
			if to < 0 || to > 63 {
				return nil, fmt.Errorf("tcn move %d promotes off the board", i/2)
			}
		}
		out = append(out, squareName(from)+squareName(to)+promo)
	}
	return out, nil
}

func squareName(idx int) string {
	return string(tcnAlphabet[idx%8]) + string(rune('1'+idx/8))
}
