package review

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-review-bot/internal/domain"
	"github.com/park285/cheese-review-bot/internal/replay"
)

// StandardFEN is the initial chess position.
const StandardFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrEmptyPGN    = errors.New("review: empty pgn")
	ErrInvalidPGN  = errors.New("review: invalid pgn")
	ErrBlackToMove = errors.New("review: games starting with black to move are not supported")
	ErrInvalidFEN  = errors.New("review: invalid fen")
	ErrGameTooLong = errors.New("review: game exceeds the ply limit")
)

const maxImportedPlies = 1200

// ParsedGame is a game decoded from PGN, ready to store.
type ParsedGame struct {
	Game  domain.Game
	Moves []domain.GameMove
}

// ParsePGN decodes a single PGN game and computes SAN and FEN for every ply.
// userColor is "w" or "b"; empty defaults to white.
func ParsePGN(text string, userColor string) (*ParsedGame, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyPGN
	}
	opt, err := nchess.PGN(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPGN, err)
	}
	game := nchess.NewGame(opt)

	positions := game.Positions()
	moves := game.Moves()
	if len(moves) > maxImportedPlies {
		return nil, ErrGameTooLong
	}
	if len(positions) < len(moves)+1 {
		return nil, fmt.Errorf("%w: position history is incomplete", ErrInvalidPGN)
	}

	startFEN := positions[0].String()
	moveNumber, err := firstMoveNumber(startFEN)
	if err != nil {
		return nil, err
	}

	notation := nchess.AlgebraicNotation{}
	out := make([]domain.GameMove, 0, len(moves))
	for i, mv := range moves {
		color := string(replay.White)
		if i%2 == 1 {
			color = string(replay.Black)
		}
		out = append(out, domain.GameMove{
			MoveNumber: moveNumber,
			Color:      color,
			Algebraic:  notation.Encode(positions[i], mv),
			FEN:        positions[i+1].String(),
		})
		if color == string(replay.Black) {
			moveNumber++
		}
	}

	white := tagValue(game, "White")
	black := tagValue(game, "Black")
	result := tagValue(game, "Result")
	if result == "" {
		result = string(game.Outcome())
	}
	title := tagValue(game, "Event")
	if title == "" || title == "?" {
		title = fmt.Sprintf("%s vs %s", orUnknown(white), orUnknown(black))
	}

	color := string(replay.White)
	if c, ok := replay.ParseColor(userColor); ok {
		color = string(c)
	}
	opponent := black
	if color == string(replay.Black) {
		opponent = white
	}
	status := domain.StatusInProgress
	if result != "" && result != "*" {
		status = domain.StatusCompleted
	}

	return &ParsedGame{
		Game: domain.Game{
			Title:        title,
			WhitePlayer:  white,
			BlackPlayer:  black,
			UserColor:    color,
			OpponentName: opponent,
			Result:       result,
			Status:       status,
			StartingFEN:  startFEN,
			Source:       domain.SourcePGN,
		},
		Moves: out,
	}, nil
}

func tagValue(game *nchess.Game, key string) string {
	tp := game.GetTagPair(key)
	if tp == nil {
		return ""
	}
	return strings.TrimSpace(tp.Value)
}

func orUnknown(s string) string {
	if s == "" || s == "?" {
		return "Unknown"
	}
	return s
}

// firstMoveNumber reads the fullmove field and rejects black-to-move starts.
func firstMoveNumber(fen string) (int, error) {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFEN, fen)
	}
	if fields[1] != "w" {
		return 0, ErrBlackToMove
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: fullmove %q", ErrInvalidFEN, fields[5])
	}
	return n, nil
}

// ValidateFEN parses fen with the chess library.
func ValidateFEN(fen string) error {
	if _, err := nchess.FEN(strings.TrimSpace(fen)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return nil
}

// BuildPGN renders a stored game back to PGN text.
func BuildPGN(g *domain.Game, moves []domain.GameMove) string {
	if g == nil {
		return ""
	}
	var b strings.Builder
	date := g.CreatedAt
	if date.IsZero() {
		date = time.Now()
	}
	result := strings.TrimSpace(g.Result)
	if result == "" {
		result = "*"
	}
	b.WriteString(fmt.Sprintf("[Event \"%s\"]\n", sanitizePGN(g.Title)))
	b.WriteString("[Site \"Cheese Review\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(orUnknown(g.WhitePlayer))))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(orUnknown(g.BlackPlayer))))
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n", result))
	if fen := strings.TrimSpace(g.StartingFEN); fen != "" && fen != StandardFEN {
		b.WriteString("[SetUp \"1\"]\n")
		b.WriteString(fmt.Sprintf("[FEN \"%s\"]\n", fen))
	}
	b.WriteString("\n")

	for _, mv := range moves {
		if mv.Color == string(replay.White) {
			b.WriteString(fmt.Sprintf("%d. ", mv.MoveNumber))
		}
		b.WriteString(strings.TrimSpace(mv.Algebraic))
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
