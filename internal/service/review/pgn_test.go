package review

import (
	"errors"
	"strings"
	"testing"

	"github.com/park285/cheese-review-bot/internal/chesscom"
	"github.com/park285/cheese-review-bot/internal/domain"
)

const italianPGN = `[Event "Club night"]
[White "Alice"]
[Black "Bob"]
[Result "*"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 *`

func TestParsePGN(t *testing.T) {
	parsed, err := ParsePGN(italianPGN, "b")
	if err != nil {
		t.Fatalf("ParsePGN: %v", err)
	}
	want := []struct {
		num   int
		color string
		san   string
	}{{1, "w", "e4"}, {1, "b", "e5"}, {2, "w", "Nf3"}, {2, "b", "Nc6"}, {3, "w", "Bc4"}}
	if len(parsed.Moves) != len(want) {
		t.Fatalf("moves = %d, want %d", len(parsed.Moves), len(want))
	}
	for i, w := range want {
		mv := parsed.Moves[i]
		if mv.MoveNumber != w.num || mv.Color != w.color || mv.Algebraic != w.san {
			t.Fatalf("move %d = %+v, want %+v", i, mv, w)
		}
		if err := ValidateFEN(mv.FEN); err != nil {
			t.Fatalf("move %d fen: %v", i, err)
		}
	}
	g := parsed.Game
	if g.Title != "Club night" || g.WhitePlayer != "Alice" || g.BlackPlayer != "Bob" {
		t.Fatalf("unexpected header mapping %+v", g)
	}
	if g.UserColor != "b" || g.OpponentName != "Alice" {
		t.Fatalf("unexpected perspective %+v", g)
	}
	if g.Status != domain.StatusInProgress || g.StartingFEN != StandardFEN || g.Source != domain.SourcePGN {
		t.Fatalf("unexpected status fields %+v", g)
	}
}

func TestParsePGNErrors(t *testing.T) {
	if _, err := ParsePGN("   ", ""); !errors.Is(err, ErrEmptyPGN) {
		t.Fatalf("err = %v, want ErrEmptyPGN", err)
	}
	if _, err := ParsePGN("1. e4 e5 2. Kxe8 *", ""); err == nil {
		t.Fatalf("expected illegal move to fail")
	}
}

func TestBuildPGNRoundTrip(t *testing.T) {
	sample := SampleGame()
	text := BuildPGN(&sample.Game, sample.Moves)
	if !strings.Contains(text, "1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 4. Qxf7# 1-0") {
		t.Fatalf("unexpected movetext:\n%s", text)
	}
	if strings.Contains(text, "[FEN ") {
		t.Fatalf("standard start should not carry a FEN header")
	}
	reparsed, err := ParsePGN(text, "w")
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(reparsed.Moves) != len(sample.Moves) {
		t.Fatalf("reparsed %d moves", len(reparsed.Moves))
	}
	for i := range sample.Moves {
		if reparsed.Moves[i].Algebraic != sample.Moves[i].Algebraic {
			t.Fatalf("move %d = %q, want %q", i, reparsed.Moves[i].Algebraic, sample.Moves[i].Algebraic)
		}
	}
}

func TestBuildPGNCustomStart(t *testing.T) {
	g := &domain.Game{Title: "Endgame", StartingFEN: "8/8/8/8/8/8/4K3/4k2R w - - 0 40", Result: "*"}
	text := BuildPGN(g, nil)
	if !strings.Contains(text, `[SetUp "1"]`) || !strings.Contains(text, `[FEN "8/8/8/8/8/8/4K3/4k2R w - - 0 40"]`) {
		t.Fatalf("missing setup headers:\n%s", text)
	}
}

func TestSampleGameIsAValidReplay(t *testing.T) {
	sample := SampleGame()
	r, err := BuildReplay(sample.Game.StartingFEN, sample.Moves)
	if err != nil {
		t.Fatalf("BuildReplay: %v", err)
	}
	if r.Len() != 7 {
		t.Fatalf("len = %d", r.Len())
	}
}

func TestBuildReplayRejectsMalformedRows(t *testing.T) {
	rows := SampleGame().Moves
	rows[1].Color = "x"
	if _, err := BuildReplay(StandardFEN, rows); !errors.Is(err, ErrMalformedGame) {
		t.Fatalf("err = %v, want ErrMalformedGame", err)
	}
	if _, err := BuildReplay("not a fen", nil); !errors.Is(err, ErrMalformedGame) {
		t.Fatalf("err = %v, want ErrMalformedGame", err)
	}
	swapped := SampleGame().Moves
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if _, err := BuildReplay(StandardFEN, swapped); !errors.Is(err, ErrMalformedGame) {
		t.Fatalf("err = %v, want ErrMalformedGame", err)
	}
}

func TestParseChessComGame(t *testing.T) {
	remote := &chesscom.Game{
		ID:            "99",
		WhiteUsername: "alice",
		BlackUsername: "bob",
		IsFinished:    true,
		Headers:       map[string]string{"Result": "1-0"},
		MovesUCI:      []string{"e2e4", "e7e5", "g1f3"},
	}
	parsed, err := ParseChessComGame(remote, "b")
	if err != nil {
		t.Fatalf("ParseChessComGame: %v", err)
	}
	got := []string{}
	for _, mv := range parsed.Moves {
		got = append(got, mv.Algebraic)
	}
	if strings.Join(got, " ") != "e4 e5 Nf3" {
		t.Fatalf("san = %v", got)
	}
	g := parsed.Game
	if g.Source != domain.SourceChessCom || g.SourceRef != "99" || g.OpponentName != "alice" || g.Result != "1-0" {
		t.Fatalf("unexpected game %+v", g)
	}
	if g.Status != domain.StatusCompleted {
		t.Fatalf("finished game should be completed")
	}

	remote.MovesUCI = []string{"e2e5"}
	if _, err := ParseChessComGame(remote, ""); !errors.Is(err, ErrInvalidPGN) {
		t.Fatalf("err = %v, want ErrInvalidPGN", err)
	}
}

func TestParseChessComGamePrefersEmbeddedPGN(t *testing.T) {
	remote := &chesscom.Game{
		ID:            "7",
		WhiteUsername: "alice",
		BlackUsername: "bob",
		PGN:           italianPGN,
		MovesUCI:      []string{"e2e4"},
	}
	parsed, err := ParseChessComGame(remote, "")
	if err != nil {
		t.Fatalf("ParseChessComGame: %v", err)
	}
	if len(parsed.Moves) != 5 {
		t.Fatalf("embedded pgn should win, got %d plies", len(parsed.Moves))
	}
	if parsed.Game.Title != "Chess.com: alice vs bob" || parsed.Game.Source != domain.SourceChessCom {
		t.Fatalf("unexpected game %+v", parsed.Game)
	}
}
