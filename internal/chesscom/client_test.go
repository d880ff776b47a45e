package chesscom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractGameID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{"https://www.chess.com/game/live/123456789", "123456789", nil},
		{"https://www.chess.com/game/live/123456789/", "123456789", nil},
		{"https://www.chess.com/analysis#987654", "987654", nil},
		{"  42  ", "42", nil},
		{"", "", ErrMissingReference},
		{"https://lichess.org/abc123", "", ErrNotChessCom},
		{"https://www.chess.com/home", "", ErrNoGameID},
	}
	for _, tc := range cases {
		got, err := ExtractGameID(tc.in)
		if !errors.Is(err, tc.err) {
			t.Fatalf("ExtractGameID(%q) err = %v, want %v", tc.in, err, tc.err)
		}
		if got != tc.want {
			t.Fatalf("ExtractGameID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeTCN(t *testing.T) {
	moves, err := DecodeTCN("mC0K")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(moves) != 2 || moves[0] != "e2e4" || moves[1] != "e7e5" {
		t.Fatalf("unexpected moves %v", moves)
	}

	promo, err := DecodeTCN("Y~")
	if err != nil {
		t.Fatalf("decode promotion: %v", err)
	}
	if promo[0] != "c7c8q" {
		t.Fatalf("promotion = %q, want c7c8q", promo[0])
	}

	if _, err := DecodeTCN("abc"); err == nil {
		t.Fatalf("expected odd length to fail")
	}
	if _, err := DecodeTCN("m "); err == nil {
		t.Fatalf("expected unknown code to fail")
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithTimeout(2*time.Second), WithRateLimit(1000))
}

func TestFetchGameMapsPayload(t *testing.T) {
	var gotPath, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"game": {
				"isFinished": true,
				"gameEndReason": "checkmated",
				"endTime": 1700000000,
				"uuid": "abc-uuid",
				"moveList": "mC0K",
				"pgnHeaders": {"White": "hdrWhite", "Black": "hdrBlack", "Result": "1-0", "TimeControl": "600"}
			},
			"players": {"bottom": {"username": "alice"}, "top": {"username": "bob"}}
		}`))
	})

	game, err := client.FetchGame(context.Background(), "https://www.chess.com/game/live/555")
	if err != nil {
		t.Fatalf("FetchGame: %v", err)
	}
	if gotPath != "/callback/live/game/555" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAccept != "application/json" {
		t.Fatalf("accept = %q", gotAccept)
	}
	if game.ID != "555" || game.WhiteUsername != "alice" || game.BlackUsername != "bob" {
		t.Fatalf("unexpected players: %+v", game)
	}
	if game.ResultMessage != "1-0" {
		t.Fatalf("result should fall back to header, got %q", game.ResultMessage)
	}
	if game.TimeControl != "600" || game.UUID != "abc-uuid" || !game.IsFinished {
		t.Fatalf("unexpected metadata: %+v", game)
	}
	if game.EndTime == nil || game.EndTime.Unix() != 1700000000 {
		t.Fatalf("unexpected end time %v", game.EndTime)
	}
	if len(game.MovesUCI) != 2 {
		t.Fatalf("moves = %v", game.MovesUCI)
	}
}

func TestFetchGameFallsBackToHeaderPlayers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"game": {"resultMessage": "bob won", "pgnHeaders": {"White": "w1", "Black": "b1"}}}`))
	})
	game, err := client.FetchGame(context.Background(), "77")
	if err != nil {
		t.Fatalf("FetchGame: %v", err)
	}
	if game.WhiteUsername != "w1" || game.BlackUsername != "b1" || game.ResultMessage != "bob won" {
		t.Fatalf("unexpected game %+v", game)
	}
}

func TestFetchGameErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{}`, ErrNotFound},
		{"server error", http.StatusBadGateway, `oops`, ErrUpstream},
		{"bad json", http.StatusOK, `{not json`, ErrInvalidPayload},
		{"bad tcn", http.StatusOK, `{"game": {"moveList": "abc"}}`, ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.FetchGame(context.Background(), "1")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestFetchGameRejectsForeignHostWithoutRequest(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	if _, err := client.FetchGame(context.Background(), "https://example.com/game/1"); !errors.Is(err, ErrNotChessCom) {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Fatalf("foreign url should not reach the network")
	}
}
