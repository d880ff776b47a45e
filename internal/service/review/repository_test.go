package review

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/park285/cheese-review-bot/internal/domain"
	"github.com/park285/cheese-review-bot/internal/storage"
)

func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	db, err := storage.Open(context.Background(), storage.SQLite, filepath.Join(t.TempDir(), "review.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return map[string]Repository{
		"memory": NewMemoryRepository(),
		"sqlite": NewRepository(db),
	}
}

func TestRepositoryGameRoundTrip(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sample := SampleGame()
			game := sample.Game
			game.OwnerHash = "owner-a"
			id, err := repo.CreateGame(ctx, &game, sample.Moves)
			if err != nil {
				t.Fatalf("CreateGame: %v", err)
			}
			if id <= 0 || game.ID != id {
				t.Fatalf("unexpected id %d (game.ID=%d)", id, game.ID)
			}

			got, err := repo.GetGame(ctx, id, "owner-a")
			if err != nil || got == nil {
				t.Fatalf("GetGame: %v %v", got, err)
			}
			if got.Title != game.Title || got.UserColor != "w" || got.StartingFEN != StandardFEN {
				t.Fatalf("unexpected game %+v", got)
			}

			other, err := repo.GetGame(ctx, id, "owner-b")
			if err != nil || other != nil {
				t.Fatalf("other owner should not see the game: %v %v", other, err)
			}

			moves, err := repo.GetMoves(ctx, id)
			if err != nil {
				t.Fatalf("GetMoves: %v", err)
			}
			if len(moves) != len(sample.Moves) {
				t.Fatalf("moves = %d, want %d", len(moves), len(sample.Moves))
			}
			for i := range moves {
				if moves[i] != sample.Moves[i] {
					t.Fatalf("move %d = %+v, want %+v", i, moves[i], sample.Moves[i])
				}
			}
		})
	}
}

func TestRepositoryRecentGamesNewestFirst(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			for i := 0; i < 3; i++ {
				g := domain.Game{
					OwnerHash:   "owner",
					Title:       []string{"first", "second", "third"}[i],
					UserColor:   "w",
					Result:      "*",
					Status:      domain.StatusInProgress,
					StartingFEN: StandardFEN,
					Source:      domain.SourcePGN,
					CreatedAt:   base.Add(time.Duration(i) * time.Hour),
				}
				if _, err := repo.CreateGame(ctx, &g, nil); err != nil {
					t.Fatalf("CreateGame: %v", err)
				}
			}
			games, err := repo.RecentGames(ctx, "owner", 2)
			if err != nil {
				t.Fatalf("RecentGames: %v", err)
			}
			if len(games) != 2 || games[0].Title != "third" || games[1].Title != "second" {
				t.Fatalf("unexpected order: %+v", games)
			}
			none, err := repo.RecentGames(ctx, "nobody", 5)
			if err != nil || len(none) != 0 {
				t.Fatalf("expected no games: %v %v", none, err)
			}
		})
	}
}

func TestRepositorySaveImportRefreshes(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			g := SampleGame().Game
			g.OwnerHash = "owner"
			gameID, err := repo.CreateGame(ctx, &g, nil)
			if err != nil {
				t.Fatalf("CreateGame: %v", err)
			}

			imp := &domain.ImportedGame{
				OwnerHash:      "owner",
				ChessComGameID: "123",
				SourceURL:      "https://www.chess.com/game/live/123",
				ResultMessage:  "in progress",
			}
			first, err := repo.SaveImport(ctx, imp)
			if err != nil {
				t.Fatalf("SaveImport: %v", err)
			}

			end := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
			again := &domain.ImportedGame{
				OwnerHash:      "owner",
				ChessComGameID: "123",
				SourceURL:      "https://www.chess.com/game/live/123",
				ResultMessage:  "alice won by checkmate",
				IsFinished:     true,
				EndTime:        &end,
				GameID:         &gameID,
			}
			second, err := repo.SaveImport(ctx, again)
			if err != nil {
				t.Fatalf("SaveImport again: %v", err)
			}
			if second != first {
				t.Fatalf("re-import should keep id %d, got %d", first, second)
			}

			got, err := repo.GetImport(ctx, first, "owner")
			if err != nil || got == nil {
				t.Fatalf("GetImport: %v %v", got, err)
			}
			if got.ResultMessage != "alice won by checkmate" || !got.IsFinished {
				t.Fatalf("import not refreshed: %+v", got)
			}
			if got.GameID == nil || *got.GameID != gameID {
				t.Fatalf("game id = %v, want %d", got.GameID, gameID)
			}
			if got.EndTime == nil || !got.EndTime.Equal(end) {
				t.Fatalf("end time = %v", got.EndTime)
			}

			if other, err := repo.GetImport(ctx, first, "someone"); err != nil || other != nil {
				t.Fatalf("other owner should not see the import: %v %v", other, err)
			}
		})
	}
}
