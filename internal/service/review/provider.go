package review

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-review-bot/internal/domain"
	"github.com/park285/cheese-review-bot/internal/replay"
	"github.com/park285/cheese-review-bot/internal/service/cache"
	"github.com/park285/cheese-review-bot/pkg/reviewdto"
)

var (
	ErrGameNotFound  = errors.New("review: game not found")
	ErrMalformedGame = errors.New("review: stored game is malformed")
)

const replayCachePrefix = "review:replay:"

// ReplayStore loads replays from the repository, reading through the Redis
// cache when one is configured. Replays are immutable, so cached copies never
// need invalidating.
type ReplayStore struct {
	repo   Repository
	cache  *cache.CacheService
	ttl    time.Duration
	logger *zap.Logger
}

func NewReplayStore(repo Repository, cacheSvc *cache.CacheService, ttl time.Duration, logger *zap.Logger) *ReplayStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ReplayStore{repo: repo, cache: cacheSvc, ttl: ttl, logger: logger}
}

// ForOwner scopes FetchReplay to games owned by ownerHash.
func (s *ReplayStore) ForOwner(ownerHash string) replay.Provider {
	return replay.ProviderFunc(func(ctx context.Context, gameID int64) (*replay.Loaded, error) {
		return s.Fetch(ctx, ownerHash, gameID)
	})
}

// ForRequest scopes FetchReplay to the owner behind meta.
func (s *ReplayStore) ForRequest(meta reviewdto.RequestMeta) replay.Provider {
	return s.ForOwner(ownerHash(meta))
}

// Fetch checks ownership against the repository before serving any cached
// replay.
func (s *ReplayStore) Fetch(ctx context.Context, ownerHash string, gameID int64) (*replay.Loaded, error) {
	game, err := s.repo.GetGame(ctx, gameID, ownerHash)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	r, err := s.loadReplay(ctx, game)
	if err != nil {
		return nil, err
	}
	color, _ := replay.ParseColor(game.UserColor)
	return &replay.Loaded{
		GameID:      game.ID,
		Title:       game.Title,
		Replay:      r,
		Orientation: replay.OrientationFor(color),
	}, nil
}

func (s *ReplayStore) cacheKey(gameID int64) string {
	return replayCachePrefix + strconv.FormatInt(gameID, 10)
}

func (s *ReplayStore) loadReplay(ctx context.Context, game *domain.Game) (*replay.GameReplay, error) {
	key := s.cacheKey(game.ID)
	if s.cache != nil {
		var cached replay.GameReplay
		found, err := s.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			s.logger.Warn("replay_cache_get_failed", zap.Int64("game_id", game.ID), zap.Error(err))
		case found:
			s.logger.Debug("replay_cache_hit", zap.Int64("game_id", game.ID))
			return &cached, nil
		default:
			s.logger.Debug("replay_cache_miss", zap.Int64("game_id", game.ID))
		}
	}

	moves, err := s.repo.GetMoves(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	r, err := BuildReplay(game.StartingFEN, moves)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, r, s.ttl); err != nil {
			s.logger.Warn("replay_cache_set_failed", zap.Int64("game_id", game.ID), zap.Error(err))
		}
	}
	return r, nil
}

// saveParsed validates the game as a replay before storing it for owner, then
// primes the cache with the result.
func (s *ReplayStore) saveParsed(ctx context.Context, owner string, parsed *ParsedGame) (*reviewdto.ImportResult, error) {
	if parsed == nil {
		return nil, ErrNilGame
	}
	r, err := BuildReplay(parsed.Game.StartingFEN, parsed.Moves)
	if err != nil {
		return nil, err
	}
	game := parsed.Game
	game.OwnerHash = owner
	id, err := s.repo.CreateGame(ctx, &game, parsed.Moves)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cacheKey(id), r, s.ttl); err != nil {
			s.logger.Warn("replay_cache_set_failed", zap.Int64("game_id", id), zap.Error(err))
		}
	}
	s.logger.Info("review_game_saved",
		zap.Int64("game_id", id),
		zap.String("source", game.Source),
		zap.Int("plies", r.Len()),
	)
	return &reviewdto.ImportResult{GameID: id, Title: game.Title, Plies: r.Len()}, nil
}

// BuildReplay converts stored rows into a replay, rejecting anything the
// viewer could not display.
func BuildReplay(startingFEN string, rows []domain.GameMove) (*replay.GameReplay, error) {
	if err := ValidateFEN(startingFEN); err != nil {
		return nil, fmt.Errorf("%w: starting position: %v", ErrMalformedGame, err)
	}
	moves := make([]replay.Move, 0, len(rows))
	for i, row := range rows {
		color, ok := replay.ParseColor(row.Color)
		if !ok {
			return nil, fmt.Errorf("%w: move %d has color %q", ErrMalformedGame, i, row.Color)
		}
		if err := ValidateFEN(row.FEN); err != nil {
			return nil, fmt.Errorf("%w: move %d: %v", ErrMalformedGame, i, err)
		}
		moves = append(moves, replay.Move{
			MoveNumber: row.MoveNumber,
			Color:      color,
			Algebraic:  row.Algebraic,
			Position:   row.FEN,
		})
	}
	r, err := replay.NewGameReplay(startingFEN, moves)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGame, err)
	}
	return r, nil
}

// LoadParsed builds a replay straight from a parsed game without storing it.
func LoadParsed(parsed *ParsedGame) (*replay.Loaded, error) {
	if parsed == nil {
		return nil, ErrNilGame
	}
	r, err := BuildReplay(parsed.Game.StartingFEN, parsed.Moves)
	if err != nil {
		return nil, err
	}
	color, _ := replay.ParseColor(parsed.Game.UserColor)
	return &replay.Loaded{
		GameID:      parsed.Game.ID,
		Title:       parsed.Game.Title,
		Replay:      r,
		Orientation: replay.OrientationFor(color),
	}, nil
}
