package reviewbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-review-bot/internal/chesscom"
	"github.com/park285/cheese-review-bot/internal/config"
	"github.com/park285/cheese-review-bot/internal/service/cache"
	"github.com/park285/cheese-review-bot/internal/service/review"
	"github.com/park285/cheese-review-bot/internal/storage"
	"github.com/park285/cheese-review-bot/pkg/reviewdto"
)

const (
	LocalRoom   = "terminal"
	LocalSender = "local"
)

type Deps struct {
	Service  *review.Service
	Repo     review.Repository
	Store    *review.ReplayStore
	Cache    *cache.CacheService
	DB       *storage.DB
	ChessCom *chesscom.Client
}

// New wires the review service. Postgres wins over SQLite; with neither the
// games live in memory. Redis is optional.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Deps{}

	var err error
	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		deps.DB, err = storage.Open(ctx, storage.Postgres, cfg.DatabaseURL)
	case strings.TrimSpace(cfg.SQLitePath) != "":
		deps.DB, err = storage.Open(ctx, storage.SQLite, cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}
	if deps.DB != nil {
		deps.Repo = review.NewRepository(deps.DB)
		logger.Info("review_storage_ready", zap.String("dialect", string(deps.DB.Dialect)))
	} else {
		deps.Repo = review.NewMemoryRepository()
		logger.Warn("review_storage_memory")
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		deps.Cache, err = cache.NewFromURL(cfg.RedisURL, logger)
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("init cache: %w", err)
		}
	}
	deps.Store = review.NewReplayStore(deps.Repo, deps.Cache, cfg.ReplayCacheTTL, logger)

	deps.ChessCom = chesscom.NewClient(
		chesscom.WithBaseURL(cfg.ChessComBaseURL),
		chesscom.WithTimeout(cfg.ChessComTimeout),
		chesscom.WithLogger(logger),
	)

	svcCfg := review.Config{
		ViewTTL:      cfg.ReviewViewTTL,
		FetchTimeout: cfg.ReviewFetchTimeout,
		HistoryLimit: cfg.ReviewHistoryLimit,
		AllowedRooms: append([]string(nil), cfg.AllowedRooms...),
	}
	deps.Service, err = review.NewService(deps.Repo, deps.Store, review.NewSVGBoardRenderer(), deps.ChessCom, svcCfg, logger)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	return deps, nil
}

// Close stops the service and releases the database and cache.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	if d.Service != nil {
		d.Service.Shutdown()
	}
	var errs []error
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	return errors.Join(errs...)
}

// LocalMeta is the owner used by the command-line tools. Games imported from a
// shell with the default room and sender can be opened in the terminal viewer.
func LocalMeta(room, sender string) reviewdto.RequestMeta {
	room = strings.TrimSpace(room)
	if room == "" {
		room = LocalRoom
	}
	sender = strings.TrimSpace(sender)
	if sender == "" {
		sender = LocalSender
	}
	return reviewdto.RequestMeta{Room: room, Sender: sender}
}
