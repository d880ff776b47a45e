package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/park285/cheese-review-bot/internal/config"
	"github.com/park285/cheese-review-bot/internal/replay"
	"github.com/park285/cheese-review-bot/internal/reviewbuilder"
	"github.com/park285/cheese-review-bot/internal/service/review"
	"github.com/park285/cheese-review-bot/internal/tui"
)

var errNoSource = errors.New("nothing to open: pass --pgn <file> or --db <sqlite> <game-id>")

type viewerCmd struct {
	logger  *zap.Logger
	// program stands in for the bubbletea run loop in tests.
	program func(tea.Model) error
}

// source resolves the flags into a provider and the id to fetch. The returned
// cleanup releases the store, if one was opened.
func (v *viewerCmd) source(ctx context.Context, cmd *cli.Command, cfg *config.AppConfig) (replay.Provider, int64, func(), error) {
	noop := func() {}

	if path := strings.TrimSpace(cmd.String("pgn")); path != "" {
		color, ok := replay.ParseColor(cmd.String("color"))
		if !ok {
			return nil, 0, noop, fmt.Errorf("unknown color %q: use white or black", cmd.String("color"))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, noop, fmt.Errorf("read pgn: %w", err)
		}
		parsed, err := review.ParsePGN(string(data), string(color))
		if err != nil {
			return nil, 0, noop, err
		}
		provider := replay.ProviderFunc(func(context.Context, int64) (*replay.Loaded, error) {
			return review.LoadParsed(parsed)
		})
		return provider, 0, noop, nil
	}

	raw := strings.TrimPrefix(strings.TrimSpace(cmd.StringArg("game-id")), "#")
	if raw == "" {
		return nil, 0, noop, errNoSource
	}
	gameID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || gameID <= 0 {
		return nil, 0, noop, fmt.Errorf("invalid game id %q", raw)
	}
	if db := strings.TrimSpace(cmd.String("db")); db != "" {
		cfg.SQLitePath = db
		cfg.DatabaseURL = ""
	}
	if cfg.SQLitePath == "" && cfg.DatabaseURL == "" {
		return nil, 0, noop, errNoSource
	}
	deps, err := reviewbuilder.New(ctx, cfg, v.logger)
	if err != nil {
		return nil, 0, noop, err
	}
	cleanup := func() {
		if err := deps.Close(); err != nil {
			v.logger.Warn("review_store_close_failed", zap.Error(err))
		}
	}
	meta := reviewbuilder.LocalMeta(cmd.String("room"), cmd.String("sender"))
	return deps.Store.ForRequest(meta), gameID, cleanup, nil
}

func (v *viewerCmd) run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.LoadTUI()
	provider, gameID, cleanup, err := v.source(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	viewer := replay.Open(ctx, provider, gameID, replay.WithFetchTimeout(cfg.ReviewFetchTimeout))
	defer viewer.Close()

	program := v.program
	if program == nil {
		program = func(m tea.Model) error {
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		}
	}
	if err := program(tui.New(ctx, viewer, v.logger)); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	if snap := viewer.Snapshot(); snap.State == replay.StateFailed {
		return snap.Err
	}
	return nil
}
