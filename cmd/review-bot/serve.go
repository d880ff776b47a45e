package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/park285/cheese-review-bot/internal/bot"
	"github.com/park285/cheese-review-bot/internal/config"
	"github.com/park285/cheese-review-bot/internal/irisfast"
	"github.com/park285/cheese-review-bot/internal/msgcat"
	"github.com/park285/cheese-review-bot/internal/reviewbuilder"
)

// Serve runs the chat bot until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if cmd.Bool("dry-run") {
		cfg.IrisDryRun = true
	}
	logger := r.logger

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return fmt.Errorf("message catalog error: %w", err)
	}

	deps, err := reviewbuilder.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("review init error: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("review_close_failed", zap.Error(err))
		}
	}()

	client := irisfast.NewClient(cfg.IrisBaseURL,
		irisfast.WithHeaderProvider(cfg.IrisHeaders),
		irisfast.WithLogger(logger),
	)
	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(cfg.IrisHeaders)
	ws.SetLogger(logger)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("iris_ws_state", zap.String("state", state.String()))
	})

	egress := irisfast.NewEgress(cfg.IrisEgress, cfg.IrisDryRun, client, ws, logger)
	b, err := bot.New(deps.Service, egress, catalog, bot.Config{
		Prefix:       cfg.BotPrefix,
		AllowedRooms: cfg.AllowedRooms,
		RatePerSec:   cfg.ReviewRatePerSec,
	}, logger)
	if err != nil {
		return fmt.Errorf("bot init error: %w", err)
	}
	ws.OnMessage(b.OnMessage)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go deps.Service.RunJanitor(runCtx)

	cctx, cancel := context.WithTimeout(runCtx, 10*time.Second)
	err = ws.Connect(cctx)
	cancel()
	if err != nil {
		return fmt.Errorf("ws connect error: %w", err)
	}
	logger.Info("review_bot_started",
		zap.String("egress", cfg.IrisEgress),
		zap.Bool("dryrun", cfg.IrisDryRun),
		zap.Int("allowed_rooms", len(cfg.AllowedRooms)),
	)

	<-runCtx.Done()
	logger.Info("review_bot_stopping")

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := ws.Close(closeCtx); err != nil {
		logger.Warn("iris_ws_close_failed", zap.Error(err))
	}
	b.Wait()
	return nil
}
