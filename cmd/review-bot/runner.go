package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/park285/cheese-review-bot/internal/config"
	"github.com/park285/cheese-review-bot/internal/reviewbuilder"
	"github.com/park285/cheese-review-bot/pkg/reviewdto"
)

// Runner holds what the commands share and provides one method per action.
type Runner struct {
	logger *zap.Logger
	output io.Writer
	input  io.Reader
}

type RunnerOpts struct {
	Logger *zap.Logger
	Output io.Writer
	Input  io.Reader
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	return &Runner{logger: opts.Logger, output: opts.Output, input: opts.Input}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, importCommand, seedCommand, listCommand, exportCommand, renderCommand, irischeckCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

var errNoStore = errors.New("a game store is required: pass --db or set SQLITE_PATH or DATABASE_URL")

// openStore builds the review service for one command. --db selects a SQLite
// file and wins over the environment.
func (r *Runner) openStore(ctx context.Context, cmd *cli.Command) (*reviewbuilder.Deps, error) {
	cfg := config.LoadTUI()
	if db := strings.TrimSpace(cmd.String("db")); db != "" {
		cfg.SQLitePath = db
		cfg.DatabaseURL = ""
	}
	if cfg.SQLitePath == "" && cfg.DatabaseURL == "" {
		return nil, errNoStore
	}
	return reviewbuilder.New(ctx, cfg, r.logger)
}

func metaFrom(cmd *cli.Command) reviewdto.RequestMeta {
	return reviewbuilder.LocalMeta(cmd.String("room"), cmd.String("sender"))
}

// storeFlags are shared by every command that touches stored games.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "Path to a SQLite game database",
		},
		&cli.StringFlag{
			Name:  "room",
			Usage: "Room the games belong to",
			Value: reviewbuilder.LocalRoom,
		},
		&cli.StringFlag{
			Name:  "sender",
			Usage: "Sender the games belong to",
			Value: reviewbuilder.LocalSender,
		},
	}
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}
