package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/park285/cheese-review-bot/internal/obslog"
	"github.com/park285/cheese-review-bot/internal/reviewbuilder"
)

func main() {
	// bubbletea owns the terminal, so logs only go to the file.
	if err := obslog.Init(obslog.Options{FileOnly: true, DefaultFile: "logs/review-tui.log"}); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	if err := newApp(&viewerCmd{logger: logger}).Run(context.Background(), os.Args); err != nil {
		log.Fatalf("review-tui: %v", err)
	}
}

func newApp(v *viewerCmd) *cli.Command {
	return &cli.Command{
		Name:      "review-tui",
		Usage:     "Step through a finished chess game in the terminal",
		Version:   "0.3.0",
		ArgsUsage: "[game-id]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "game-id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to a SQLite game database",
				Sources: cli.EnvVars("SQLITE_PATH"),
			},
			&cli.StringFlag{
				Name:  "pgn",
				Usage: "Open a PGN file without storing it",
			},
			&cli.StringFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "Side to view a --pgn game from (white or black)",
				Value:   "white",
			},
			&cli.StringFlag{
				Name:  "room",
				Usage: "Room the stored game belongs to",
				Value: reviewbuilder.LocalRoom,
			},
			&cli.StringFlag{
				Name:  "sender",
				Usage: "Sender the stored game belongs to",
				Value: reviewbuilder.LocalSender,
			},
		},
		Action: v.run,
	}
}
