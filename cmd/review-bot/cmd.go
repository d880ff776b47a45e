package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Connect to Iris and answer review commands",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log replies instead of sending them",
			},
		},
		Action: r.Serve,
	}
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a PGN file (- for stdin) or a Chess.com game url",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "source"},
		},
		Flags: append(storeFlags(),
			&cli.StringFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "Side you played: white or black",
				Value:   "white",
			},
		),
		Action: r.Import,
	}
}

func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "seed",
		Usage:  "Store the bundled sample game",
		Flags:  storeFlags(),
		Action: r.Seed,
	}
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List recently stored games",
		Flags: append(storeFlags(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of games to list",
				Value: 10,
			},
		),
		Action: r.List,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Print a stored game as PGN",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "game-id"},
		},
		Flags:  storeFlags(),
		Action: r.Export,
	}
}

func renderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Write the board at one ply of a stored game as PNG",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "game-id"},
		},
		Flags: append(storeFlags(),
			&cli.IntFlag{
				Name:  "ply",
				Usage: "Half-move to show; 0 is the starting position, default is the final position",
				Value: -1,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
			},
		),
		Action: r.Render,
	}
}

func irischeckCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "irischeck",
		Usage: "Check the Iris REST endpoint and watch the WebSocket briefly",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Iris REST base url",
				Sources: cli.EnvVars("IRIS_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "ws-url",
				Usage:   "Iris WebSocket url; empty skips the WebSocket check",
				Sources: cli.EnvVars("IRIS_WS_URL"),
			},
			&cli.DurationFlag{
				Name:  "watch",
				Usage: "How long to print incoming messages",
				Value: 10 * time.Second,
			},
		},
		Action: r.IrisCheck,
	}
}
