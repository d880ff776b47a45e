package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/park285/cheese-review-bot/internal/replay"
	"github.com/park285/cheese-review-bot/internal/reviewbuilder"
	"github.com/park285/cheese-review-bot/internal/util"
	"github.com/park285/cheese-review-bot/pkg/reviewdto"
)

// Import stores a PGN file or a Chess.com game for the local owner.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	source := strings.TrimSpace(cmd.StringArg("source"))
	if source == "" {
		return fmt.Errorf("source is required: a PGN file, - for stdin, or a chess.com url")
	}
	color, ok := replay.ParseColor(cmd.String("color"))
	if !ok {
		return fmt.Errorf("invalid color %q: use white or black", cmd.String("color"))
	}

	deps, err := r.openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeStore(deps)
	meta := metaFrom(cmd)

	var res *reviewdto.ImportResult
	if isChessComRef(source) {
		res, err = deps.Service.ImportChessCom(ctx, meta, source, string(color))
	} else {
		var text string
		text, err = r.readSource(source)
		if err != nil {
			return err
		}
		res, err = deps.Service.ImportPGN(ctx, meta, text, string(color))
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return r.printImport(res)
}

// Seed stores the bundled sample game.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	deps, err := r.openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeStore(deps)

	res, err := deps.Service.ImportSample(ctx, metaFrom(cmd))
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	return r.printImport(res)
}

func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	deps, err := r.openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeStore(deps)

	games, err := deps.Service.History(ctx, metaFrom(cmd), cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}
	if len(games) == 0 {
		return r.writePlainln("No stored games.")
	}
	for _, g := range games {
		if err := r.writePlainln("#%-4d %-40s %-8s %-5s %s",
			g.ID, g.Title, g.Source, colorName(g.UserColor), util.FormatKST(g.CreatedAt, "2006-01-02 15:04")); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	gameID, err := parseGameIDArg(cmd)
	if err != nil {
		return err
	}
	deps, err := r.openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeStore(deps)

	pgn, err := deps.Service.ExportPGN(ctx, metaFrom(cmd), gameID)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return r.writePlainln("%s", strings.TrimRight(pgn, "\n"))
}

// Render opens the game through the review service, moves to the requested
// ply and writes the rendered board.
func (r *Runner) Render(ctx context.Context, cmd *cli.Command) error {
	gameID, err := parseGameIDArg(cmd)
	if err != nil {
		return err
	}
	deps, err := r.openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeStore(deps)
	meta := metaFrom(cmd)

	state, err := deps.Service.Open(ctx, meta, gameID)
	if err != nil {
		return fmt.Errorf("could not load game %d: %w", gameID, err)
	}
	if ply := cmd.Int("ply"); ply >= 0 {
		state, _, err = deps.Service.Select(ctx, meta, ply)
	} else {
		state, _, err = deps.Service.Navigate(ctx, meta, replay.ActionGoToEnd)
	}
	if err != nil {
		return err
	}
	if len(state.BoardImage) == 0 {
		return fmt.Errorf("board image for game %d was not rendered", gameID)
	}

	out := strings.TrimSpace(cmd.String("output"))
	if out == "" {
		out = fmt.Sprintf("game-%d-ply-%d.png", gameID, state.Ply())
	}
	if err := os.WriteFile(out, state.BoardImage, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return r.writePlainln("✓ %s (%d/%d) → %s", state.Title, state.Ply(), state.Total, out)
}

func (r *Runner) closeStore(deps *reviewbuilder.Deps) {
	if err := deps.Close(); err != nil {
		r.logger.Warn("review_close_failed", zap.Error(err))
	}
}

func (r *Runner) readSource(source string) (string, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(r.input)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}
	return string(data), nil
}

func (r *Runner) printImport(res *reviewdto.ImportResult) error {
	if err := r.writePlainln("✓ Stored game #%d: %s (%d plies)", res.GameID, res.Title, res.Plies); err != nil {
		return err
	}
	if cc := res.ChessCom; cc != nil {
		if err := r.writePlainln("  Chess.com %s: %s vs %s, %s", cc.GameID, cc.WhiteUsername, cc.BlackUsername, cc.ResultMessage); err != nil {
			return err
		}
	}
	return nil
}

func parseGameIDArg(cmd *cli.Command) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(cmd.StringArg("game-id")), "#")
	if raw == "" {
		return 0, fmt.Errorf("game id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid game id %q", raw)
	}
	return id, nil
}

func isChessComRef(source string) bool {
	return strings.Contains(strings.ToLower(source), "chess.com")
}

func colorName(c string) string {
	if col, ok := replay.ParseColor(c); ok {
		if col == replay.Black {
			return "black"
		}
	}
	return "white"
}
