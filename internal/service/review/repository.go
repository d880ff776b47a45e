package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-review-bot/internal/domain"
	"github.com/park285/cheese-review-bot/internal/storage"
)

var ErrNilGame = errors.New("review: nil game payload")

// Repository stores review games. Lookups that find nothing return nil, nil.
type Repository interface {
	CreateGame(ctx context.Context, game *domain.Game, moves []domain.GameMove) (int64, error)
	GetGame(ctx context.Context, id int64, ownerHash string) (*domain.Game, error)
	GetMoves(ctx context.Context, gameID int64) ([]domain.GameMove, error)
	RecentGames(ctx context.Context, ownerHash string, limit int) ([]*domain.Game, error)
	// SaveImport refreshes the row when the owner already imported the game.
	SaveImport(ctx context.Context, imp *domain.ImportedGame) (int64, error)
	GetImport(ctx context.Context, id int64, ownerHash string) (*domain.ImportedGame, error)
}

type repository struct {
	db      *sql.DB
	dialect storage.Dialect
}

// NewRepository serves both postgres and sqlite; queries are written with '?'
// and rebound per dialect.
func NewRepository(db *storage.DB) Repository {
	return &repository{db: db.DB, dialect: db.Dialect}
}

func (r *repository) q(query string) string { return r.dialect.Rebind(query) }

const insertGameSQL = `
	INSERT INTO review_games (
		owner_hash,
		title,
		white_player,
		black_player,
		user_color,
		opponent_name,
		result,
		status,
		starting_fen,
		source,
		source_ref,
		created_at,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`

const insertMoveSQL = `
	INSERT INTO review_moves (game_id, move_number, color, algebraic, fen)
	VALUES (?, ?, ?, ?, ?)`

func (r *repository) CreateGame(ctx context.Context, game *domain.Game, moves []domain.GameMove) (int64, error) {
	if game == nil {
		return 0, ErrNilGame
	}
	now := time.Now().UTC()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	if game.UpdatedAt.IsZero() {
		game.UpdatedAt = game.CreatedAt
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(
		ctx,
		r.q(insertGameSQL),
		game.OwnerHash,
		game.Title,
		game.WhitePlayer,
		game.BlackPlayer,
		game.UserColor,
		game.OpponentName,
		game.Result,
		game.Status,
		game.StartingFEN,
		game.Source,
		game.SourceRef,
		game.CreatedAt,
		game.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert review game: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.q(insertMoveSQL))
	if err != nil {
		return 0, fmt.Errorf("prepare move insert: %w", err)
	}
	defer stmt.Close()
	for i, mv := range moves {
		if _, err := stmt.ExecContext(ctx, id, mv.MoveNumber, mv.Color, mv.Algebraic, mv.FEN); err != nil {
			return 0, fmt.Errorf("insert move %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit review game: %w", err)
	}
	game.ID = id
	return id, nil
}

const selectGameColumns = `
	id,
	owner_hash,
	title,
	white_player,
	black_player,
	user_color,
	opponent_name,
	result,
	status,
	starting_fen,
	source,
	source_ref,
	created_at,
	updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.Game, error) {
	var g domain.Game
	if err := row.Scan(
		&g.ID,
		&g.OwnerHash,
		&g.Title,
		&g.WhitePlayer,
		&g.BlackPlayer,
		&g.UserColor,
		&g.OpponentName,
		&g.Result,
		&g.Status,
		&g.StartingFEN,
		&g.Source,
		&g.SourceRef,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	g.UserColor = strings.TrimSpace(g.UserColor)
	return &g, nil
}

func (r *repository) GetGame(ctx context.Context, id int64, ownerHash string) (*domain.Game, error) {
	query := `SELECT ` + selectGameColumns + ` FROM review_games WHERE id = ? AND owner_hash = ?`
	g, err := scanGame(r.db.QueryRowContext(ctx, r.q(query), id, ownerHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select review game: %w", err)
	}
	return g, nil
}

func (r *repository) GetMoves(ctx context.Context, gameID int64) ([]domain.GameMove, error) {
	// 'w' sorts after 'b', so color DESC puts white first within a move number
	const query = `
		SELECT move_number, color, algebraic, fen
		FROM review_moves
		WHERE game_id = ?
		ORDER BY move_number ASC, color DESC`
	rows, err := r.db.QueryContext(ctx, r.q(query), gameID)
	if err != nil {
		return nil, fmt.Errorf("select review moves: %w", err)
	}
	defer rows.Close()

	moves := make([]domain.GameMove, 0, 64)
	for rows.Next() {
		var mv domain.GameMove
		if err := rows.Scan(&mv.MoveNumber, &mv.Color, &mv.Algebraic, &mv.FEN); err != nil {
			return nil, fmt.Errorf("scan review move: %w", err)
		}
		mv.Color = strings.TrimSpace(mv.Color)
		moves = append(moves, mv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review moves: %w", err)
	}
	return moves, nil
}

func (r *repository) RecentGames(ctx context.Context, ownerHash string, limit int) ([]*domain.Game, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + selectGameColumns + `
		FROM review_games
		WHERE owner_hash = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, r.q(query), ownerHash, limit)
	if err != nil {
		return nil, fmt.Errorf("select review games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.Game, 0, limit)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review games: %w", err)
	}
	return games, nil
}

const insertImportSQL = `
	INSERT INTO review_imports (
		owner_hash,
		chesscom_game_id,
		source_url,
		white_username,
		black_username,
		result_message,
		is_finished,
		game_end_reason,
		end_time,
		time_control,
		uuid,
		game_id,
		imported_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (owner_hash, chesscom_game_id) DO UPDATE SET
		source_url = excluded.source_url,
		white_username = excluded.white_username,
		black_username = excluded.black_username,
		result_message = excluded.result_message,
		is_finished = excluded.is_finished,
		game_end_reason = excluded.game_end_reason,
		end_time = excluded.end_time,
		time_control = excluded.time_control,
		uuid = excluded.uuid,
		game_id = excluded.game_id,
		imported_at = excluded.imported_at
	RETURNING id`

func (r *repository) SaveImport(ctx context.Context, imp *domain.ImportedGame) (int64, error) {
	if imp == nil {
		return 0, ErrNilGame
	}
	if imp.ImportedAt.IsZero() {
		imp.ImportedAt = time.Now().UTC()
	}
	var endTime sql.NullTime
	if imp.EndTime != nil {
		endTime = sql.NullTime{Time: *imp.EndTime, Valid: true}
	}
	var gameID sql.NullInt64
	if imp.GameID != nil {
		gameID = sql.NullInt64{Int64: *imp.GameID, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		r.q(insertImportSQL),
		imp.OwnerHash,
		imp.ChessComGameID,
		imp.SourceURL,
		imp.WhiteUsername,
		imp.BlackUsername,
		imp.ResultMessage,
		imp.IsFinished,
		imp.GameEndReason,
		endTime,
		imp.TimeControl,
		imp.UUID,
		gameID,
		imp.ImportedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert review import: %w", err)
	}
	imp.ID = id
	return id, nil
}

func (r *repository) GetImport(ctx context.Context, id int64, ownerHash string) (*domain.ImportedGame, error) {
	const query = `
		SELECT
			id,
			owner_hash,
			chesscom_game_id,
			source_url,
			white_username,
			black_username,
			result_message,
			is_finished,
			game_end_reason,
			end_time,
			time_control,
			uuid,
			game_id,
			imported_at
		FROM review_imports
		WHERE id = ? AND owner_hash = ?`

	var (
		imp     domain.ImportedGame
		endTime sql.NullTime
		gameID  sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, r.q(query), id, ownerHash).Scan(
		&imp.ID,
		&imp.OwnerHash,
		&imp.ChessComGameID,
		&imp.SourceURL,
		&imp.WhiteUsername,
		&imp.BlackUsername,
		&imp.ResultMessage,
		&imp.IsFinished,
		&imp.GameEndReason,
		&endTime,
		&imp.TimeControl,
		&imp.UUID,
		&gameID,
		&imp.ImportedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select review import: %w", err)
	}
	if endTime.Valid {
		t := endTime.Time
		imp.EndTime = &t
	}
	if gameID.Valid {
		v := gameID.Int64
		imp.GameID = &v
	}
	return &imp, nil
}
