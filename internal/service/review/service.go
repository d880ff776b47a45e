package review

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-review-bot/internal/chesscom"
	"github.com/park285/cheese-review-bot/internal/domain"
	"github.com/park285/cheese-review-bot/internal/replay"
	"github.com/park285/cheese-review-bot/pkg/reviewdto"
)

var (
	ErrRoomNotAllowed     = errors.New("review room not allowed")
	ErrNoActiveReview     = errors.New("no active review")
	ErrViewerLoading      = errors.New("review is still loading")
	ErrChessComDisabled   = errors.New("chess.com import is not configured")
	ErrServiceUnavailable = errors.New("review service unavailable")
)

const (
	maxHistoryLimit     = 50
	defaultHistoryLimit = 10
	titleRuneLimit      = 40
)

// ChessComFetcher downloads a live game by URL or id.
type ChessComFetcher interface {
	FetchGame(ctx context.Context, ref string) (*chesscom.Game, error)
}

type Config struct {
	ViewTTL      time.Duration
	FetchTimeout time.Duration
	HistoryLimit int
	AllowedRooms []string
}

// Service owns one viewer per user and turns viewer snapshots into rendered
// review states.
type Service struct {
	repo         Repository
	store        *ReplayStore
	renderer     BoardRenderer
	chesscom     ChessComFetcher
	cfg          Config
	allowedRooms map[string]struct{}
	logger       *zap.Logger

	mu      sync.Mutex
	viewers map[string]*replay.Viewer
	baseCtx context.Context
	stop    context.CancelFunc
}

func NewService(repo Repository, store *ReplayStore, renderer BoardRenderer, fetcher ChessComFetcher, cfg Config, logger *zap.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository is required")
	}
	if store == nil {
		return nil, fmt.Errorf("replay store is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("board renderer is required")
	}
	if cfg.ViewTTL <= 0 {
		return nil, fmt.Errorf("view TTL must be greater than 0")
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	allowedRooms := make(map[string]struct{})
	for _, room := range cfg.AllowedRooms {
		normalized := strings.ToLower(strings.TrimSpace(room))
		if normalized == "" {
			continue
		}
		allowedRooms[normalized] = struct{}{}
	}

	baseCtx, stop := context.WithCancel(context.Background())
	return &Service{
		repo:     repo,
		store:    store,
		renderer: renderer,
		chesscom: fetcher,
		cfg: Config{
			ViewTTL:      cfg.ViewTTL,
			FetchTimeout: cfg.FetchTimeout,
			HistoryLimit: cfg.HistoryLimit,
			AllowedRooms: append([]string(nil), cfg.AllowedRooms...),
		},
		allowedRooms: allowedRooms,
		logger:       logger,
		viewers:      make(map[string]*replay.Viewer),
		baseCtx:      baseCtx,
		stop:         stop,
	}, nil
}

// Open replaces the caller's current review with gameID and waits for it to
// load.
func (s *Service) Open(ctx context.Context, meta reviewdto.RequestMeta, gameID int64) (*reviewdto.ReviewState, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	if err := s.baseCtx.Err(); err != nil {
		return nil, ErrServiceUnavailable
	}
	owner := ownerHash(meta)
	v := replay.Open(s.baseCtx, s.store.ForOwner(owner), gameID,
		replay.WithFetchTimeout(s.cfg.FetchTimeout),
		replay.WithOnChange(func(f replay.Frame) {
			s.logger.Debug("review_nav", zap.Int64("game_id", gameID), zap.Int("cursor", f.Cursor), zap.Int("total", f.Total))
		}),
	)

	s.mu.Lock()
	if prev, ok := s.viewers[owner]; ok {
		prev.Close()
	}
	s.viewers[owner] = v
	s.mu.Unlock()

	if err := v.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return nil, ErrViewerLoading
			}
		}
		s.drop(owner, v)
		s.logger.Info("review_open_failed", zap.Int64("game_id", gameID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("review_opened", zap.Int64("game_id", gameID), zap.String("viewer_id", v.ID()))
	return s.renderState(ctx, v.Snapshot())
}

// Navigate applies one step action. changed is false when the cursor was
// already at the boundary.
func (s *Service) Navigate(ctx context.Context, meta reviewdto.RequestMeta, action replay.Action) (*reviewdto.ReviewState, bool, error) {
	v, err := s.readyViewer(meta)
	if err != nil {
		return nil, false, err
	}
	changed := v.Do(action)
	state, err := s.renderState(ctx, v.Snapshot())
	return state, changed, err
}

// Select jumps to a ply: 0 is the starting position, n shows the position
// after the n-th half-move. A ply outside the game leaves the board as it is.
func (s *Service) Select(ctx context.Context, meta reviewdto.RequestMeta, ply int) (*reviewdto.ReviewState, bool, error) {
	v, err := s.readyViewer(meta)
	if err != nil {
		return nil, false, err
	}
	changed := v.Select(ply - 1)
	state, err := s.renderState(ctx, v.Snapshot())
	return state, changed, err
}

func (s *Service) Current(ctx context.Context, meta reviewdto.RequestMeta) (*reviewdto.ReviewState, error) {
	v, err := s.readyViewer(meta)
	if err != nil {
		return nil, err
	}
	return s.renderState(ctx, v.Snapshot())
}

// CloseReview tears down the caller's viewer, cancelling a pending load.
func (s *Service) CloseReview(meta reviewdto.RequestMeta) error {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return err
	}
	owner := ownerHash(meta)
	s.mu.Lock()
	v, ok := s.viewers[owner]
	delete(s.viewers, owner)
	s.mu.Unlock()
	if !ok {
		return ErrNoActiveReview
	}
	v.Close()
	return nil
}

func (s *Service) History(ctx context.Context, meta reviewdto.RequestMeta, limit int) ([]reviewdto.GameSummary, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	games, err := s.repo.RecentGames(ctx, ownerHash(meta), limit)
	if err != nil {
		return nil, err
	}
	out := make([]reviewdto.GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, reviewdto.GameSummary{
			ID:        g.ID,
			Title:     g.Title,
			White:     g.WhitePlayer,
			Black:     g.BlackPlayer,
			UserColor: g.UserColor,
			Result:    g.Result,
			Source:    g.Source,
			CreatedAt: g.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) ImportPGN(ctx context.Context, meta reviewdto.RequestMeta, text, userColor string) (*reviewdto.ImportResult, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	parsed, err := ParsePGN(text, userColor)
	if err != nil {
		return nil, err
	}
	return s.store.saveParsed(ctx, ownerHash(meta), parsed)
}

func (s *Service) ImportSample(ctx context.Context, meta reviewdto.RequestMeta) (*reviewdto.ImportResult, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	return s.store.saveParsed(ctx, ownerHash(meta), SampleGame())
}

// ImportChessCom fetches a Chess.com game, stores it as a reviewable game and
// records (or refreshes) the import metadata.
func (s *Service) ImportChessCom(ctx context.Context, meta reviewdto.RequestMeta, ref, userColor string) (*reviewdto.ImportResult, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	if s.chesscom == nil {
		return nil, ErrChessComDisabled
	}
	remote, err := s.chesscom.FetchGame(ctx, ref)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseChessComGame(remote, userColor)
	if err != nil {
		return nil, err
	}
	owner := ownerHash(meta)
	result, err := s.store.saveParsed(ctx, owner, parsed)
	if err != nil {
		return nil, err
	}

	gameID := result.GameID
	imp := &domain.ImportedGame{
		OwnerHash:      owner,
		ChessComGameID: remote.ID,
		SourceURL:      remote.SourceURL,
		WhiteUsername:  remote.WhiteUsername,
		BlackUsername:  remote.BlackUsername,
		ResultMessage:  remote.ResultMessage,
		IsFinished:     remote.IsFinished,
		GameEndReason:  remote.GameEndReason,
		EndTime:        remote.EndTime,
		TimeControl:    remote.TimeControl,
		UUID:           remote.UUID,
		GameID:         &gameID,
	}
	importID, err := s.repo.SaveImport(ctx, imp)
	if err != nil {
		return nil, err
	}
	result.ImportID = importID
	result.ChessCom = &reviewdto.ChessComMeta{
		GameID:        remote.ID,
		SourceURL:     remote.SourceURL,
		WhiteUsername: remote.WhiteUsername,
		BlackUsername: remote.BlackUsername,
		ResultMessage: remote.ResultMessage,
		IsFinished:    remote.IsFinished,
		GameEndReason: remote.GameEndReason,
		EndTime:       remote.EndTime,
		TimeControl:   remote.TimeControl,
		UUID:          remote.UUID,
	}
	s.logger.Info("chesscom_game_imported",
		zap.String("chesscom_id", remote.ID),
		zap.Int64("game_id", gameID),
		zap.Int64("import_id", importID),
	)
	return result, nil
}

// ExportPGN renders gameID as PGN. A zero id exports the open review.
func (s *Service) ExportPGN(ctx context.Context, meta reviewdto.RequestMeta, gameID int64) (string, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return "", err
	}
	owner := ownerHash(meta)
	if gameID == 0 {
		s.mu.Lock()
		v, ok := s.viewers[owner]
		s.mu.Unlock()
		if !ok {
			return "", ErrNoActiveReview
		}
		gameID = v.GameID()
	}
	game, err := s.repo.GetGame(ctx, gameID, owner)
	if err != nil {
		return "", err
	}
	if game == nil {
		return "", ErrGameNotFound
	}
	moves, err := s.repo.GetMoves(ctx, gameID)
	if err != nil {
		return "", err
	}
	return BuildPGN(game, moves), nil
}

// Sweep closes viewers idle for longer than the view TTL and returns how many
// were closed.
func (s *Service) Sweep(now time.Time) int {
	s.mu.Lock()
	var idle []*replay.Viewer
	for owner, v := range s.viewers {
		if now.Sub(v.LastActive()) > s.cfg.ViewTTL {
			idle = append(idle, v)
			delete(s.viewers, owner)
		}
	}
	s.mu.Unlock()
	for _, v := range idle {
		v.Close()
	}
	if len(idle) > 0 {
		s.logger.Debug("review_viewers_swept", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// RunJanitor sweeps idle viewers until ctx is done.
func (s *Service) RunJanitor(ctx context.Context) {
	interval := s.cfg.ViewTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// Shutdown closes every viewer and cancels in-flight loads.
func (s *Service) Shutdown() {
	s.stop()
	s.mu.Lock()
	viewers := s.viewers
	s.viewers = make(map[string]*replay.Viewer)
	s.mu.Unlock()
	for _, v := range viewers {
		v.Close()
	}
}

// ActiveViewers reports how many reviews are open.
func (s *Service) ActiveViewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

func (s *Service) readyViewer(meta reviewdto.RequestMeta) (*replay.Viewer, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	owner := ownerHash(meta)
	s.mu.Lock()
	v, ok := s.viewers[owner]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoActiveReview
	}
	snap := v.Snapshot()
	switch snap.State {
	case replay.StateReady:
		return v, nil
	case replay.StateLoading:
		return nil, ErrViewerLoading
	case replay.StateFailed:
		s.drop(owner, v)
		return nil, snap.Err
	default:
		s.drop(owner, v)
		return nil, ErrNoActiveReview
	}
}

// drop unregisters v if it is still the owner's current viewer.
func (s *Service) drop(owner string, v *replay.Viewer) {
	s.mu.Lock()
	if cur, ok := s.viewers[owner]; ok && cur == v {
		delete(s.viewers, owner)
	}
	s.mu.Unlock()
	v.Close()
}

func (s *Service) renderState(ctx context.Context, snap replay.Snapshot) (*reviewdto.ReviewState, error) {
	if snap.State != replay.StateReady {
		return nil, ErrNoActiveReview
	}
	frame := snap.Frame
	state := &reviewdto.ReviewState{
		ViewerID:    snap.ID,
		GameID:      snap.GameID,
		Title:       snap.Title,
		Cursor:      frame.Cursor,
		Total:       frame.Total,
		FEN:         frame.Position,
		Orientation: frame.Orientation.String(),
		AtStart:     frame.Cursor == replay.StartCursor,
		AtEnd:       frame.Cursor == frame.Total-1,
		Moves:       make([]reviewdto.MoveEntry, 0, len(snap.Moves)),
	}
	for i, mv := range snap.Moves {
		state.Moves = append(state.Moves, reviewdto.MoveEntry{
			Index:     i,
			Label:     mv.Label(),
			Algebraic: mv.Algebraic,
			Active:    i == frame.Cursor,
		})
	}
	if frame.LastMove != nil {
		state.ActiveLabel = frame.LastMove.Label() + " " + frame.LastMove.Algebraic
	}
	state.OpeningCode, state.OpeningTitle = OpeningAt(snap.Replay, frame.Cursor)

	pos, err := positionFromFEN(frame.Position)
	if err != nil {
		s.logger.Warn("review_position_invalid", zap.Int64("game_id", snap.GameID), zap.Error(err))
		return state, nil
	}
	var highlight *MoveHighlight
	if snap.Replay != nil {
		highlight = highlightAt(snap.Replay, frame.Cursor)
	}
	opts := RenderOptions{
		Orientation: frame.Orientation,
		Highlight:   highlight,
		HUDHeader:   truncateRunes(snap.Title, titleRuneLimit),
		HUDCaption:  hudCaption(state),
	}
	data, err := s.renderer.RenderPNG(ctx, pos.Board(), opts)
	if err != nil {
		s.logger.Warn("failed to render review board image", zap.Error(err))
		return state, nil
	}
	state.BoardImage = data
	return state, nil
}

func hudCaption(state *reviewdto.ReviewState) string {
	if state.AtStart {
		return fmt.Sprintf("Start • 0/%d", state.Total)
	}
	caption := fmt.Sprintf("%s • %d/%d", state.ActiveLabel, state.Ply(), state.Total)
	if state.OpeningCode != "" {
		caption = state.OpeningCode + " • " + caption
	}
	return caption
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func (s *Service) ensureRoomAllowed(meta reviewdto.RequestMeta) error {
	if len(s.allowedRooms) == 0 {
		return nil
	}

	room := strings.ToLower(strings.TrimSpace(meta.Room))
	if room == "" {
		room = "unknown-room"
	}

	if _, ok := s.allowedRooms[room]; ok {
		return nil
	}

	s.logger.Info("review room access denied",
		zap.String("room", room),
		zap.String("sender", strings.TrimSpace(meta.Sender)),
	)
	return ErrRoomNotAllowed
}

// ownerHash scopes games to one user in one room.
func ownerHash(meta reviewdto.RequestMeta) string {
	room := strings.ToLower(strings.TrimSpace(meta.Room))
	sender := strings.ToLower(strings.TrimSpace(meta.Identity()))
	return hashString(room + ":" + sender)
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
