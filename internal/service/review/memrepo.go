package review

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/park285/cheese-review-bot/internal/domain"
)

// memrepo keeps everything in process. Used by tests and when no database is
// configured.
type memrepo struct {
	mu sync.RWMutex

	nextGameID   int64
	nextImportID int64

	games     map[int64]*domain.Game
	moves     map[int64][]domain.GameMove
	imports   map[int64]*domain.ImportedGame
	importKey map[string]int64 // owner|chesscom id -> import id
}

func NewMemoryRepository() Repository {
	return &memrepo{
		games:     make(map[int64]*domain.Game),
		moves:     make(map[int64][]domain.GameMove),
		imports:   make(map[int64]*domain.ImportedGame),
		importKey: make(map[string]int64),
	}
}

func (m *memrepo) CreateGame(ctx context.Context, game *domain.Game, moves []domain.GameMove) (int64, error) {
	if game == nil {
		return 0, ErrNilGame
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextGameID++
	id := m.nextGameID
	now := time.Now().UTC()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	if game.UpdatedAt.IsZero() {
		game.UpdatedAt = game.CreatedAt
	}
	game.ID = id

	stored := *game
	m.games[id] = &stored
	m.moves[id] = append([]domain.GameMove(nil), moves...)
	return id, nil
}

func (m *memrepo) GetGame(ctx context.Context, id int64, ownerHash string) (*domain.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok || g.OwnerHash != ownerHash {
		return nil, nil
	}
	out := *g
	return &out, nil
}

func (m *memrepo) GetMoves(ctx context.Context, gameID int64) ([]domain.GameMove, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.GameMove{}, m.moves[gameID]...), nil
}

func (m *memrepo) RecentGames(ctx context.Context, ownerHash string, limit int) ([]*domain.Game, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]*domain.Game, 0)
	for _, g := range m.games {
		if g.OwnerHash == ownerHash {
			cp := *g
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) SaveImport(ctx context.Context, imp *domain.ImportedGame) (int64, error) {
	if imp == nil {
		return 0, ErrNilGame
	}
	key := imp.OwnerHash + "|" + imp.ChessComGameID

	m.mu.Lock()
	defer m.mu.Unlock()
	id, exists := m.importKey[key]
	if !exists {
		m.nextImportID++
		id = m.nextImportID
	}
	if imp.ImportedAt.IsZero() {
		imp.ImportedAt = time.Now().UTC()
	}
	imp.ID = id
	stored := *imp
	m.imports[id] = &stored
	m.importKey[key] = id
	return id, nil
}

func (m *memrepo) GetImport(ctx context.Context, id int64, ownerHash string) (*domain.ImportedGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	imp, ok := m.imports[id]
	if !ok || imp.OwnerHash != ownerHash {
		return nil, nil
	}
	out := *imp
	return &out, nil
}
