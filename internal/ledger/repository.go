package ledger

import (
	"context"
	"sync"
)

// UpdateFunc computes the next state of a game. Returning an error aborts the update.
type UpdateFunc func(g Game) (Game, []Transfer, error)

// Repository stores games. Update runs fn with exclusive access to one game, so writes to the
// same game are totally ordered; a failed fn leaves storage untouched.
type Repository interface {
	Create(ctx context.Context, g Game) error
	Get(ctx context.Context, id string) (Game, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (Game, []Transfer, error)
	Transfers(ctx context.Context, id string) ([]Transfer, error)
}

type memoryEntry struct {
	mu        sync.Mutex
	game      Game
	transfers []Transfer
}

// MemoryRepository keeps games in process memory with one mutex per game.
type MemoryRepository struct {
	mu    sync.RWMutex
	games map[string]*memoryEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{games: make(map[string]*memoryEntry)}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(ctx context.Context, g Game) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[g.ID]; ok {
		return ErrGameExists
	}
	r.games[g.ID] = &memoryEntry{game: g.clone()}
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Game, error) {
	_ = ctx
	entry, ok := r.entry(id)
	if !ok {
		return Game{}, ErrGameNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.game.clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, fn UpdateFunc) (Game, []Transfer, error) {
	entry, ok := r.entry(id)
	if !ok {
		return Game{}, nil, ErrGameNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Game{}, nil, err
	}
	next, transfers, err := fn(entry.game.clone())
	if err != nil {
		return Game{}, nil, err
	}
	entry.game = next.clone()
	entry.transfers = append(entry.transfers, transfers...)
	return next, transfers, nil
}

func (r *MemoryRepository) Transfers(ctx context.Context, id string) ([]Transfer, error) {
	_ = ctx
	entry, ok := r.entry(id)
	if !ok {
		return nil, ErrGameNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return append([]Transfer{}, entry.transfers...), nil
}

func (r *MemoryRepository) entry(id string) (*memoryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.games[id]
	return e, ok
}
