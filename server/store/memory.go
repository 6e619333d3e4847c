package store

import (
	"context"
	"sync"

	"kirves-server/server/service"
)

type memGame struct {
	admin   string
	active  bool
	players int
	canJoin bool
	data    []byte
}

// Mem is an in-memory gateway with the same contract as DB. It backs
// tests and DB-less development runs.
type Mem struct {
	mu    sync.RWMutex
	games map[string]*memGame
	order []string
	logs  map[string][]byte
}

func NewMem() *Mem {
	return &Mem{
		games: map[string]*memGame{},
		logs:  map[string][]byte{},
	}
}

func (m *Mem) CreateGame(ctx context.Context, id, admin string, players int, canJoin bool, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[id] = &memGame{
		admin:   admin,
		active:  true,
		players: players,
		canJoin: canJoin,
		data:    append([]byte(nil), data...),
	}
	m.order = append(m.order, id)
	return nil
}

func (m *Mem) SaveGame(ctx context.Context, id string, players int, canJoin bool, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok || !g.active {
		return service.ErrGameNotFound
	}
	g.players = players
	g.canJoin = canJoin
	g.data = append([]byte(nil), data...)
	return nil
}

func (m *Mem) LoadGame(ctx context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok || !g.active {
		return nil, service.ErrGameNotFound
	}
	return append([]byte(nil), g.data...), nil
}

func (m *Mem) ListActiveGames(ctx context.Context) ([]service.GameBrief, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []service.GameBrief{}
	for _, id := range m.order {
		g := m.games[id]
		if g == nil || !g.active {
			continue
		}
		out = append(out, service.GameBrief{ID: id, Admin: g.admin, Players: g.players, CanJoin: g.canJoin})
	}
	return out, nil
}

func (m *Mem) InactivateGame(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return service.ErrGameNotFound
	}
	g.active = false
	return nil
}

func (m *Mem) SaveActionLog(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[key] = append([]byte(nil), data...)
	return nil
}

func (m *Mem) LoadActionLog(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.logs[key]
	if !ok {
		return nil, service.ErrLogNotFound
	}
	return append([]byte(nil), data...), nil
}
