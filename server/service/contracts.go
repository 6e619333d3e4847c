package service

import (
	"context"
	"errors"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotAdmin     = errors.New("caller is not the game admin")
	ErrLogNotFound  = errors.New("action log not found")
	ErrBadAction    = errors.New("invalid action input")
)

// GameBrief is the listing row for an active game.
type GameBrief struct {
	ID      string `json:"id"`
	Admin   string `json:"admin"`
	Players int    `json:"players"`
	CanJoin bool   `json:"canJoin"`
}

// GameStore is the persistence gateway for game snapshots. Payloads are
// opaque JSON; the service never depends on the storage technology.
type GameStore interface {
	CreateGame(ctx context.Context, id, admin string, players int, canJoin bool, data []byte) error
	SaveGame(ctx context.Context, id string, players int, canJoin bool, data []byte) error
	// LoadGame returns the snapshot of an active game, or ErrGameNotFound.
	LoadGame(ctx context.Context, id string) ([]byte, error)
	ListActiveGames(ctx context.Context) ([]GameBrief, error)
	InactivateGame(ctx context.Context, id string) error
}

// ActionLogStore persists the per-hand audit trail, keyed gameID-handID.
type ActionLogStore interface {
	SaveActionLog(ctx context.Context, key string, data []byte) error
	// LoadActionLog returns the serialized log, or ErrLogNotFound.
	LoadActionLog(ctx context.Context, key string) ([]byte, error)
}

// Store is what the service needs from persistence.
type Store interface {
	GameStore
	ActionLogStore
}
