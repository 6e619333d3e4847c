package store

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kirves-server/server/service"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

func (db *DB) CreateGame(ctx context.Context, id, admin string, players int, canJoin bool, data []byte) error {
	_, err := db.Exec(ctx, `
        INSERT INTO games(id, admin_email, players, can_join, game_data)
        VALUES ($1,$2,$3,$4,$5)
    `, id, admin, players, canJoin, data)
	return err
}

func (db *DB) SaveGame(ctx context.Context, id string, players int, canJoin bool, data []byte) error {
	_, err := db.Exec(ctx, `
        UPDATE games
           SET players = $2,
               can_join = $3,
               game_data = $4,
               updated_at = now()
         WHERE id = $1 AND active
    `, id, players, canJoin, data)
	return err
}

func (db *DB) LoadGame(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := db.QueryRow(ctx, `
        SELECT game_data FROM games WHERE id = $1 AND active
    `, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrGameNotFound
		}
		return nil, err
	}
	return data, nil
}

func (db *DB) ListActiveGames(ctx context.Context) ([]service.GameBrief, error) {
	rows, err := db.Query(ctx, `
        SELECT id, admin_email, players, can_join
          FROM games
         WHERE active
         ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []service.GameBrief{}
	for rows.Next() {
		var b service.GameBrief
		if err := rows.Scan(&b.ID, &b.Admin, &b.Players, &b.CanJoin); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (db *DB) InactivateGame(ctx context.Context, id string) error {
	_, err := db.Exec(ctx, `
        UPDATE games SET active = FALSE, updated_at = now() WHERE id = $1
    `, id)
	return err
}

func (db *DB) SaveActionLog(ctx context.Context, key string, data []byte) error {
	_, err := db.Exec(ctx, `
        INSERT INTO action_logs(key, log_data)
        VALUES ($1,$2)
        ON CONFLICT (key) DO UPDATE
          SET log_data = EXCLUDED.log_data,
              updated_at = now()
    `, key, data)
	return err
}

func (db *DB) LoadActionLog(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := db.QueryRow(ctx, `
        SELECT log_data FROM action_logs WHERE key = $1
    `, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrLogNotFound
		}
		return nil, err
	}
	return data, nil
}
