package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/sketchboard/internal/typeid"
)

const schema = `
CREATE TABLE IF NOT EXISTS board_snapshots (
	id         TEXT PRIMARY KEY,
	board_id   TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (board_id, version)
)`

// PGStore keeps snapshots in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPool connects to databaseURL and checks the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewPGStore creates the snapshot table if needed.
func NewPGStore(ctx context.Context, pool *pgxpool.Pool) (*PGStore, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Save(ctx context.Context, boardID string, data []byte) (Record, error) {
	var rec Record
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(version), 0) FROM board_snapshots WHERE board_id = $1`,
			boardID,
		).Scan(&current)
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}

		rec = Record{ID: typeid.NewSnapshotID(), BoardID: boardID, Version: current + 1, Data: data}
		return tx.QueryRow(ctx,
			`INSERT INTO board_snapshots (id, board_id, version, document)
			 VALUES ($1, $2, $3, $4)
			 RETURNING created_at`,
			rec.ID, rec.BoardID, rec.Version, rec.Data,
		).Scan(&rec.CreatedAt)
	})
	if err != nil {
		return Record{}, fmt.Errorf("save snapshot: %w", err)
	}
	return rec, nil
}

func (s *PGStore) Latest(ctx context.Context, boardID string) (Record, error) {
	rec := Record{BoardID: boardID}
	err := s.pool.QueryRow(ctx,
		`SELECT id, version, document, created_at FROM board_snapshots
		 WHERE board_id = $1 ORDER BY version DESC LIMIT 1`,
		boardID,
	).Scan(&rec.ID, &rec.Version, &rec.Data, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get snapshot: %w", err)
	}
	return rec, nil
}
