// Package store persists board snapshots. Each save appends a new version;
// readers only ever ask for the latest one.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("snapshot not found")

// Record is one saved snapshot of a board.
type Record struct {
	ID        string
	BoardID   string
	Version   int
	Data      []byte
	CreatedAt time.Time
}

type Store interface {
	// Save appends data as the next version of boardID.
	Save(ctx context.Context, boardID string, data []byte) (Record, error)
	// Latest returns the highest version saved for boardID.
	Latest(ctx context.Context, boardID string) (Record, error)
}
