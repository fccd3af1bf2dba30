package store

import (
	"context"

	"github.com/joescharf/sprint/internal/board"
)

// Store defines the persistence contract for a board: load and save must be
// lossless for every issue field and iteration date boundary.
type Store interface {
	LoadBoard(ctx context.Context) (*board.Board, error)
	SaveBoard(ctx context.Context, b *board.Board) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
