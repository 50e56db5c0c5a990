package store

import (
	"context"
	"errors"

	"pinquiz/models"
)

// ErrGameNotFound is returned by Get when no game exists under the
// requested PIN.
var ErrGameNotFound = errors.New("game not found")

// GameStore is the shared flat key-value record store that admin and
// player clients coordinate through. Put replaces the whole record for
// its PIN; the last writer wins and there is no transaction spanning
// multiple keys. Callers rely on these full-snapshot overwrite
// semantics, so implementations must not merge.
type GameStore interface {
	Get(ctx context.Context, pin string) (*models.Game, error)
	Put(ctx context.Context, game *models.Game) error
	Delete(ctx context.Context, pin string) error
	List(ctx context.Context) ([]*models.Game, error)
}
