// Package resultcache hands a recommendation result set from the submitting
// request to the results page. Each browser session owns a single slot:
// a later Store replaces an earlier one and TakeAndClear empties it.
package resultcache

import (
	"context"
	"errors"

	"github.com/pageza/recipefinder/backend/internal/types"
)

// ErrNoSession is returned when a call has no session to scope it to.
var ErrNoSession = errors.New("resultcache: empty session id")

// Store is a single-slot, session-scoped result cache.
type Store interface {
	// Store overwrites the session's slot with records.
	Store(ctx context.Context, sessionID string, records []types.RecipeRecord) error
	// TakeAndClear returns the slot's records and empties it in one step.
	// ok is false when the slot was empty.
	TakeAndClear(ctx context.Context, sessionID string) (records []types.RecipeRecord, ok bool, err error)
}
