package mock

import (
	"context"

	"github.com/fwojciec/multiverse"
)

// Interface compliance check.
var _ multiverse.CharacterStore = (*CharacterStore)(nil)

// CharacterStore is a test double for multiverse.CharacterStore.
// Set SaveFn before calling Save.
type CharacterStore struct {
	SaveFn func(ctx context.Context, c multiverse.Character) (string, error)
}

// Save delegates to SaveFn.
func (s *CharacterStore) Save(ctx context.Context, c multiverse.Character) (string, error) {
	return s.SaveFn(ctx, c)
}
