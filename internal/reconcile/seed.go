package reconcile

import (
	"context"
	"fmt"

	"github.com/five82/hireboard/internal/store"
)

// RemoteSeeder reseeds the local store from the remote service.
type RemoteSeeder struct {
	Source Source
}

// Seed implements Seeder.
func (r RemoteSeeder) Seed(ctx context.Context, db *store.DB) error {
	if r.Source == nil {
		return fmt.Errorf("remote seeder has no source")
	}
	cols, err := Fetch(ctx, r.Source)
	if err != nil {
		return err
	}
	return Persist(ctx, db, cols)
}

// SeederFunc adapts a function to Seeder.
type SeederFunc func(ctx context.Context, db *store.DB) error

// Seed implements Seeder.
func (f SeederFunc) Seed(ctx context.Context, db *store.DB) error {
	return f(ctx, db)
}
