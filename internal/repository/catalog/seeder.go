// Package catalog seeds the movie collection with sample records.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skald-io/rankfuse/internal/domain"
)

// store is the consumer interface for collection management.
type store interface {
	CollectionExists(ctx context.Context) (bool, error)
	CountDocuments(ctx context.Context) (int64, error)
	DropCollection(ctx context.Context) error
	InsertMovies(ctx context.Context, movies []domain.Movie) error
}

// Seeder populates the collection with embedded sample records. Seeding is
// idempotent: a collection that already holds at least one document is never
// touched. The drop-and-recreate path runs only for an empty or absent
// collection.
type Seeder struct {
	store    store
	embedder domain.Embedder
	logger   *zap.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(s store, embedder domain.Embedder, logger *zap.Logger) *Seeder {
	return &Seeder{store: s, embedder: embedder, logger: logger}
}

// Seed ensures the collection is populated. Returns true when records were
// inserted, false when existing data was left untouched.
func (s *Seeder) Seed(ctx context.Context, movies []domain.Movie) (bool, error) {
	exists, err := s.store.CollectionExists(ctx)
	if err != nil {
		return false, fmt.Errorf("check collection: %w", err)
	}

	if exists {
		count, err := s.store.CountDocuments(ctx)
		if err != nil {
			return false, fmt.Errorf("count documents: %w", err)
		}
		if count > 0 {
			s.logger.Info("Collection already populated, skipping seed",
				zap.Int64("documents", count),
			)
			return false, nil
		}
	}

	s.logger.Info("Seeding sample records", zap.Int("count", len(movies)))

	if err := s.store.DropCollection(ctx); err != nil {
		return false, fmt.Errorf("drop collection: %w", err)
	}

	seeded := make([]domain.Movie, len(movies))
	for i, m := range movies {
		result, err := s.embedder.Embed(ctx, m.Plot)
		if err != nil {
			return false, fmt.Errorf("embed plot for %q: %w", m.Title, err)
		}
		m.Embedding = result.Embedding
		seeded[i] = m
	}

	if err := s.store.InsertMovies(ctx, seeded); err != nil {
		return false, fmt.Errorf("seed collection: %w", err)
	}

	s.logger.Info("Collection seeded", zap.Int("documents", len(seeded)))
	return true, nil
}
