package demo

import (
	"context"

	"github.com/skald-io/rankfuse/internal/domain"
)

// Seeder ensures the collection is populated with sample records.
type Seeder interface {
	Seed(ctx context.Context, movies []domain.Movie) (bool, error)
}

// Provisioner ensures the search indexes exist and are queryable.
type Provisioner interface {
	Ensure(ctx context.Context, descs []domain.IndexDescriptor) error
}

// Searcher runs the composite hybrid query.
type Searcher interface {
	Search(ctx context.Context, req domain.HybridRequest) ([]domain.HybridResult, error)
}

// Dropper drops the seeded collection at teardown.
type Dropper interface {
	DropCollection(ctx context.Context) error
}
