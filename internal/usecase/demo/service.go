// Package demo orchestrates the sequential setup-and-query workflow:
// seed, provision indexes, wait for readiness, embed the query, run the
// hybrid search. Every step is a single idempotent remote operation; nothing
// runs concurrently.
package demo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skald-io/rankfuse/internal/domain"
)

// Params carries the index names and query constants for one run. Weights
// are fixed at construction and never adjusted at runtime.
type Params struct {
	TextIndex   string
	VectorIndex string
	TextFields  []string
	Dimensions  int

	NumCandidates int
	PipelineLimit int
	Limit         int

	VectorWeight float64
	TextWeight   float64

	ScoreDetails bool
}

// Service runs the workflow.
type Service struct {
	seeder      Seeder
	provisioner Provisioner
	searcher    Searcher
	embedder    domain.Embedder
	params      Params
	logger      *zap.Logger
}

// New creates the workflow service.
func New(
	seeder Seeder,
	provisioner Provisioner,
	searcher Searcher,
	embedder domain.Embedder,
	params Params,
	logger *zap.Logger,
) *Service {
	return &Service{
		seeder:      seeder,
		provisioner: provisioner,
		searcher:    searcher,
		embedder:    embedder,
		params:      params,
		logger:      logger,
	}
}

// Indexes returns the two index descriptors for this run.
func (s *Service) Indexes() []domain.IndexDescriptor {
	return []domain.IndexDescriptor{
		{
			Name: s.params.TextIndex,
			Kind: domain.IndexKindLexical,
		},
		{
			Name:       s.params.VectorIndex,
			Kind:       domain.IndexKindVector,
			Field:      domain.VectorField,
			Dimensions: s.params.Dimensions,
			Similarity: "cosine",
		},
	}
}

// Setup seeds the collection and provisions both indexes. Indexes are only
// queried after this returns, so readiness is guaranteed before Query runs.
func (s *Service) Setup(ctx context.Context) error {
	if _, err := s.seeder.Seed(ctx, domain.SampleMovies()); err != nil {
		return err
	}
	return s.provisioner.Ensure(ctx, s.Indexes())
}

// Query embeds the query text and runs the hybrid search.
func (s *Service) Query(ctx context.Context, query string) ([]domain.HybridResult, error) {
	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := domain.HybridRequest{
		Query:         query,
		QueryVector:   emb.Embedding,
		VectorIndex:   s.params.VectorIndex,
		TextIndex:     s.params.TextIndex,
		TextFields:    s.params.TextFields,
		NumCandidates: s.params.NumCandidates,
		PipelineLimit: s.params.PipelineLimit,
		Limit:         s.params.Limit,
		VectorWeight:  s.params.VectorWeight,
		TextWeight:    s.params.TextWeight,
		ScoreDetails:  s.params.ScoreDetails,
	}

	return s.searcher.Search(ctx, req)
}

// Run executes the full workflow for one query.
func (s *Service) Run(ctx context.Context, query string) ([]domain.HybridResult, error) {
	if err := s.Setup(ctx); err != nil {
		return nil, err
	}
	return s.Query(ctx, query)
}
