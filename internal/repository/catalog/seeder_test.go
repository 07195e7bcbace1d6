package catalog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/skald-io/rankfuse/internal/domain"
)

type mockStore struct {
	existsFn func(ctx context.Context) (bool, error)
	countFn  func(ctx context.Context) (int64, error)
	dropFn   func(ctx context.Context) error
	insertFn func(ctx context.Context, movies []domain.Movie) error

	drops   int
	inserts int
}

func (m *mockStore) CollectionExists(ctx context.Context) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx)
	}
	return false, nil
}

func (m *mockStore) CountDocuments(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockStore) DropCollection(ctx context.Context) error {
	m.drops++
	if m.dropFn != nil {
		return m.dropFn(ctx)
	}
	return nil
}

func (m *mockStore) InsertMovies(ctx context.Context, movies []domain.Movie) error {
	m.inserts++
	if m.insertFn != nil {
		return m.insertFn(ctx, movies)
	}
	return nil
}

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (e *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	e.calls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: e.vec}, nil
}

func TestSeed_PopulatedCollectionIsNoop(t *testing.T) {
	ms := &mockStore{
		existsFn: func(_ context.Context) (bool, error) { return true, nil },
		countFn:  func(_ context.Context) (int64, error) { return 5, nil },
	}
	emb := &stubEmbedder{vec: []float32{1}}

	seeder := NewSeeder(ms, emb, zap.NewNop())
	seeded, err := seeder.Seed(context.Background(), domain.SampleMovies())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seeded {
		t.Fatal("populated collection must not be reseeded")
	}
	if ms.drops != 0 || ms.inserts != 0 || emb.calls != 0 {
		t.Fatalf("no-op seed touched the store: drops=%d inserts=%d embeds=%d",
			ms.drops, ms.inserts, emb.calls)
	}
}

func TestSeed_AbsentCollection(t *testing.T) {
	var inserted []domain.Movie
	ms := &mockStore{
		insertFn: func(_ context.Context, movies []domain.Movie) error {
			inserted = movies
			return nil
		},
	}
	emb := &stubEmbedder{vec: []float32{0.5, 0.5}}

	seeder := NewSeeder(ms, emb, zap.NewNop())
	seeded, err := seeder.Seed(context.Background(), domain.SampleMovies())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seeded {
		t.Fatal("expected seeding to run")
	}
	if ms.drops != 1 {
		t.Fatalf("expected 1 drop, got %d", ms.drops)
	}
	if len(inserted) != 5 {
		t.Fatalf("expected 5 inserted movies, got %d", len(inserted))
	}
	if emb.calls != 5 {
		t.Fatalf("expected one embed per record, got %d", emb.calls)
	}
	for _, m := range inserted {
		if len(m.Embedding) != 2 {
			t.Fatalf("movie %q missing embedding: %v", m.Title, m.Embedding)
		}
	}
}

func TestSeed_EmptyExistingCollectionIsReseeded(t *testing.T) {
	ms := &mockStore{
		existsFn: func(_ context.Context) (bool, error) { return true, nil },
		countFn:  func(_ context.Context) (int64, error) { return 0, nil },
	}
	emb := &stubEmbedder{vec: []float32{1}}

	seeder := NewSeeder(ms, emb, zap.NewNop())
	seeded, err := seeder.Seed(context.Background(), domain.SampleMovies())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seeded || ms.inserts != 1 {
		t.Fatalf("empty collection should be reseeded: seeded=%v inserts=%d", seeded, ms.inserts)
	}
}

func TestSeed_EmbeddingFailureAborts(t *testing.T) {
	ms := &mockStore{}
	emb := &stubEmbedder{err: domain.ErrEmbeddingProvider}

	seeder := NewSeeder(ms, emb, zap.NewNop())
	_, err := seeder.Seed(context.Background(), domain.SampleMovies())
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
	if ms.inserts != 0 {
		t.Fatal("no insert should happen after an embedding failure")
	}
}
