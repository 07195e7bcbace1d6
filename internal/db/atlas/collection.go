package atlas

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/skald-io/rankfuse/internal/domain"
)

// CollectionExists reports whether the managed collection exists in the database.
func (s *Store) CollectionExists(ctx context.Context) (bool, error) {
	start := time.Now()
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: s.coll.Name()}})
	observe("list_collections", start, err)
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	return len(names) > 0, nil
}

// CountDocuments returns the number of documents in the collection.
func (s *Store) CountDocuments(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	observe("count_documents", start, err)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// DropCollection drops the managed collection.
func (s *Store) DropCollection(ctx context.Context) error {
	start := time.Now()
	err := s.coll.Drop(ctx)
	observe("drop_collection", start, err)
	if err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return nil
}

// InsertMovies inserts the given records in one batch.
func (s *Store) InsertMovies(ctx context.Context, movies []domain.Movie) error {
	docs := make([]interface{}, len(movies))
	for i, m := range movies {
		docs[i] = m
	}

	start := time.Now()
	_, err := s.coll.InsertMany(ctx, docs)
	observe("insert_many", start, err)
	if err != nil {
		return fmt.Errorf("insert movies: %w", err)
	}
	return nil
}

// Aggregate runs a pipeline on the collection and decodes all results into out.
func (s *Store) Aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	start := time.Now()
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	observe("aggregate", start, err)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode aggregate results: %w", err)
	}
	return nil
}
