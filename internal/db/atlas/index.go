package atlas

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skald-io/rankfuse/internal/domain"
)

// Atlas search index types as accepted by createSearchIndexes.
const (
	indexTypeSearch       = "search"
	indexTypeVectorSearch = "vectorSearch"
)

// ListSearchIndexNames returns the names of all search indexes on the collection.
func (s *Store) ListSearchIndexNames(ctx context.Context) ([]string, error) {
	start := time.Now()
	cursor, err := s.coll.SearchIndexes().List(ctx, nil)
	observe("list_search_indexes", start, err)
	if err != nil {
		return nil, fmt.Errorf("list search indexes: %w", err)
	}
	defer cursor.Close(ctx)

	var statuses []domain.IndexStatus
	if err := cursor.All(ctx, &statuses); err != nil {
		return nil, fmt.Errorf("decode search indexes: %w", err)
	}

	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = st.Name
	}
	return names, nil
}

// SearchIndexStatus returns the current status of a named search index.
// found is false when the index does not exist (yet).
func (s *Store) SearchIndexStatus(ctx context.Context, name string) (status domain.IndexStatus, found bool, err error) {
	start := time.Now()
	cursor, err := s.coll.SearchIndexes().List(ctx, options.SearchIndexes().SetName(name))
	observe("list_search_indexes", start, err)
	if err != nil {
		return domain.IndexStatus{}, false, fmt.Errorf("list search index %q: %w", name, err)
	}
	defer cursor.Close(ctx)

	var statuses []domain.IndexStatus
	if err := cursor.All(ctx, &statuses); err != nil {
		return domain.IndexStatus{}, false, fmt.Errorf("decode search index %q: %w", name, err)
	}
	if len(statuses) == 0 {
		return domain.IndexStatus{}, false, nil
	}
	return statuses[0], true, nil
}

// CreateSearchIndex creates a search index from the descriptor. Rejection by
// the store surfaces as domain.ErrIndexCreation.
func (s *Store) CreateSearchIndex(ctx context.Context, desc domain.IndexDescriptor) error {
	definition, indexType, err := indexDefinition(desc)
	if err != nil {
		return err
	}

	model := mongo.SearchIndexModel{
		Definition: definition,
		Options:    options.SearchIndexes().SetName(desc.Name).SetType(indexType),
	}

	start := time.Now()
	_, err = s.coll.SearchIndexes().CreateOne(ctx, model)
	observe("create_search_index", start, err)
	if err != nil {
		return fmt.Errorf("create search index %q: %v: %w", desc.Name, err, domain.ErrIndexCreation)
	}
	return nil
}

// indexDefinition translates a descriptor into the Atlas definition document.
// Lexical indexes map all fields dynamically; vector indexes declare a single
// vector field with its dimensionality and similarity metric.
func indexDefinition(desc domain.IndexDescriptor) (bson.D, string, error) {
	switch desc.Kind {
	case domain.IndexKindLexical:
		return bson.D{
			{Key: "mappings", Value: bson.D{
				{Key: "dynamic", Value: true},
			}},
		}, indexTypeSearch, nil

	case domain.IndexKindVector:
		if desc.Field == "" || desc.Dimensions <= 0 {
			return nil, "", fmt.Errorf("vector index %q needs a field and dimensionality: %w",
				desc.Name, domain.ErrIndexCreation)
		}
		similarity := desc.Similarity
		if similarity == "" {
			similarity = "cosine"
		}
		return bson.D{
			{Key: "fields", Value: bson.A{
				bson.D{
					{Key: "type", Value: "vector"},
					{Key: "path", Value: desc.Field},
					{Key: "numDimensions", Value: desc.Dimensions},
					{Key: "similarity", Value: similarity},
				},
			}},
		}, indexTypeVectorSearch, nil

	default:
		return nil, "", fmt.Errorf("unknown index kind %q: %w", desc.Kind, domain.ErrIndexCreation)
	}
}
