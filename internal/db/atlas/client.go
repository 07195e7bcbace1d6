// Package atlas wraps the MongoDB driver for the one database, one
// collection this tool manages. Repositories consume it through narrow
// interfaces; everything MongoDB-specific (wire formats, index definitions,
// command errors) stays here.
package atlas

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/skald-io/rankfuse/internal/domain"
	"github.com/skald-io/rankfuse/internal/metrics"
)

// Config holds connection parameters for the Atlas store.
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Store is a connected handle on the target collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	coll   *mongo.Collection
}

// NewStore connects to Atlas and verifies liveness with a ping. An
// unreachable deployment surfaces as domain.ErrConnectivity.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %v: %w", err, domain.ErrConnectivity)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %v: %w", err, domain.ErrConnectivity)
	}

	db := client.Database(cfg.Database)
	return &Store{
		client: client,
		db:     db,
		coll:   db.Collection(cfg.Collection),
	}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the connection pool. Safe on every control path.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

// CollectionName returns the managed collection's name.
func (s *Store) CollectionName() string {
	return s.coll.Name()
}

// observe records one store operation in the Atlas metrics.
func observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.AtlasOperationsTotal.WithLabelValues(op, status).Inc()
	metrics.AtlasOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
