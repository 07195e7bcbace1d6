// Package searchindex ensures the lexical and vector search indexes exist
// and waits for them to become queryable.
package searchindex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skald-io/rankfuse/internal/domain"
)

// store is the consumer interface for index management.
type store interface {
	ListSearchIndexNames(ctx context.Context) ([]string, error)
	CreateSearchIndex(ctx context.Context, desc domain.IndexDescriptor) error
	SearchIndexStatus(ctx context.Context, name string) (status domain.IndexStatus, found bool, err error)
}

// Provisioner creates missing search indexes and polls for readiness.
// Creation is idempotent per name: existing names are listed once and only
// the missing ones are created.
type Provisioner struct {
	store    store
	timeout  time.Duration
	interval time.Duration
	logger   *zap.Logger

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewProvisioner creates a provisioner with the given readiness timeout and
// poll interval.
func NewProvisioner(s store, timeout, interval time.Duration, logger *zap.Logger) *Provisioner {
	return &Provisioner{
		store:    s,
		timeout:  timeout,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Ensure creates every missing index from descs and blocks until each newly
// created index is queryable. Indexes that already exist are left untouched
// and not waited on.
func (p *Provisioner) Ensure(ctx context.Context, descs []domain.IndexDescriptor) error {
	names, err := p.store.ListSearchIndexNames(ctx)
	if err != nil {
		return fmt.Errorf("list existing indexes: %v: %w", err, domain.ErrIndexCreation)
	}

	existing := make(map[string]bool, len(names))
	for _, n := range names {
		existing[n] = true
	}

	for _, desc := range descs {
		if existing[desc.Name] {
			p.logger.Info("Search index already exists",
				zap.String("index", desc.Name),
				zap.String("kind", string(desc.Kind)),
			)
			continue
		}

		p.logger.Info("Creating search index",
			zap.String("index", desc.Name),
			zap.String("kind", string(desc.Kind)),
		)
		if err := p.store.CreateSearchIndex(ctx, desc); err != nil {
			return err
		}

		if err := p.WaitReady(ctx, desc.Name); err != nil {
			return err
		}
	}

	return nil
}

// WaitReady polls the index status until it reports READY or queryable, or
// the timeout elapses. Transient status-query failures are logged and treated
// as "not yet ready"; they consume the same timeout clock.
func (p *Provisioner) WaitReady(ctx context.Context, name string) error {
	p.logger.Info("Waiting for search index to become queryable",
		zap.String("index", name),
		zap.Duration("timeout", p.timeout),
	)

	deadline := p.now().Add(p.timeout)
	for p.now().Before(deadline) {
		status, found, err := p.store.SearchIndexStatus(ctx, name)
		switch {
		case err != nil:
			p.logger.Warn("Index status check failed, retrying",
				zap.String("index", name),
				zap.Error(err),
			)
		case found && status.Ready():
			p.logger.Info("Search index is ready",
				zap.String("index", name),
				zap.String("status", status.Status),
			)
			return nil
		}

		if err := p.sleep(ctx, p.interval); err != nil {
			return fmt.Errorf("wait for index %q: %w", name, err)
		}
	}

	return fmt.Errorf("index %q did not become ready within %s: %w", name, p.timeout, domain.ErrIndexTimeout)
}

// sleepCtx sleeps for d or returns early with the context error.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
