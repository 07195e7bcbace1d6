package domain

import "errors"

var (
	// ErrConfiguration signals missing or invalid settings.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrConnectivity signals an unreachable data store at startup.
	ErrConnectivity = errors.New("store unreachable")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrIndexCreation signals a search-index definition rejected by the store.
	ErrIndexCreation = errors.New("index creation rejected")
	// ErrIndexTimeout signals that an index did not become queryable in time.
	ErrIndexTimeout = errors.New("index readiness timeout")
	// ErrQueryExecution signals a composite query rejected by the engine,
	// usually a version-capability mismatch rather than a caller bug.
	ErrQueryExecution = errors.New("query execution rejected")
)
