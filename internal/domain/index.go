package domain

// IndexKind distinguishes the two Atlas search index flavors.
type IndexKind string

const (
	// IndexKindLexical is a full-text index with dynamic field mappings.
	IndexKindLexical IndexKind = "lexical"
	// IndexKindVector is an ANN index over a single vector field.
	IndexKindVector IndexKind = "vector"
)

// IndexDescriptor declares a named search index. Creation is idempotent per
// name: an existence check precedes every create.
type IndexDescriptor struct {
	Name       string
	Kind       IndexKind
	Field      string // vector kind only
	Dimensions int    // vector kind only
	Similarity string // vector kind only, e.g. "cosine"
}

// IndexStatus is one observation of an index build, as reported by the store.
type IndexStatus struct {
	Name      string `bson:"name"`
	Status    string `bson:"status"`
	Queryable bool   `bson:"queryable"`
}

// Ready reports whether the index can serve queries.
func (s IndexStatus) Ready() bool {
	return s.Status == "READY" || s.Queryable
}
