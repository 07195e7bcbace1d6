package domain

import "fmt"

// Default limits for the composite query.
const (
	DefaultNumCandidates = 100
	DefaultPipelineLimit = 10
	DefaultLimit         = 5
)

// HybridRequest describes one $rankFusion query: a vector sub-pipeline, a
// lexical sub-pipeline and the fusion weights. Weights are caller-supplied
// constants; they need not sum to 1.
type HybridRequest struct {
	Query       string
	QueryVector []float32

	VectorIndex string
	TextIndex   string
	TextFields  []string

	NumCandidates int
	PipelineLimit int
	Limit         int

	VectorWeight float64
	TextWeight   float64

	ScoreDetails bool
}

// Normalize fills zero-valued limits with defaults.
func (r *HybridRequest) Normalize() {
	if r.NumCandidates <= 0 {
		r.NumCandidates = DefaultNumCandidates
	}
	if r.PipelineLimit <= 0 {
		r.PipelineLimit = DefaultPipelineLimit
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if len(r.TextFields) == 0 {
		r.TextFields = []string{"title", "plot"}
	}
}

// Validate checks the request before it is sent to the engine.
func (r *HybridRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query text is required: %w", ErrConfiguration)
	}
	if len(r.QueryVector) == 0 {
		return fmt.Errorf("query vector is required: %w", ErrConfiguration)
	}
	if r.VectorIndex == "" || r.TextIndex == "" {
		return fmt.Errorf("both index names are required: %w", ErrConfiguration)
	}
	if r.VectorWeight < 0 || r.TextWeight < 0 {
		return fmt.Errorf("fusion weights must be non-negative: %w", ErrConfiguration)
	}
	return nil
}

// PipelineScore is one sub-pipeline's contribution to a fused score.
type PipelineScore struct {
	Pipeline string  `bson:"inputPipelineName" json:"pipeline"`
	Rank     int     `bson:"rank"               json:"rank"`
	Weight   float64 `bson:"weight"             json:"weight"`
	Value    float64 `bson:"value"              json:"value"`
}

// HybridResult is one ranked document from the fused result list.
type HybridResult struct {
	Title         string          `json:"title"`
	Plot          string          `json:"plot"`
	Genre         string          `json:"genre,omitempty"`
	Score         float64         `json:"score"`
	Contributions []PipelineScore `json:"contributions,omitempty"`
}
