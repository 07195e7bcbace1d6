// Package hybrid builds and runs the $rankFusion composite query. The
// rank-fusion arithmetic itself executes inside the engine; this package
// only assembles the request and decodes the ranked response.
package hybrid

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/skald-io/rankfuse/internal/domain"
)

// Sub-pipeline names referenced by the combination weights and by the
// scoreDetails breakdown.
const (
	VectorPipeline   = "vectorPipeline"
	FullTextPipeline = "fullTextPipeline"
)

// store is the consumer interface for running aggregations.
type store interface {
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error
}

// Runner submits hybrid queries to the engine.
type Runner struct {
	store  store
	logger *zap.Logger
}

// NewRunner creates a query runner.
func NewRunner(s store, logger *zap.Logger) *Runner {
	return &Runner{store: s, logger: logger}
}

// fusedDocument is the projected shape of one $rankFusion result.
type fusedDocument struct {
	Title        string        `bson:"title"`
	Plot         string        `bson:"plot"`
	Genre        string        `bson:"genre"`
	Score        float64       `bson:"score"`
	ScoreDetails *scoreDetails `bson:"scoreDetails"`
}

type scoreDetails struct {
	Value   float64                `bson:"value"`
	Details []domain.PipelineScore `bson:"details"`
}

// Search runs one composite query and returns the fused, ranked results.
// Engine rejections (e.g. $rankFusion unsupported on the connected server
// version) surface as domain.ErrQueryExecution with the server error intact.
func (r *Runner) Search(ctx context.Context, req domain.HybridRequest) ([]domain.HybridResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pipeline := buildPipeline(req)

	r.logger.Info("Running hybrid search",
		zap.String("query", req.Query),
		zap.String("vector_index", req.VectorIndex),
		zap.String("text_index", req.TextIndex),
		zap.Float64("vector_weight", req.VectorWeight),
		zap.Float64("text_weight", req.TextWeight),
		zap.Int("limit", req.Limit),
	)

	var docs []fusedDocument
	if err := r.store.Aggregate(ctx, pipeline, &docs); err != nil {
		return nil, fmt.Errorf("hybrid query: %v: %w", err, domain.ErrQueryExecution)
	}

	results := make([]domain.HybridResult, len(docs))
	for i, doc := range docs {
		res := domain.HybridResult{
			Title: doc.Title,
			Plot:  doc.Plot,
			Genre: doc.Genre,
			Score: doc.Score,
		}
		if doc.ScoreDetails != nil {
			if res.Score == 0 {
				res.Score = doc.ScoreDetails.Value
			}
			res.Contributions = doc.ScoreDetails.Details
		}
		results[i] = res
	}
	return results, nil
}

// buildPipeline assembles the $rankFusion aggregation: a $vectorSearch
// sub-pipeline and a $search sub-pipeline, fused with the request weights,
// projected and truncated to the overall limit.
func buildPipeline(req domain.HybridRequest) mongo.Pipeline {
	vectorStage := bson.D{{Key: "$vectorSearch", Value: bson.D{
		{Key: "index", Value: req.VectorIndex},
		{Key: "path", Value: domain.VectorField},
		{Key: "queryVector", Value: req.QueryVector},
		{Key: "numCandidates", Value: req.NumCandidates},
		{Key: "limit", Value: req.PipelineLimit},
	}}}

	textStage := bson.D{{Key: "$search", Value: bson.D{
		{Key: "index", Value: req.TextIndex},
		{Key: "text", Value: bson.D{
			{Key: "query", Value: req.Query},
			{Key: "path", Value: req.TextFields},
		}},
	}}}

	projection := bson.D{
		{Key: "_id", Value: 0},
		{Key: "title", Value: 1},
		{Key: "plot", Value: 1},
		{Key: "genre", Value: 1},
		{Key: "score", Value: bson.D{{Key: "$meta", Value: "score"}}},
	}
	if req.ScoreDetails {
		projection = append(projection, bson.E{
			Key: "scoreDetails", Value: bson.D{{Key: "$meta", Value: "scoreDetails"}},
		})
	}

	return mongo.Pipeline{
		{{Key: "$rankFusion", Value: bson.D{
			{Key: "input", Value: bson.D{
				{Key: "pipelines", Value: bson.D{
					{Key: VectorPipeline, Value: mongo.Pipeline{vectorStage}},
					{Key: FullTextPipeline, Value: mongo.Pipeline{
						textStage,
						{{Key: "$limit", Value: req.PipelineLimit}},
					}},
				}},
			}},
			{Key: "combination", Value: bson.D{
				{Key: "weights", Value: bson.D{
					{Key: VectorPipeline, Value: req.VectorWeight},
					{Key: FullTextPipeline, Value: req.TextWeight},
				}},
			}},
			{Key: "scoreDetails", Value: req.ScoreDetails},
		}}},
		{{Key: "$project", Value: projection}},
		{{Key: "$limit", Value: req.Limit}},
	}
}
