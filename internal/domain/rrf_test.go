package domain

import (
	"math"
	"testing"
)

func TestRRFScore_Arithmetic(t *testing.T) {
	// rank 1 in pipeline A (weight 0.7) + rank 3 in pipeline B (weight 0.3)
	want := 0.7/(60.0+1.0) + 0.3/(60.0+3.0)

	got := FuseScore([]PipelineScore{
		{Pipeline: "vectorPipeline", Rank: 1, Weight: 0.7},
		{Pipeline: "fullTextPipeline", Rank: 3, Weight: 0.3},
	})

	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("fused score = %v, want %v", got, want)
	}
}

func TestRRFScore_SinglePipeline(t *testing.T) {
	got := FuseScore([]PipelineScore{{Pipeline: "fullTextPipeline", Rank: 2, Weight: 0.3}})
	want := 0.3 / 62.0
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("fused score = %v, want %v", got, want)
	}
}

func TestRRFScore_InvalidRank(t *testing.T) {
	if s := RRFScore(0.7, 0); s != 0 {
		t.Fatalf("rank 0 should contribute 0, got %v", s)
	}
	if s := RRFScore(0.7, -1); s != 0 {
		t.Fatalf("negative rank should contribute 0, got %v", s)
	}
}

func TestRRFScore_RankMonotonicity(t *testing.T) {
	prev := math.Inf(1)
	for rank := 1; rank <= 20; rank++ {
		s := RRFScore(1.0, rank)
		if s >= prev {
			t.Fatalf("score at rank %d (%v) not smaller than rank %d (%v)", rank, s, rank-1, prev)
		}
		prev = s
	}
}
