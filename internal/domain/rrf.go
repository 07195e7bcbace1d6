package domain

// RRFDamping is the Reciprocal Rank Fusion constant (standard value from
// Cormack et al. 2009). The engine fuses with the same constant; the
// arithmetic here backs the score breakdown shown to the operator.
const RRFDamping = 60

// RRFScore returns one pipeline's contribution, weight / (k + rank).
// Rank is 1-based; a non-positive rank contributes zero.
func RRFScore(weight float64, rank int) float64 {
	if rank <= 0 {
		return 0
	}
	return weight / float64(RRFDamping+rank)
}

// FuseScore sums per-pipeline contributions into a fused score. A document
// absent from a pipeline simply has no entry for it.
func FuseScore(contributions []PipelineScore) float64 {
	var score float64
	for _, c := range contributions {
		score += RRFScore(c.Weight, c.Rank)
	}
	return score
}
