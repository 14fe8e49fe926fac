package interp

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/joekbullard/PeatlandSpatial/internal/spatial"
)

// exactHitDistance is the distance below which a query location is treated as
// coincident with a survey point and the measured depth is returned directly.
const exactHitDistance = 1e-9

// Estimator is the shared capability of the two interpolation variants:
// given a neighborhood, produce a depth value and a variance for a query
// location. degraded marks an estimate produced by a fallback path.
type Estimator interface {
	Estimate(x, y float64, nbrs []spatial.Neighbor) (value, variance float64, degraded bool)
}

// idwEstimator implements inverse distance weighting. The variance it
// reports is the weighted sample variance of the neighborhood depths, a
// confidence proxy rather than a true prediction variance.
type idwEstimator struct {
	power float64
}

func newIDWEstimator(p Params) *idwEstimator {
	return &idwEstimator{power: p.Power}
}

// Estimate computes the weighted depth estimate over nbrs. Neighbor order is
// the index's deterministic ordering, so the accumulation is reproducible.
func (e *idwEstimator) Estimate(x, y float64, nbrs []spatial.Neighbor) (float64, float64, bool) {
	if hit, ok := exactHit(nbrs); ok {
		return hit, 0, false
	}

	depths := make([]float64, len(nbrs))
	weights := make([]float64, len(nbrs))
	sum := 0.0
	for i, n := range nbrs {
		depths[i] = *n.Point.Depth
		weights[i] = n.Point.Weight / math.Pow(n.Distance, e.power)
		sum += weights[i]
	}
	// Normalize weights to sum to n so the weighted sample variance divisor
	// (sum of weights minus one) behaves like the unweighted n-1.
	scale := float64(len(nbrs)) / sum
	for i := range weights {
		weights[i] *= scale
	}

	value := stat.Mean(depths, weights)
	variance := 0.0
	if len(nbrs) > 1 {
		variance = stat.Variance(depths, weights)
	}
	return value, variance, false
}

// exactHit reports the measured depth when the nearest neighbor coincides
// with the query location.
func exactHit(nbrs []spatial.Neighbor) (float64, bool) {
	if len(nbrs) > 0 && nbrs[0].Distance < exactHitDistance {
		return *nbrs[0].Point.Depth, true
	}
	return 0, false
}
