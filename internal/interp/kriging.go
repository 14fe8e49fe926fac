package interp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/joekbullard/PeatlandSpatial/internal/spatial"
)

// krigingEstimator implements ordinary kriging: weights come from solving
// the variogram covariance system with a Lagrange unbiasedness row, and the
// reported variance is the kriging variance, exact under the model
// assumptions. Ill-conditioned or singular neighborhoods fall back to the
// distance-weighted estimate and are flagged degraded; one bad neighborhood
// never fails the grid.
type krigingEstimator struct {
	model         VariogramModel
	rng           float64
	sill          float64
	nugget        float64
	condThreshold float64
	fallback      *idwEstimator
}

func newKrigingEstimator(p Params) *krigingEstimator {
	return &krigingEstimator{
		model:         p.Model,
		rng:           p.Range,
		sill:          p.Sill,
		nugget:        p.Nugget,
		condThreshold: p.IllConditionThreshold,
		fallback:      newIDWEstimator(p),
	}
}

// Estimate solves the ordinary kriging system for the neighborhood.
//
// The system is (n+1)x(n+1): semivariances between neighbor pairs, bordered
// by the unbiasedness constraint row/column, with the neighbor-to-query
// semivariances on the right-hand side. The last solution component is the
// Lagrange multiplier.
func (e *krigingEstimator) Estimate(x, y float64, nbrs []spatial.Neighbor) (float64, float64, bool) {
	if hit, ok := exactHit(nbrs); ok {
		return hit, 0, false
	}

	n := len(nbrs)
	a := mat.NewDense(n+1, n+1, nil)
	b := mat.NewVecDense(n+1, nil)
	for i := 0; i < n; i++ {
		pi := nbrs[i].Point
		for j := 0; j < n; j++ {
			pj := nbrs[j].Point
			h := hypot(pi.X-pj.X, pi.Y-pj.Y)
			a.Set(i, j, e.model.gamma(h, e.rng, e.sill, e.nugget))
		}
		a.Set(i, n, 1)
		a.Set(n, i, 1)
		b.SetVec(i, e.model.gamma(nbrs[i].Distance, e.rng, e.sill, e.nugget))
	}
	a.Set(n, n, 0)
	b.SetVec(n, 1)

	if cond := mat.Cond(a, 1); cond > e.condThreshold {
		return fallbackEstimate(e.fallback, x, y, nbrs)
	}

	var lu mat.LU
	lu.Factorize(a)
	w := mat.NewVecDense(n+1, nil)
	if err := lu.SolveVecTo(w, false, b); err != nil {
		return fallbackEstimate(e.fallback, x, y, nbrs)
	}

	value := 0.0
	variance := w.AtVec(n) // Lagrange multiplier
	for i := 0; i < n; i++ {
		value += w.AtVec(i) * *nbrs[i].Point.Depth
		variance += w.AtVec(i) * b.AtVec(i)
	}
	if variance < 0 {
		// Numerical noise; the true kriging variance is non-negative.
		variance = 0
	}
	return value, variance, false
}

func fallbackEstimate(idw *idwEstimator, x, y float64, nbrs []spatial.Neighbor) (float64, float64, bool) {
	v, variance, _ := idw.Estimate(x, y, nbrs)
	return v, variance, true
}

// hypot avoids math.Hypot's overflow guard; planar survey coordinates
// cannot reach magnitudes where it matters.
func hypot(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}
