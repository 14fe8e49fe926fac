package interp

import (
	"math"
	"testing"

	"github.com/joekbullard/PeatlandSpatial/internal/spatial"
)

func krigingParams() Params {
	p := DefaultParams()
	p.Estimator = EstimatorGeostatistical
	p.Range = 300
	p.Sill = 1
	return p
}

func TestKrigingConstantField(t *testing.T) {
	// The unbiasedness constraint forces weights summing to one, so a
	// constant depth field must come back exactly constant.
	nbrs := []spatial.Neighbor{
		neighbor(1, 0, 0, 2.0, 50),
		neighbor(2, 100, 0, 2.0, 60),
		neighbor(3, 0, 100, 2.0, 70),
		neighbor(4, 100, 100, 2.0, 90),
	}
	est := newKrigingEstimator(krigingParams())
	value, variance, degraded := est.Estimate(50, 40, nbrs)

	if math.Abs(value-2.0) > 1e-9 {
		t.Errorf("constant field: expected 2.0, got %.9f", value)
	}
	if variance < 0 {
		t.Errorf("kriging variance negative: %g", variance)
	}
	if degraded {
		t.Error("well-conditioned system flagged degraded")
	}
}

func TestKrigingVarianceGrowsWithDistance(t *testing.T) {
	nbrs := func(dist float64) []spatial.Neighbor {
		return []spatial.Neighbor{
			neighbor(1, 0, 0, 1.0, dist),
			neighbor(2, 100, 0, 2.0, dist+20),
			neighbor(3, 0, 100, 1.5, dist+40),
		}
	}
	est := newKrigingEstimator(krigingParams())

	_, nearVar, _ := est.Estimate(10, 10, nbrs(20))
	_, farVar, _ := est.Estimate(200, 200, nbrs(180))
	if farVar <= nearVar {
		t.Errorf("variance should grow with neighborhood distance: near %g, far %g", nearVar, farVar)
	}
}

func TestKrigingExactHit(t *testing.T) {
	nbrs := []spatial.Neighbor{
		neighbor(1, 50, 50, 4.2, 0),
		neighbor(2, 150, 50, 1.0, 100),
	}
	est := newKrigingEstimator(krigingParams())
	value, variance, degraded := est.Estimate(50, 50, nbrs)
	if value != 4.2 || variance != 0 || degraded {
		t.Errorf("exact hit: expected (4.2, 0, false), got (%g, %g, %v)", value, variance, degraded)
	}
}

func TestKrigingIllConditionedFallsBack(t *testing.T) {
	// Two coincident neighbors make the covariance system singular. The
	// estimator must degrade to distance weighting, not fail the cell.
	nbrs := []spatial.Neighbor{
		neighbor(1, 10, 0, 2.0, 10),
		neighbor(2, 10, 0, 2.0, 10), // duplicate probe location
		neighbor(3, 0, 20, 3.0, 20),
	}
	est := newKrigingEstimator(krigingParams())
	value, _, degraded := est.Estimate(0, 0, nbrs)

	if !degraded {
		t.Fatal("singular system not flagged degraded")
	}
	idwValue, _, _ := est.fallback.Estimate(0, 0, nbrs)
	if value != idwValue {
		t.Errorf("fallback value %g differs from distance-weighted %g", value, idwValue)
	}
}

func TestKrigingTightThresholdForcesFallback(t *testing.T) {
	p := krigingParams()
	p.IllConditionThreshold = 1e-6 // everything is ill-conditioned under this
	nbrs := []spatial.Neighbor{
		neighbor(1, 0, 0, 1.0, 50),
		neighbor(2, 100, 0, 2.0, 60),
		neighbor(3, 0, 100, 3.0, 70),
	}
	_, _, degraded := newKrigingEstimator(p).Estimate(50, 40, nbrs)
	if !degraded {
		t.Error("expected degraded estimate under tight condition threshold")
	}
}
