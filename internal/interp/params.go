// Package interp produces interpolated peat depth surfaces from survey
// campaigns. Two estimators are available behind a shared capability:
// inverse distance weighting and ordinary kriging with a fitted variogram.
// Grid cells are computed independently and in parallel; output is
// bit-identical for any worker count.
package interp

import "fmt"

// EstimatorChoice selects the interpolation estimator.
type EstimatorChoice string

const (
	EstimatorDistanceWeighted EstimatorChoice = "distanceWeighted"
	EstimatorGeostatistical   EstimatorChoice = "geostatistical"
)

// Params configures an interpolation run. Zero values are filled from
// DefaultParams by Validate.
type Params struct {
	Estimator EstimatorChoice

	// Distance-weighted estimator.
	Power float64 // distance decay exponent, >= 1

	// Geostatistical estimator.
	Model                 VariogramModel
	Range                 float64
	Sill                  float64
	Nugget                float64
	IllConditionThreshold float64 // condition number above which kriging falls back per cell

	// Neighborhood selection, shared by both estimators.
	SearchRadius float64
	MinNeighbors int // below this the cell is no-data, never guessed
	MaxNeighbors int

	// Workers caps the interpolation goroutine pool; 0 = GOMAXPROCS.
	Workers int
}

// DefaultParams returns the provisional domain defaults. Callers are expected
// to override per site; these values suit 100 m survey lattices.
func DefaultParams() Params {
	return Params{
		Estimator:             EstimatorDistanceWeighted,
		Power:                 2,
		Model:                 Spherical,
		Range:                 300,
		Sill:                  1,
		Nugget:                0,
		IllConditionThreshold: 1e10,
		SearchRadius:          250,
		MinNeighbors:          3,
		MaxNeighbors:          12,
	}
}

// Validate fills unset fields from defaults and rejects out-of-range values.
func (p *Params) Validate() error {
	def := DefaultParams()
	if p.Estimator == "" {
		p.Estimator = def.Estimator
	}
	if p.Estimator != EstimatorDistanceWeighted && p.Estimator != EstimatorGeostatistical {
		return fmt.Errorf("interp: unknown estimator %q", p.Estimator)
	}
	if p.Power == 0 {
		p.Power = def.Power
	}
	if p.Power < 1 {
		return fmt.Errorf("interp: power must be >= 1, got %g", p.Power)
	}
	if p.Model == "" {
		p.Model = def.Model
	}
	if p.Model != Spherical && p.Model != Exponential && p.Model != Gaussian {
		return fmt.Errorf("interp: unknown variogram model %q", p.Model)
	}
	if p.IllConditionThreshold == 0 {
		p.IllConditionThreshold = def.IllConditionThreshold
	}
	if p.IllConditionThreshold <= 0 {
		return fmt.Errorf("interp: ill-condition threshold must be > 0, got %g", p.IllConditionThreshold)
	}
	if p.SearchRadius == 0 {
		p.SearchRadius = def.SearchRadius
	}
	if p.SearchRadius <= 0 {
		return fmt.Errorf("interp: search radius must be > 0, got %g", p.SearchRadius)
	}
	if p.MinNeighbors == 0 {
		p.MinNeighbors = def.MinNeighbors
	}
	if p.MinNeighbors < 1 {
		return fmt.Errorf("interp: min neighbors must be >= 1, got %d", p.MinNeighbors)
	}
	if p.MaxNeighbors == 0 {
		p.MaxNeighbors = def.MaxNeighbors
	}
	if p.MaxNeighbors < p.MinNeighbors {
		return fmt.Errorf("interp: max neighbors %d below min neighbors %d", p.MaxNeighbors, p.MinNeighbors)
	}
	if p.Estimator == EstimatorGeostatistical {
		if p.Range <= 0 {
			return fmt.Errorf("interp: variogram range must be > 0, got %g", p.Range)
		}
		if p.Sill <= 0 {
			return fmt.Errorf("interp: variogram sill must be > 0, got %g", p.Sill)
		}
		if p.Nugget < 0 {
			return fmt.Errorf("interp: variogram nugget must be >= 0, got %g", p.Nugget)
		}
	}
	if p.Workers < 0 {
		return fmt.Errorf("interp: workers must be >= 0, got %d", p.Workers)
	}
	return nil
}
