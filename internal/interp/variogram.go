package interp

import "math"

// VariogramModel is the shape of the fitted semivariance model.
type VariogramModel string

const (
	Spherical   VariogramModel = "spherical"
	Exponential VariogramModel = "exponential"
	Gaussian    VariogramModel = "gaussian"
)

// gamma returns the semivariance at lag distance h for the model with the
// given range, sill and nugget. Semivariance at zero lag is zero by
// definition; the nugget applies from the first nonzero lag.
func (m VariogramModel) gamma(h, rng, sill, nugget float64) float64 {
	if h == 0 {
		return 0
	}

	g := nugget
	switch m {
	case Spherical:
		if h < rng {
			r := h / rng
			g += sill * (1.5*r - 0.5*r*r*r)
		} else {
			g += sill
		}
	case Exponential:
		g += sill * (1 - math.Exp(-3*h/rng))
	case Gaussian:
		g += sill * (1 - math.Exp(-3*h*h/(rng*rng)))
	}
	return g
}
