// Package main provides a synthetic survey campaign generator for exercising
// the interpolation and differencing pipeline without field data.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/ctessum/geom"

	"github.com/joekbullard/PeatlandSpatial/internal/survey"
)

// DepthEmulator generates synthetic peat depths: a smooth dome centered on
// the site, plus correlated-looking ripple and white noise. Depths bottom
// out at zero at the site edge.
type DepthEmulator struct {
	centerX  float64
	centerY  float64
	radius   float64
	maxDepth float64
	noise    float64
	rng      *rand.Rand
}

func NewDepthEmulator(originX, originY, width, height, maxDepth, noise float64, seed int64) *DepthEmulator {
	return &DepthEmulator{
		centerX:  originX + width/2,
		centerY:  originY + height/2,
		radius:   math.Hypot(width, height) / 2,
		maxDepth: maxDepth,
		noise:    noise,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (e *DepthEmulator) DepthAt(x, y float64) float64 {
	d := math.Hypot(x-e.centerX, y-e.centerY) / e.radius
	dome := e.maxDepth * math.Max(0, 1-d*d)
	ripple := 0.15 * e.maxDepth * math.Sin(x/180) * math.Cos(y/140)
	depth := dome + ripple + (e.rng.Float64()-0.5)*2*e.noise
	return math.Max(0, depth)
}

func main() {
	originX := flag.Float64("origin-x", 350000, "Site lower-left easting (m)")
	originY := flag.Float64("origin-y", 150000, "Site lower-left northing (m)")
	width := flag.Float64("width", 1000, "Site width (m)")
	height := flag.Float64("height", 800, "Site height (m)")
	spacing := flag.Int("spacing", 100, "Survey lattice spacing: 100 or 50 (m)")
	maxDepth := flag.Float64("max-depth", 4.5, "Peak peat depth at the dome center (m)")
	noise := flag.Float64("noise", 0.1, "Probe noise half-range (m)")
	refusal := flag.Float64("refusal", 0.05, "Fraction of probes recording no depth")
	subsidence := flag.Float64("subsidence", 0, "Uniform depth loss applied to every probe (m), for follow-up campaigns")
	date := flag.String("date", "2026-08-25", "Campaign date written on every record")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	boundary := geom.Polygon{{
		{X: *originX, Y: *originY},
		{X: *originX + *width, Y: *originY},
		{X: *originX + *width, Y: *originY + *height},
		{X: *originX, Y: *originY + *height},
		{X: *originX, Y: *originY},
	}}

	points, err := survey.GeneratePoints(
		survey.Site{Boundary: boundary},
		survey.Params{Spacing: *spacing},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate survey lattice: %v\n", err)
		os.Exit(1)
	}

	emulator := NewDepthEmulator(*originX, *originY, *width, *height, *maxDepth, *noise, *seed)

	fmt.Println("record_id,easting,northing,depth,date,weight")
	for _, p := range points {
		if emulator.rng.Float64() < *refusal {
			fmt.Printf("%d,%.1f,%.1f,,%s,1\n", p.ID, p.X, p.Y, *date)
			continue
		}
		depth := math.Max(0, emulator.DepthAt(p.X, p.Y)-*subsidence)
		fmt.Printf("%d,%.1f,%.1f,%.2f,%s,1\n", p.ID, p.X, p.Y, depth, *date)
	}
}
