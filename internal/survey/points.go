// Package survey generates peat depth survey point lattices for a site,
// following the Peatland Code field protocol: points on a 100 m (optionally
// 50 m) grid aligned to the national grid, restricted to the assessment
// base, which is the site boundary minus non-peatland features and a
// watercourse corridor.
package survey

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
)

// Protocol lattice spacings in meters.
const (
	Spacing100 = 100
	Spacing50  = 50
)

// DefaultWatercourseBuffer is the corridor half-width around watercourses
// excluded from the assessment base, per protocol.
const DefaultWatercourseBuffer = 30.0

// Site describes the assessment area. Exclusions are non-peatland feature
// polygons (bare rock, tracks, forestry); Watercourses are stream and drain
// centerlines.
type Site struct {
	Boundary     geom.Polygonal
	Exclusions   []geom.Polygonal
	Watercourses [][]geom.Point
}

// Params configures lattice generation.
type Params struct {
	// Spacing is the lattice interval, Spacing100 or Spacing50.
	Spacing int
	// WatercourseBuffer is the exclusion corridor half-width in meters.
	// Zero means DefaultWatercourseBuffer.
	WatercourseBuffer float64
}

// GeneratePoints lays out survey points on the spacing lattice, aligned so
// every coordinate is a multiple of the spacing, keeping only points inside
// the boundary and outside every exclusion and watercourse corridor. Points
// that also sit on the coarse 100 m lattice are tagged spacing 100 even in
// a 50 m run, matching the protocol's nested-lattice attribute. Record IDs
// are assigned in scan order, south to north then west to east.
func GeneratePoints(site Site, params Params) ([]geodata.SurveyPoint, error) {
	if site.Boundary == nil {
		return nil, fmt.Errorf("survey: site without boundary: %w", geodata.ErrDegenerateInput)
	}
	if params.Spacing != Spacing100 && params.Spacing != Spacing50 {
		return nil, fmt.Errorf("survey: spacing must be %d or %d, got %d", Spacing100, Spacing50, params.Spacing)
	}
	buffer := params.WatercourseBuffer
	if buffer == 0 {
		buffer = DefaultWatercourseBuffer
	}
	if buffer < 0 {
		return nil, fmt.Errorf("survey: watercourse buffer must be >= 0, got %g", buffer)
	}

	b := site.Boundary.Bounds()
	spacing := float64(params.Spacing)
	startX := roundUp(b.Min.X, spacing)
	startY := roundUp(b.Min.Y, spacing)

	var points []geodata.SurveyPoint
	id := 1
	for y := startY; y < b.Max.Y; y += spacing {
		for x := startX; x < b.Max.X; x += spacing {
			p := geom.Point{X: x, Y: y}
			if p.Within(site.Boundary) != geom.Inside {
				continue
			}
			if excluded(p, site, buffer) {
				continue
			}
			sp := geodata.SurveyPoint{ID: id, X: x, Y: y, Spacing: params.Spacing, Weight: 1}
			if math.Mod(x, 100) == 0 && math.Mod(y, 100) == 0 {
				sp.Spacing = Spacing100
			}
			points = append(points, sp)
			id++
		}
	}
	return points, nil
}

// excluded reports whether a candidate point falls inside a non-peatland
// feature or within the watercourse corridor.
func excluded(p geom.Point, site Site, buffer float64) bool {
	for _, ex := range site.Exclusions {
		if ex != nil && p.Within(ex) == geom.Inside {
			return true
		}
	}
	if buffer > 0 {
		for _, line := range site.Watercourses {
			if polylineDistanceBelow(p, line, buffer) {
				return true
			}
		}
	}
	return false
}

// polylineDistanceBelow reports whether p lies within dist of the polyline.
func polylineDistanceBelow(p geom.Point, line []geom.Point, dist float64) bool {
	if len(line) == 1 {
		return math.Hypot(p.X-line[0].X, p.Y-line[0].Y) <= dist
	}
	for i := 0; i+1 < len(line); i++ {
		if pointSegmentDistance(p, line[i], line[i+1]) <= dist {
			return true
		}
	}
	return false
}

// pointSegmentDistance returns the distance from p to segment s0-s1.
func pointSegmentDistance(p, s0, s1 geom.Point) float64 {
	dx, dy := s1.X-s0.X, s1.Y-s0.Y
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((p.X-s0.X)*dx + (p.Y-s0.Y)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	return math.Hypot(p.X-(s0.X+t*dx), p.Y-(s0.Y+t*dy))
}

// roundUp returns the smallest multiple of step not below v.
func roundUp(v, step float64) float64 {
	return math.Ceil(v/step) * step
}
