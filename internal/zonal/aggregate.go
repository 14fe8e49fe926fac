// Package zonal summarizes grid products per management zone: area-weighted
// statistics over depth or change surfaces plus the zone's assigned
// condition class.
package zonal

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
)

// Grid is the surface capability the aggregator consumes; both DepthGrid
// and ChangeGrid satisfy it.
type Grid interface {
	GridSpec() geodata.GridSpec
	CellAt(i int) geodata.Cell
}

// DefaultCoverageThreshold flags a zone when less than half of its covered
// area carries valid cell data.
const DefaultCoverageThreshold = 0.5

// Options tunes zone summarization.
type Options struct {
	// CoverageThreshold is the valid-cell fraction below which the summary
	// carries the InsufficientCoverage flag. Zero means the default 0.5.
	CoverageThreshold float64
}

// ZoneSummary is the per-zone aggregation result. A flagged summary still
// reports its mean; the flag tells the reader not to trust a value built
// from too few samples.
type ZoneSummary struct {
	ZoneID               string
	AreaWeightedMean     float64 // no-data when nothing valid intersects the zone
	ValidCellFraction    float64
	AssignedClass        geodata.ConditionClass
	InsufficientCoverage bool
}

// Aggregate computes the area-weighted summary of grid over one zone. Each
// cell contributes proportionally to the fraction of its area inside the
// zone polygon; partial-overlap cells contribute partially, never
// all-or-nothing. classMap may be nil when no classification ran.
func Aggregate(zone *geodata.Zone, grid Grid, classMap map[string]geodata.ConditionClass, opts Options) (*ZoneSummary, error) {
	if zone == nil || zone.Polygon == nil {
		return nil, fmt.Errorf("zonal: zone without geometry")
	}
	if grid == nil {
		return nil, fmt.Errorf("zonal: nil grid")
	}
	threshold := opts.CoverageThreshold
	if threshold == 0 {
		threshold = DefaultCoverageThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("zonal: coverage threshold must be in [0,1], got %g", threshold)
	}

	spec := grid.GridSpec()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	r0, r1, c0, c1 := cellRange(spec, zone.Polygon.Bounds())

	// Fixed row-major traversal keeps the accumulation order deterministic.
	cellArea := spec.CellArea()
	coveredWeight := 0.0
	validWeight := 0.0
	weightedSum := 0.0
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			inter := zone.Polygon.Intersection(cellPolygon(spec, row, col))
			if inter == nil {
				continue
			}
			w := inter.Area() / cellArea
			if w <= 0 {
				continue
			}
			coveredWeight += w
			cell := grid.CellAt(spec.Index(row, col))
			if geodata.IsNoData(cell.Value) {
				continue
			}
			validWeight += w
			weightedSum += w * cell.Value
		}
	}

	summary := &ZoneSummary{
		ZoneID:           zone.ID,
		AreaWeightedMean: geodata.NoData,
	}
	if classMap != nil {
		summary.AssignedClass = classMap[zone.ID]
	}
	if coveredWeight == 0 {
		summary.InsufficientCoverage = true
		return summary, nil
	}
	summary.ValidCellFraction = validWeight / coveredWeight
	if validWeight > 0 {
		summary.AreaWeightedMean = weightedSum / validWeight
	}
	if summary.ValidCellFraction < threshold {
		summary.InsufficientCoverage = true
	}
	return summary, nil
}

// AggregateAll summarizes every zone of a set against one grid.
func AggregateAll(zones *geodata.ZoneSet, grid Grid, classMap map[string]geodata.ConditionClass, opts Options) ([]*ZoneSummary, error) {
	if err := zones.Validate(); err != nil {
		return nil, err
	}
	out := make([]*ZoneSummary, 0, len(zones.Zones))
	for i := range zones.Zones {
		s, err := Aggregate(&zones.Zones[i], grid, classMap, opts)
		if err != nil {
			return nil, fmt.Errorf("zonal: zone %q: %w", zones.Zones[i].ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// ClassDistribution counts assigned classes across summaries.
func ClassDistribution(summaries []*ZoneSummary) map[geodata.ConditionClass]int {
	dist := make(map[geodata.ConditionClass]int)
	for _, s := range summaries {
		if s.AssignedClass != "" {
			dist[s.AssignedClass]++
		}
	}
	return dist
}

// cellRange clamps a bounding box to the grid's cell index space.
func cellRange(spec geodata.GridSpec, b *geom.Bounds) (r0, r1, c0, c1 int) {
	c0 = int(math.Floor((b.Min.X - spec.OriginX) / spec.CellSize))
	c1 = int(math.Floor((b.Max.X - spec.OriginX) / spec.CellSize))
	r0 = int(math.Floor((b.Min.Y - spec.OriginY) / spec.CellSize))
	r1 = int(math.Floor((b.Max.Y - spec.OriginY) / spec.CellSize))
	c0 = max(c0, 0)
	r0 = max(r0, 0)
	c1 = min(c1, spec.Cols-1)
	r1 = min(r1, spec.Rows-1)
	return r0, r1, c0, c1
}

// cellPolygon returns the cell rectangle as a polygon ring.
func cellPolygon(spec geodata.GridSpec, row, col int) geom.Polygon {
	minX, minY, maxX, maxY := spec.CellBounds(row, col)
	return geom.Polygon{{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}}
}
