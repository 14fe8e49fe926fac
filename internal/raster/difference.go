// Package raster derives change products from pairs of depth surfaces:
// a signed per-cell change grid with propagated uncertainty and an aggregate
// volume report.
package raster

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
)

// Options tunes volume report qualification.
type Options struct {
	// LowConfidenceFraction is the no-data-or-degraded cell fraction above
	// which the report is qualified "low". Zero means the default 0.20.
	LowConfidenceFraction float64
}

// DefaultLowConfidenceFraction qualifies a report "low" when more than a
// fifth of the cells contributed nothing or only degraded estimates.
const DefaultLowConfidenceFraction = 0.20

// Difference computes after-minus-before change between two surfaces of one
// site. Both grids must share an identical spec. No-data is absorbing: a
// cell missing from either input is missing from the output, never treated
// as zero. Combined variance is the sum of the input variances, which
// assumes the two campaigns' errors are independent; that is a simplifying
// design choice, not a claim about field correlation.
func Difference(before, after *geodata.DepthGrid, cellArea float64, opts Options) (*geodata.ChangeGrid, *geodata.VolumeReport, error) {
	if before == nil || after == nil {
		return nil, nil, fmt.Errorf("raster: nil input grid")
	}
	if !before.Spec.Equal(after.Spec) {
		return nil, nil, fmt.Errorf("raster: %dx%d vs %dx%d: %w",
			before.Spec.Rows, before.Spec.Cols, after.Spec.Rows, after.Spec.Cols,
			geodata.ErrGridMismatch)
	}
	if cellArea <= 0 {
		return nil, nil, fmt.Errorf("raster: cell area must be > 0, got %g", cellArea)
	}
	lowFraction := opts.LowConfidenceFraction
	if lowFraction == 0 {
		lowFraction = DefaultLowConfidenceFraction
	}

	total := len(before.Cells)
	change := &geodata.ChangeGrid{
		Spec:  before.Spec,
		Cells: make([]geodata.Cell, total),
	}

	// Deltas are collected in cell order and summed once, so the aggregate
	// is independent of any future parallelization of this loop.
	deltas := make([]float64, 0, total)
	noData := 0
	degraded := 0
	for i := 0; i < total; i++ {
		b, a := before.Cells[i], after.Cells[i]
		if geodata.IsNoData(b.Value) || geodata.IsNoData(a.Value) {
			change.Cells[i] = geodata.NoDataCell()
			noData++
			continue
		}
		if geodata.IsDegraded(b.Variance) || geodata.IsDegraded(a.Variance) {
			degraded++
		}
		combined := geodata.DegradedVariance(b.Variance) + geodata.DegradedVariance(a.Variance)
		delta := a.Value - b.Value
		change.Cells[i] = geodata.Cell{Value: delta, Variance: combined}
		deltas = append(deltas, delta*cellArea)
	}

	report := &geodata.VolumeReport{
		Aggregate:     floats.Sum(deltas),
		CellCount:     total,
		NoDataCount:   noData,
		DegradedCount: degraded,
		Confidence:    geodata.ConfidenceNominal,
	}
	if total > 0 && float64(noData+degraded)/float64(total) > lowFraction {
		report.Confidence = geodata.ConfidenceLow
	}
	return change, report, nil
}
