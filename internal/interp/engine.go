package interp

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
	"github.com/joekbullard/PeatlandSpatial/internal/spatial"
)

// Interpolate produces a depth surface covering spec from one survey
// campaign. Cells with too few neighbors inside the search radius are
// no-data; kriging cells whose covariance system is unusable carry a
// degraded-estimate flag in their variance. The call fails wholesale only on
// an empty campaign, invalid parameters, or a coordinate system mismatch
// between the campaign and the grid.
//
// The grid is filled by row bands over a goroutine pool. Each band worker
// writes only its own cells and every per-cell accumulation follows the
// index's deterministic neighbor ordering, so the result is bit-identical
// for any worker count.
func Interpolate(set *geodata.SurveySet, index *spatial.Index, spec geodata.GridSpec, params Params) (*geodata.DepthGrid, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if index == nil {
		return nil, fmt.Errorf("interp: nil spatial index")
	}
	if spec.CRS != set.CRS {
		return nil, fmt.Errorf("interp: grid is %q but survey is %q: %w",
			spec.CRS, set.CRS, geodata.ErrCoordinateSystemMismatch)
	}

	est := newEstimator(params)
	grid := geodata.NewDepthGrid(spec)

	workers := params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > spec.Rows {
		workers = spec.Rows
	}

	if workers <= 1 {
		fillRows(grid, 0, spec.Rows, index, est, params)
		return grid, nil
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		fillRows(grid, 0, spec.Rows, index, est, params)
		return grid, nil
	}
	defer pool.Release()

	var wg sync.WaitGroup
	band := (spec.Rows + workers - 1) / workers
	for start := 0; start < spec.Rows; start += band {
		r0, r1 := start, min(start+band, spec.Rows)
		wg.Add(1)
		task := func() {
			defer wg.Done()
			fillRows(grid, r0, r1, index, est, params)
		}
		if err := pool.Submit(task); err != nil {
			// Pool saturated or released; run the band inline.
			task()
		}
	}
	wg.Wait()
	return grid, nil
}

// newEstimator returns the configured estimator. The set is closed: exactly
// two variants exist and new ones are deliberate additions here, not
// extension points.
func newEstimator(p Params) Estimator {
	if p.Estimator == EstimatorGeostatistical {
		return newKrigingEstimator(p)
	}
	return newIDWEstimator(p)
}

// fillRows computes cells for rows [r0, r1). Workers share the estimator
// (stateless) and the index (immutable) and write disjoint cell ranges.
func fillRows(grid *geodata.DepthGrid, r0, r1 int, index *spatial.Index, est Estimator, params Params) {
	spec := grid.Spec
	for row := r0; row < r1; row++ {
		for col := 0; col < spec.Cols; col++ {
			grid.Cells[spec.Index(row, col)] = computeCell(spec, row, col, index, est, params)
		}
	}
}

// computeCell estimates one cell. Extrapolation is refused: a cell whose
// neighborhood inside the search radius is below the minimum is no-data.
func computeCell(spec geodata.GridSpec, row, col int, index *spatial.Index, est Estimator, params Params) geodata.Cell {
	cx, cy := spec.CellCenter(row, col)
	nbrs := index.Within(cx, cy, params.SearchRadius)
	if len(nbrs) < params.MinNeighbors {
		return geodata.NoDataCell()
	}
	if len(nbrs) > params.MaxNeighbors {
		nbrs = nbrs[:params.MaxNeighbors]
	}
	value, variance, degraded := est.Estimate(cx, cy, nbrs)
	if degraded {
		variance = geodata.MarkDegraded(variance)
	}
	return geodata.Cell{Value: value, Variance: variance}
}
