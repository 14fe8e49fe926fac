package geodata

import (
	"fmt"
	"math"
)

// NoData is the sentinel for an absent cell value. Absent means unmeasured,
// never zero.
var NoData = math.NaN()

// IsNoData reports whether v is the no-data sentinel.
func IsNoData(v float64) bool { return math.IsNaN(v) }

// Degraded-estimate marking. A cell whose kriging system was ill-conditioned
// falls back to a distance-weighted estimate; its variance is stored negated
// (offset by one so a zero variance still flags) to preserve the magnitude
// while carrying the flag through differencing.

// MarkDegraded encodes variance v as a degraded-estimate sentinel.
func MarkDegraded(v float64) float64 { return -(v + 1) }

// IsDegraded reports whether a variance value carries the degraded flag.
func IsDegraded(v float64) bool { return v < 0 }

// DegradedVariance recovers the variance magnitude from a degraded sentinel.
func DegradedVariance(v float64) float64 {
	if !IsDegraded(v) {
		return v
	}
	return -v - 1
}

// GridSpec describes grid geometry: lower-left origin, square cell size and
// row/column counts. Row 0 is the southernmost row. Two grids are comparable
// (differencable) only when they share an identical spec.
type GridSpec struct {
	OriginX  float64
	OriginY  float64
	CellSize float64
	Rows     int
	Cols     int
	CRS      string
}

// Validate checks the grid geometry invariants.
func (g GridSpec) Validate() error {
	if g.CellSize <= 0 {
		return fmt.Errorf("grid spec: cell size must be > 0, got %g", g.CellSize)
	}
	if g.Rows <= 0 || g.Cols <= 0 {
		return fmt.Errorf("grid spec: rows and cols must be > 0, got %dx%d", g.Rows, g.Cols)
	}
	return nil
}

// Equal reports whether two specs describe the same grid geometry.
func (g GridSpec) Equal(o GridSpec) bool {
	return g.OriginX == o.OriginX && g.OriginY == o.OriginY &&
		g.CellSize == o.CellSize && g.Rows == o.Rows && g.Cols == o.Cols &&
		g.CRS == o.CRS
}

// CellCenter returns the center coordinate of cell (row, col).
func (g GridSpec) CellCenter(row, col int) (x, y float64) {
	x = g.OriginX + (float64(col)+0.5)*g.CellSize
	y = g.OriginY + (float64(row)+0.5)*g.CellSize
	return x, y
}

// CellBounds returns the min/max corner coordinates of cell (row, col).
func (g GridSpec) CellBounds(row, col int) (minX, minY, maxX, maxY float64) {
	minX = g.OriginX + float64(col)*g.CellSize
	minY = g.OriginY + float64(row)*g.CellSize
	return minX, minY, minX + g.CellSize, minY + g.CellSize
}

// Index returns the flat row-major index of cell (row, col).
func (g GridSpec) Index(row, col int) int { return row*g.Cols + col }

// CellArea returns the area of one cell.
func (g GridSpec) CellArea() float64 { return g.CellSize * g.CellSize }

// Cell is one grid cell: an estimated value and its variance. Both may be
// no-data; variance carries the degraded-estimate flag (see MarkDegraded).
type Cell struct {
	Value    float64
	Variance float64
}

// NoDataCell returns a cell with both fields absent.
func NoDataCell() Cell { return Cell{Value: NoData, Variance: NoData} }

// DepthGrid is an interpolated peat depth surface. Cells is flat row-major,
// addressed through Spec.Index. Never mutated after the producing component
// returns it.
type DepthGrid struct {
	Spec  GridSpec
	Cells []Cell
}

// NewDepthGrid allocates a grid with every cell no-data.
func NewDepthGrid(spec GridSpec) *DepthGrid {
	cells := make([]Cell, spec.Rows*spec.Cols)
	for i := range cells {
		cells[i] = NoDataCell()
	}
	return &DepthGrid{Spec: spec, Cells: cells}
}

// At returns the cell at (row, col).
func (d *DepthGrid) At(row, col int) Cell { return d.Cells[d.Spec.Index(row, col)] }

// GridSpec returns the grid geometry.
func (d *DepthGrid) GridSpec() GridSpec { return d.Spec }

// CellAt returns the cell at flat index i.
func (d *DepthGrid) CellAt(i int) Cell { return d.Cells[i] }

// ChangeGrid is the signed depth change between two campaigns. Value is the
// after-minus-before delta, Variance the combined variance of the two inputs.
type ChangeGrid struct {
	Spec  GridSpec
	Cells []Cell
}

// At returns the cell at (row, col).
func (c *ChangeGrid) At(row, col int) Cell { return c.Cells[c.Spec.Index(row, col)] }

// GridSpec returns the grid geometry.
func (c *ChangeGrid) GridSpec() GridSpec { return c.Spec }

// CellAt returns the cell at flat index i.
func (c *ChangeGrid) CellAt(i int) Cell { return c.Cells[i] }

// Volume confidence qualifiers.
const (
	ConfidenceNominal = "nominal"
	ConfidenceLow     = "low"
)

// VolumeReport aggregates a ChangeGrid into a net peat volume change.
// Positive = net gain, negative = net loss.
type VolumeReport struct {
	Aggregate     float64 // volume change in cubic units of the CRS
	CellCount     int     // total cells considered
	NoDataCount   int     // cells excluded as no-data
	DegradedCount int     // valid cells built from degraded estimates
	Confidence    string  // ConfidenceNominal or ConfidenceLow
}
