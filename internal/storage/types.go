package storage

import (
	"time"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
	"github.com/joekbullard/PeatlandSpatial/internal/zonal"
)

// RunReport is one persisted pipeline run. Grid blobs are optional; a
// classification-only run stores neither.
type RunReport struct {
	ID        string
	CreatedAt time.Time
	Site      string
	Estimator string

	// Volume report fields, flattened for querying.
	VolumeAggregate float64
	CellCount       int
	NoDataCount     int
	DegradedCount   int
	Confidence      string

	Summaries  []*zonal.ZoneSummary
	DepthGrid  *GridBlob
	ChangeGrid *GridBlob
}

// ReportMeta is the listing view of a stored report.
type ReportMeta struct {
	ID         string
	CreatedAt  time.Time
	Site       string
	Estimator  string
	Confidence string
}

// GridBlob is the msgpack-encodable grid payload.
type GridBlob struct {
	Spec  geodata.GridSpec `msgpack:"spec"`
	Cells []geodata.Cell   `msgpack:"cells"`
}

// NewDepthBlob wraps a depth grid for storage.
func NewDepthBlob(g *geodata.DepthGrid) *GridBlob {
	if g == nil {
		return nil
	}
	return &GridBlob{Spec: g.Spec, Cells: g.Cells}
}

// NewChangeBlob wraps a change grid for storage.
func NewChangeBlob(g *geodata.ChangeGrid) *GridBlob {
	if g == nil {
		return nil
	}
	return &GridBlob{Spec: g.Spec, Cells: g.Cells}
}

// DepthGridValue reconstructs the depth grid.
func (b *GridBlob) DepthGridValue() *geodata.DepthGrid {
	return &geodata.DepthGrid{Spec: b.Spec, Cells: b.Cells}
}

// ChangeGridValue reconstructs the change grid.
func (b *GridBlob) ChangeGridValue() *geodata.ChangeGrid {
	return &geodata.ChangeGrid{Spec: b.Spec, Cells: b.Cells}
}

// VolumeFields copies a volume report into the flattened columns.
func (r *RunReport) VolumeFields(v *geodata.VolumeReport) {
	if v == nil {
		return
	}
	r.VolumeAggregate = v.Aggregate
	r.CellCount = v.CellCount
	r.NoDataCount = v.NoDataCount
	r.DegradedCount = v.DegradedCount
	r.Confidence = v.Confidence
}
