package storage

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
	"github.com/joekbullard/PeatlandSpatial/internal/zonal"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport(site string) *RunReport {
	spec := geodata.GridSpec{CellSize: 10, Rows: 2, Cols: 2, CRS: "EPSG:27700"}
	depth := geodata.NewDepthGrid(spec)
	depth.Cells[0] = geodata.Cell{Value: 1.5, Variance: 0.1}
	depth.Cells[1] = geodata.Cell{Value: 2.5, Variance: geodata.MarkDegraded(0.3)}

	change := &geodata.ChangeGrid{Spec: spec, Cells: make([]geodata.Cell, 4)}
	change.Cells[0] = geodata.Cell{Value: -0.2, Variance: 0.2}
	for i := 1; i < 4; i++ {
		change.Cells[i] = geodata.NoDataCell()
	}

	r := &RunReport{
		Site:      site,
		Estimator: "geostatistical",
		Summaries: []*zonal.ZoneSummary{
			{ZoneID: "z1", AreaWeightedMean: 1.8, ValidCellFraction: 0.9, AssignedClass: geodata.ClassStable},
			{ZoneID: "z2", ValidCellFraction: 0.2, InsufficientCoverage: true},
		},
		DepthGrid:  NewDepthBlob(depth),
		ChangeGrid: NewChangeBlob(change),
	}
	r.VolumeFields(&geodata.VolumeReport{
		Aggregate:   -20,
		CellCount:   4,
		NoDataCount: 3,
		Confidence:  geodata.ConfidenceLow,
	})
	return r
}

func TestSaveLoadReport(t *testing.T) {
	s := openStore(t)

	r := testReport("moor-7")
	if err := s.SaveReport(r); err != nil {
		t.Fatal(err)
	}
	if r.ID == "" {
		t.Fatal("SaveReport did not assign an ID")
	}
	if r.CreatedAt.IsZero() {
		t.Fatal("SaveReport did not stamp a creation time")
	}

	loaded, err := s.LoadReport(r.ID)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Site != "moor-7" || loaded.Estimator != "geostatistical" {
		t.Errorf("metadata changed: %q %q", loaded.Site, loaded.Estimator)
	}
	if loaded.VolumeAggregate != -20 || loaded.NoDataCount != 3 {
		t.Errorf("volume fields changed: %+v", loaded)
	}
	if loaded.Confidence != geodata.ConfidenceLow {
		t.Errorf("expected low confidence, got %q", loaded.Confidence)
	}

	if len(loaded.Summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(loaded.Summaries))
	}
	if loaded.Summaries[0].ZoneID != "z1" || loaded.Summaries[0].AssignedClass != geodata.ClassStable {
		t.Errorf("summary changed: %+v", loaded.Summaries[0])
	}
	if !loaded.Summaries[1].InsufficientCoverage {
		t.Error("insufficient coverage flag lost")
	}

	depth := loaded.DepthGrid.DepthGridValue()
	if depth.Cells[0].Value != 1.5 {
		t.Errorf("depth cell changed: %+v", depth.Cells[0])
	}
	// The degraded sentinel must survive the blob encoding byte-exact.
	if !geodata.IsDegraded(depth.Cells[1].Variance) {
		t.Errorf("degraded flag lost: variance %g", depth.Cells[1].Variance)
	}
	if got := geodata.DegradedVariance(depth.Cells[1].Variance); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("degraded variance magnitude changed: %g", got)
	}

	change := loaded.ChangeGrid.ChangeGridValue()
	if change.Cells[0].Value != -0.2 {
		t.Errorf("change cell changed: %+v", change.Cells[0])
	}
	if !geodata.IsNoData(change.Cells[3].Value) {
		t.Errorf("no-data cell decoded as %g", change.Cells[3].Value)
	}
}

func TestLoadReportNotFound(t *testing.T) {
	s := openStore(t)
	if _, err := s.LoadReport("no-such-id"); err == nil {
		t.Error("expected error for unknown report ID")
	}
}

func TestSaveReportWithoutGrids(t *testing.T) {
	s := openStore(t)
	r := &RunReport{Site: "moor-7", Estimator: "distanceWeighted"}
	if err := s.SaveReport(r); err != nil {
		t.Fatal(err)
	}
	loaded, err := s.LoadReport(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DepthGrid != nil || loaded.ChangeGrid != nil {
		t.Error("absent grids decoded as present")
	}
}

func TestListReportsFiltersBySite(t *testing.T) {
	s := openStore(t)

	for i, site := range []string{"moor-7", "moor-7", "bog-3"} {
		r := testReport(site)
		r.CreatedAt = time.Date(2026, 8, 1+i, 0, 0, 0, 0, time.UTC)
		if err := s.SaveReport(r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListReports("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(all))
	}
	// Newest first.
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Error("reports not ordered newest first")
		}
	}

	moor, err := s.ListReports("moor-7")
	if err != nil {
		t.Fatal(err)
	}
	if len(moor) != 2 {
		t.Fatalf("expected 2 moor-7 reports, got %d", len(moor))
	}
	for _, m := range moor {
		if m.Site != "moor-7" {
			t.Errorf("filter leaked site %q", m.Site)
		}
	}
}
