package interp

import (
	"errors"
	"testing"
	"time"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
	"github.com/joekbullard/PeatlandSpatial/internal/spatial"
)

// testCampaign lays survey points on a 100 m lattice over a 500x500 site
// with a simple sloping depth field.
func testCampaign(t *testing.T) (*geodata.SurveySet, *spatial.Index) {
	t.Helper()
	var points []geodata.SurveyPoint
	id := 1
	for y := 0.0; y <= 500; y += 100 {
		for x := 0.0; x <= 500; x += 100 {
			d := 0.5 + x/500 + y/1000
			points = append(points, geodata.SurveyPoint{ID: id, X: x, Y: y, Depth: &d, Weight: 1})
			id++
		}
	}
	set := geodata.NewSurveySet("EPSG:27700", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), points)
	ix, err := spatial.Build(set)
	if err != nil {
		t.Fatal(err)
	}
	return set, ix
}

func testSpec() geodata.GridSpec {
	return geodata.GridSpec{
		OriginX: 0, OriginY: 0, CellSize: 50,
		Rows: 10, Cols: 10, CRS: "EPSG:27700",
	}
}

func TestInterpolateCoversGrid(t *testing.T) {
	set, ix := testCampaign(t)
	params := DefaultParams()

	grid, err := Interpolate(set, ix, testSpec(), params)
	if err != nil {
		t.Fatal(err)
	}
	if len(grid.Cells) != 100 {
		t.Fatalf("expected 100 cells, got %d", len(grid.Cells))
	}
	for i, c := range grid.Cells {
		if geodata.IsNoData(c.Value) {
			t.Errorf("cell %d unexpectedly no-data inside a dense campaign", i)
		}
		if c.Value < 0.4 || c.Value > 2.1 {
			t.Errorf("cell %d estimate %g outside the field's depth span", i, c.Value)
		}
	}
}

func TestInterpolateDeterministicAcrossWorkers(t *testing.T) {
	set, ix := testCampaign(t)

	for _, estimator := range []EstimatorChoice{EstimatorDistanceWeighted, EstimatorGeostatistical} {
		var reference *geodata.DepthGrid
		for _, workers := range []int{1, 2, 4, 7} {
			params := DefaultParams()
			params.Estimator = estimator
			params.Workers = workers
			grid, err := Interpolate(set, ix, testSpec(), params)
			if err != nil {
				t.Fatalf("%s workers=%d: %v", estimator, workers, err)
			}
			if reference == nil {
				reference = grid
				continue
			}
			for i := range grid.Cells {
				got, want := grid.Cells[i], reference.Cells[i]
				sameValue := got.Value == want.Value ||
					(geodata.IsNoData(got.Value) && geodata.IsNoData(want.Value))
				sameVariance := got.Variance == want.Variance ||
					(geodata.IsNoData(got.Variance) && geodata.IsNoData(want.Variance))
				if !sameValue || !sameVariance {
					t.Fatalf("%s workers=%d: cell %d differs: %+v vs %+v",
						estimator, workers, i, got, want)
				}
			}
		}
	}
}

func TestInterpolateRefusesExtrapolation(t *testing.T) {
	// Points clustered in the southwest corner; far cells have no neighbors
	// inside the search radius and must be no-data, never guessed.
	var points []geodata.SurveyPoint
	for i, pos := range [][2]float64{{0, 0}, {50, 0}, {0, 50}, {50, 50}} {
		d := 1.0
		points = append(points, geodata.SurveyPoint{ID: i + 1, X: pos[0], Y: pos[1], Depth: &d, Weight: 1})
	}
	set := geodata.NewSurveySet("EPSG:27700", time.Time{}, points)
	ix, err := spatial.Build(set)
	if err != nil {
		t.Fatal(err)
	}

	spec := geodata.GridSpec{
		OriginX: 0, OriginY: 0, CellSize: 100,
		Rows: 10, Cols: 10, CRS: "EPSG:27700",
	}
	params := DefaultParams()
	params.SearchRadius = 150

	grid, err := Interpolate(set, ix, spec, params)
	if err != nil {
		t.Fatal(err)
	}

	if c := grid.At(0, 0); geodata.IsNoData(c.Value) {
		t.Error("cell next to the cluster should have data")
	}
	if c := grid.At(9, 9); !geodata.IsNoData(c.Value) {
		t.Errorf("far cell should be no-data, got %g", c.Value)
	}
}

func TestInterpolateCRSMismatch(t *testing.T) {
	set, ix := testCampaign(t)
	spec := testSpec()
	spec.CRS = "EPSG:3857"

	_, err := Interpolate(set, ix, spec, DefaultParams())
	if !errors.Is(err, geodata.ErrCoordinateSystemMismatch) {
		t.Errorf("expected ErrCoordinateSystemMismatch, got %v", err)
	}
}

func TestInterpolateEmptyCampaign(t *testing.T) {
	set := geodata.NewSurveySet("EPSG:27700", time.Time{}, nil)
	_, err := Interpolate(set, nil, testSpec(), DefaultParams())
	if !errors.Is(err, geodata.ErrDegenerateInput) {
		t.Errorf("expected ErrDegenerateInput, got %v", err)
	}
}

func TestInterpolateKrigingMarksDegradedCells(t *testing.T) {
	set, ix := testCampaign(t)
	params := DefaultParams()
	params.Estimator = EstimatorGeostatistical
	params.IllConditionThreshold = 1e-6 // force the fallback everywhere

	grid, err := Interpolate(set, ix, testSpec(), params)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range grid.Cells {
		if geodata.IsNoData(c.Value) {
			continue
		}
		// Exact lattice hits bypass the solver and stay nominal.
		if c.Variance == 0 {
			continue
		}
		if !geodata.IsDegraded(c.Variance) {
			t.Errorf("cell %d: expected degraded variance, got %g", i, c.Variance)
			break
		}
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(p *Params) {}, wantErr: false},
		{name: "zero fields filled", mutate: func(p *Params) { *p = Params{} }, wantErr: false},
		{name: "unknown estimator", mutate: func(p *Params) { p.Estimator = "splines" }, wantErr: true},
		{name: "power below one", mutate: func(p *Params) { p.Power = 0.5 }, wantErr: true},
		{name: "unknown model", mutate: func(p *Params) { p.Model = "cubic" }, wantErr: true},
		{name: "negative radius", mutate: func(p *Params) { p.SearchRadius = -1 }, wantErr: true},
		{name: "max below min", mutate: func(p *Params) { p.MinNeighbors = 5; p.MaxNeighbors = 2 }, wantErr: true},
		{name: "kriging needs range", mutate: func(p *Params) {
			p.Estimator = EstimatorGeostatistical
			p.Range = -10
		}, wantErr: true},
		{name: "negative workers", mutate: func(p *Params) { p.Workers = -2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
