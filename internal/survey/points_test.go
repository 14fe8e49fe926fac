package survey

import (
	"errors"
	"testing"

	"github.com/ctessum/geom"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
)

func rect(minX, minY, maxX, maxY float64) geom.Polygon {
	return geom.Polygon{{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
		{X: minX, Y: minY},
	}}
}

func TestGeneratePointsAlignment(t *testing.T) {
	// A site offset from the lattice: every generated coordinate must still
	// be a multiple of the spacing, aligned to the national grid rather than
	// the site corner.
	points, err := GeneratePoints(
		Site{Boundary: rect(130, 270, 550, 640)},
		Params{Spacing: Spacing100},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) == 0 {
		t.Fatal("no points generated")
	}
	for _, p := range points {
		if int(p.X)%100 != 0 || int(p.Y)%100 != 0 {
			t.Errorf("point %d at (%g, %g) off the 100 m lattice", p.ID, p.X, p.Y)
		}
	}
}

func TestGeneratePointsScanOrder(t *testing.T) {
	points, err := GeneratePoints(
		Site{Boundary: rect(0, 0, 250, 250)},
		Params{Spacing: Spacing100},
	)
	if err != nil {
		t.Fatal(err)
	}

	// Interior lattice positions only; boundary-coincident candidates are
	// not inside the site.
	want := []struct{ x, y float64 }{
		{100, 100}, {200, 100},
		{100, 200}, {200, 200},
	}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for i, p := range points {
		if p.ID != i+1 {
			t.Errorf("position %d: expected ID %d, got %d", i, i+1, p.ID)
		}
		if p.X != want[i].x || p.Y != want[i].y {
			t.Errorf("position %d: expected (%g, %g), got (%g, %g)",
				i, want[i].x, want[i].y, p.X, p.Y)
		}
	}
}

func TestGeneratePointsNestedLatticeTag(t *testing.T) {
	points, err := GeneratePoints(
		Site{Boundary: rect(0, 0, 250, 250)},
		Params{Spacing: Spacing50},
	)
	if err != nil {
		t.Fatal(err)
	}

	coarse, fine := 0, 0
	for _, p := range points {
		onCoarse := int(p.X)%100 == 0 && int(p.Y)%100 == 0
		switch {
		case onCoarse && p.Spacing != Spacing100:
			t.Errorf("point at (%g, %g) on the coarse lattice tagged %d", p.X, p.Y, p.Spacing)
		case !onCoarse && p.Spacing != Spacing50:
			t.Errorf("point at (%g, %g) off the coarse lattice tagged %d", p.X, p.Y, p.Spacing)
		}
		if onCoarse {
			coarse++
		} else {
			fine++
		}
	}
	// 4x4 interior positions, of which the four 100 m multiples are coarse.
	if coarse != 4 || fine != 12 {
		t.Errorf("expected 4 coarse and 12 fine points, got %d and %d", coarse, fine)
	}
}

func TestGeneratePointsExclusions(t *testing.T) {
	exclusion := rect(50, 50, 150, 150)
	points, err := GeneratePoints(
		Site{
			Boundary:   rect(0, 0, 350, 350),
			Exclusions: []geom.Polygonal{exclusion},
		},
		Params{Spacing: Spacing100},
	)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range points {
		if p.X == 100 && p.Y == 100 {
			t.Error("point inside the exclusion polygon survived")
		}
	}
	// 3x3 interior grid minus the one excluded position.
	if len(points) != 8 {
		t.Errorf("expected 8 points, got %d", len(points))
	}
}

func TestGeneratePointsWatercourseBuffer(t *testing.T) {
	// A vertical stream at x=100; the default 30 m corridor removes the
	// lattice column on it but not the neighboring columns.
	stream := []geom.Point{{X: 100, Y: 0}, {X: 100, Y: 400}}
	points, err := GeneratePoints(
		Site{
			Boundary:     rect(0, 0, 350, 350),
			Watercourses: [][]geom.Point{stream},
		},
		Params{Spacing: Spacing100},
	)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range points {
		if p.X == 100 {
			t.Errorf("point at (%g, %g) inside the watercourse corridor", p.X, p.Y)
		}
	}
	// Columns at 200 and 300 survive: 2x3 positions.
	if len(points) != 6 {
		t.Errorf("expected 6 points, got %d", len(points))
	}
}

func TestGeneratePointsWiderBuffer(t *testing.T) {
	stream := []geom.Point{{X: 100, Y: 0}, {X: 100, Y: 400}}
	points, err := GeneratePoints(
		Site{
			Boundary:     rect(0, 0, 350, 350),
			Watercourses: [][]geom.Point{stream},
		},
		Params{Spacing: Spacing100, WatercourseBuffer: 120},
	)
	if err != nil {
		t.Fatal(err)
	}
	// The 120 m corridor also swallows the column at x=200.
	for _, p := range points {
		if p.X != 300 {
			t.Errorf("unexpected surviving point at (%g, %g)", p.X, p.Y)
		}
	}
}

func TestGeneratePointsRejectsBadInput(t *testing.T) {
	if _, err := GeneratePoints(Site{}, Params{Spacing: Spacing100}); !errors.Is(err, geodata.ErrDegenerateInput) {
		t.Errorf("missing boundary: expected ErrDegenerateInput, got %v", err)
	}
	if _, err := GeneratePoints(Site{Boundary: rect(0, 0, 100, 100)}, Params{Spacing: 75}); err == nil {
		t.Error("off-protocol spacing accepted")
	}
	if _, err := GeneratePoints(Site{Boundary: rect(0, 0, 100, 100)},
		Params{Spacing: Spacing100, WatercourseBuffer: -1}); err == nil {
		t.Error("negative buffer accepted")
	}
}
