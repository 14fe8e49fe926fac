package classify

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
)

// DefaultAdjacencyTolerance is the boundary gap (in CRS units) below which
// two zones count as adjacent. Digitized survey polygons rarely share exact
// edges; slivers and overlaps within half a meter are treated as contact.
const DefaultAdjacencyTolerance = 0.5

// zoneGeom wraps a zone polygon for rtree storage.
type zoneGeom struct {
	geom.Polygonal
	idx int
}

// buildAdjacency derives the zone neighborhood graph: zone ID to sorted
// neighbor IDs. It is computed once per classification run and discarded
// afterwards; nothing persists or mutates it.
func buildAdjacency(zones []geodata.Zone, tol float64) map[string][]string {
	tree := rtree.NewTree(25, 50)
	for i := range zones {
		tree.Insert(&zoneGeom{Polygonal: zones[i].Polygon, idx: i})
	}

	adj := make(map[string][]string, len(zones))
	for i := range zones {
		b := zones[i].Polygon.Bounds()
		search := &geom.Bounds{
			Min: geom.Point{X: b.Min.X - tol, Y: b.Min.Y - tol},
			Max: geom.Point{X: b.Max.X + tol, Y: b.Max.Y + tol},
		}
		var ids []string
		for _, c := range tree.SearchIntersect(search) {
			other := c.(*zoneGeom)
			if other.idx == i {
				continue
			}
			if zonesTouch(zones[i].Polygon, other.Polygonal, tol) {
				ids = append(ids, zones[other.idx].ID)
			}
		}
		sort.Strings(ids)
		adj[zones[i].ID] = ids
	}
	return adj
}

// zonesTouch reports whether two polygons overlap or have boundaries within
// tol of each other.
func zonesTouch(a, b geom.Polygonal, tol float64) bool {
	if inter := a.Intersection(b); inter != nil && inter.Area() > 0 {
		return true
	}
	ra, rb := rings(a), rings(b)
	for _, ringA := range ra {
		for _, ringB := range rb {
			if ringDistanceBelow(ringA, ringB, tol) {
				return true
			}
		}
	}
	return false
}

// rings flattens a polygonal geometry into its rings.
func rings(p geom.Polygonal) []geom.Path {
	switch g := p.(type) {
	case geom.Polygon:
		return g
	case geom.MultiPolygon:
		var out []geom.Path
		for _, poly := range g {
			out = append(out, poly...)
		}
		return out
	default:
		return nil
	}
}

// ringDistanceBelow reports whether any segment of ring a comes within tol
// of any segment of ring b.
func ringDistanceBelow(a, b []geom.Point, tol float64) bool {
	for i := range a {
		a0, a1 := a[i], a[(i+1)%len(a)]
		for j := range b {
			b0, b1 := b[j], b[(j+1)%len(b)]
			if segmentDistance(a0, a1, b0, b1) <= tol {
				return true
			}
		}
	}
	return false
}

// segmentDistance returns the minimum distance between two segments. Proper
// crossings have distance zero; otherwise the minimum is attained at an
// endpoint.
func segmentDistance(a0, a1, b0, b1 geom.Point) float64 {
	if segmentsCross(a0, a1, b0, b1) {
		return 0
	}
	d := pointSegmentDistance(a0, b0, b1)
	d = math.Min(d, pointSegmentDistance(a1, b0, b1))
	d = math.Min(d, pointSegmentDistance(b0, a0, a1))
	d = math.Min(d, pointSegmentDistance(b1, a0, a1))
	return d
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
	cx, cy := s0.X+t*dx, s0.Y+t*dy
	return math.Hypot(p.X-cx, p.Y-cy)
}

func segmentsCross(a0, a1, b0, b1 geom.Point) bool {
	d1 := cross(b0, b1, a0)
	d2 := cross(b0, b1, a1)
	d3 := cross(a0, a1, b0)
	d4 := cross(a0, a1, b1)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(o, a, b geom.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
