// Package spatial provides the survey point index used by the interpolation
// engine. It supports k-nearest and radius queries with a deterministic
// distance-then-record-ID ordering, so downstream accumulation never depends
// on tree layout or query scheduling.
package spatial

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
)

// Neighbor is one query result: a measured survey point and its distance
// from the query location.
type Neighbor struct {
	Point    geodata.SurveyPoint
	Distance float64
}

// Index is an immutable spatial index over the measured points of one survey
// campaign. A new campaign requires a new Build; there is no rebuild.
type Index struct {
	tree   *kdtree.Tree
	points []geodata.SurveyPoint // measured points in record-ID order
}

// Build indexes the measured points of a campaign. Points without a depth
// measurement are not indexed. An empty or measurement-free campaign returns
// geodata.ErrDegenerateInput.
func Build(set *geodata.SurveySet) (*Index, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	measured := set.Measured()
	if len(measured) == 0 {
		return nil, fmt.Errorf("spatial index: no measured depths: %w", geodata.ErrDegenerateInput)
	}

	pts := make(indexPoints, len(measured))
	for i, p := range measured {
		pts[i] = indexPoint{x: p.X, y: p.Y, ord: i}
	}
	return &Index{
		tree:   kdtree.New(pts, true),
		points: measured,
	}, nil
}

// Len returns the number of indexed points.
func (ix *Index) Len() int { return len(ix.points) }

// Nearest returns up to k nearest points to (x, y), ascending by distance,
// ties broken by record insertion order.
func (ix *Index) Nearest(x, y float64, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	if k > len(ix.points) {
		k = len(ix.points)
	}
	keeper := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(keeper, indexPoint{x: x, y: y})

	// The keeper selects arbitrarily among points tying at the k-th
	// distance, and the tree layout it reflects varies between builds.
	// Re-gather everything inside the cutoff so tied points compete on
	// record ID, then truncate to k.
	maxSq := math.Inf(-1)
	for _, item := range keeper.Heap {
		if item.Comparable == nil || math.IsInf(item.Dist, 1) {
			continue
		}
		if item.Dist > maxSq {
			maxSq = item.Dist
		}
	}
	if math.IsInf(maxSq, -1) {
		return nil
	}
	within := kdtree.NewDistKeeper(maxSq)
	ix.tree.NearestSet(within, indexPoint{x: x, y: y})
	out := ix.collect(within.Heap)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Within returns all points within radius of (x, y), ascending by distance,
// ties broken by record insertion order.
func (ix *Index) Within(x, y, radius float64) []Neighbor {
	if radius <= 0 {
		return nil
	}
	// Distance on indexPoint returns squared distance, so the keeper bound
	// must be squared as well.
	keeper := kdtree.NewDistKeeper(radius * radius)
	ix.tree.NearestSet(keeper, indexPoint{x: x, y: y})
	return ix.collect(keeper.Heap)
}

// collect drains keeper results into the deterministic neighbor ordering.
func (ix *Index) collect(items []kdtree.ComparableDist) []Neighbor {
	out := make([]Neighbor, 0, len(items))
	for _, item := range items {
		if item.Comparable == nil || math.IsInf(item.Dist, 1) {
			continue
		}
		p := item.Comparable.(indexPoint)
		out = append(out, Neighbor{
			Point:    ix.points[p.ord],
			Distance: math.Sqrt(item.Dist),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Point.ID < out[j].Point.ID
	})
	return out
}

// indexPoint adapts a survey point position to the kdtree interfaces. ord is
// the point's position in the measured record-ID ordering.
type indexPoint struct {
	x, y float64
	ord  int
}

// Compare implements kdtree.Comparable.
func (p indexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("illegal dimension")
	}
}

// Dims implements kdtree.Comparable.
func (p indexPoint) Dims() int { return 2 }

// Distance implements kdtree.Comparable, returning squared Euclidean
// distance.
func (p indexPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexPoint)
	dx := p.x - q.x
	dy := p.y - q.y
	return dx*dx + dy*dy
}

// indexPoints satisfies kdtree.Interface.
type indexPoints []indexPoint

func (p indexPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexPoints) Len() int                              { return len(p) }
func (p indexPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p indexPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{indexPoints: p, Dim: d}, kdtree.MedianOfRandoms(pointPlane{indexPoints: p, Dim: d}, 100))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer along one axis.
type pointPlane struct {
	indexPoints
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.indexPoints[i].x < p.indexPoints[j].x
	case 1:
		return p.indexPoints[i].y < p.indexPoints[j].y
	default:
		panic("illegal dimension")
	}
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{indexPoints: p.indexPoints[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.indexPoints[i], p.indexPoints[j] = p.indexPoints[j], p.indexPoints[i]
}
