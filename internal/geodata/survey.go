// Package geodata holds the data model shared by the peatland processing
// components: survey campaigns, depth grids, zones and run reports. Values
// are constructed once per run and never mutated afterwards; every transform
// produces a new value.
package geodata

import (
	"fmt"
	"sort"
	"time"
)

// SurveyPoint is a single peat depth probe measurement.
type SurveyPoint struct {
	ID      int
	X       float64
	Y       float64
	Depth   *float64 // meters; nil = no-data (probe refused, access denied)
	Time    time.Time
	Weight  float64 // quality weight, 1.0 when the surveyor recorded none
	Spacing int     // lattice spacing the point was generated on (m), 0 if ad hoc
}

// SurveySet is one survey campaign: an ordered-by-ID collection of points
// sharing a coordinate system. It owns its points exclusively.
type SurveySet struct {
	CRS    string
	Date   time.Time
	points []SurveyPoint
}

// NewSurveySet builds a campaign from raw points. Points are sorted by record
// ID so downstream tie-breaks are reproducible regardless of load order.
// Zero weights are normalized to 1.
func NewSurveySet(crs string, date time.Time, points []SurveyPoint) *SurveySet {
	sorted := make([]SurveyPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i := range sorted {
		if sorted[i].Weight == 0 {
			sorted[i].Weight = 1
		}
	}
	return &SurveySet{CRS: crs, Date: date, points: sorted}
}

// Len returns the number of points in the campaign.
func (s *SurveySet) Len() int { return len(s.points) }

// Point returns the point at ordinal position i.
func (s *SurveySet) Point(i int) SurveyPoint { return s.points[i] }

// Points returns the ID-ordered point slice. Callers must not modify it.
func (s *SurveySet) Points() []SurveyPoint { return s.points }

// Measured returns the points carrying an actual depth measurement, in ID
// order. Points with nil depth are skipped.
func (s *SurveySet) Measured() []SurveyPoint {
	out := make([]SurveyPoint, 0, len(s.points))
	for _, p := range s.points {
		if p.Depth != nil {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the campaign invariants.
func (s *SurveySet) Validate() error {
	if len(s.points) == 0 {
		return fmt.Errorf("survey set: %w", ErrDegenerateInput)
	}
	if s.CRS == "" {
		return fmt.Errorf("survey set: missing coordinate system tag")
	}
	return nil
}
