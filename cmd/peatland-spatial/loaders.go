package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ctessum/geom"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
)

// Host-side loaders. The processing core consumes already-decoded records;
// these translate the two minimal exchange formats the CLI accepts, survey
// CSV and zone ring CSV.

// loadSurveyCSV reads a survey campaign from a CSV file with the columns
// record_id,easting,northing,depth,date,weight. An empty depth field is a
// no-data probe. Weight defaults to 1.
func loadSurveyCSV(path, crs string) (*geodata.SurveySet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	var points []geodata.SurveyPoint
	var campaignDate time.Time
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 4 {
			return nil, fmt.Errorf("%s:%d: want at least 4 fields, got %d", path, line, len(rec))
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad record_id: %w", path, line, err)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad easting: %w", path, line, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad northing: %w", path, line, err)
		}
		p := geodata.SurveyPoint{ID: id, X: x, Y: y, Weight: 1}
		if depthField := strings.TrimSpace(rec[3]); depthField != "" {
			depth, err := strconv.ParseFloat(depthField, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad depth: %w", path, line, err)
			}
			p.Depth = &depth
		}
		if len(rec) > 4 {
			if dateField := strings.TrimSpace(rec[4]); dateField != "" {
				t, err := time.Parse("2006-01-02", dateField)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: bad date: %w", path, line, err)
				}
				p.Time = t
				if campaignDate.IsZero() || t.Before(campaignDate) {
					campaignDate = t
				}
			}
		}
		if len(rec) > 5 {
			if weightField := strings.TrimSpace(rec[5]); weightField != "" {
				w, err := strconv.ParseFloat(weightField, 64)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: bad weight: %w", path, line, err)
				}
				p.Weight = w
			}
		}
		points = append(points, p)
	}
	return geodata.NewSurveySet(crs, campaignDate, points), nil
}

// loadZoneCSV reads management zones from a CSV file with the columns
// id,attributes,ring where attributes is k=v pairs joined by '|'
// (numeric values become attributes, anything else a label) and ring is
// "x y" vertex pairs joined by ';'.
func loadZoneCSV(path, crs string) (*geodata.ZoneSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}

	zs := &geodata.ZoneSet{CRS: crs}
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 3 {
			return nil, fmt.Errorf("%s:%d: want 3 fields, got %d", path, line, len(rec))
		}
		zone := geodata.Zone{
			ID:         strings.TrimSpace(rec[0]),
			Attributes: make(map[string]float64),
			Labels:     make(map[string]string),
		}
		for _, pair := range strings.Split(rec[1], "|") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("%s:%d: bad attribute %q", path, line, pair)
			}
			if num, err := strconv.ParseFloat(v, 64); err == nil {
				zone.Attributes[k] = num
			} else {
				zone.Labels[k] = v
			}
		}
		ring, err := parseRing(rec[2])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		zone.Polygon = geom.Polygon{ring}
		zs.Zones = append(zs.Zones, zone)
	}
	return zs, nil
}

// loadPolygons reads zone rings as bare polygons, for site boundaries and
// exclusion features.
func loadPolygons(path, crs string) ([]geom.Polygonal, error) {
	zs, err := loadZoneCSV(path, crs)
	if err != nil {
		return nil, err
	}
	polys := make([]geom.Polygonal, len(zs.Zones))
	for i := range zs.Zones {
		polys[i] = zs.Zones[i].Polygon
	}
	return polys, nil
}

// loadPolylines reads watercourse centerlines: one line per row, vertices
// as "x y" pairs joined by ';' in the second column.
func loadPolylines(path string) ([][]geom.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var lines [][]geom.Point
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%s:%d: want 2 fields, got %d", path, i+2, len(rec))
		}
		line, err := parseRing(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func parseRing(s string) ([]geom.Point, error) {
	var ring []geom.Point
	for _, vertex := range strings.Split(s, ";") {
		vertex = strings.TrimSpace(vertex)
		if vertex == "" {
			continue
		}
		fields := strings.Fields(vertex)
		if len(fields) != 2 {
			return nil, fmt.Errorf("bad vertex %q", vertex)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad vertex %q: %w", vertex, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad vertex %q: %w", vertex, err)
		}
		ring = append(ring, geom.Point{X: x, Y: y})
	}
	if len(ring) < 2 {
		return nil, fmt.Errorf("ring with %d vertices", len(ring))
	}
	return ring, nil
}
