package classify

import (
	"fmt"
	"sort"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
)

// Options configures classification and smoothing.
type Options struct {
	// SmoothingPasses is the number of explicit smoothing passes. Zero
	// disables smoothing. There is no implicit iteration to a fixed point;
	// repeated smoothing is always a deliberate caller choice.
	SmoothingPasses int

	// SmoothingMinNeighbors is the neighbor count below which a zone is
	// never reclassified. Zero means the default of 3.
	SmoothingMinNeighbors int

	// AdjacencyTolerance is the boundary gap treated as contact, in CRS
	// units. Zero means DefaultAdjacencyTolerance.
	AdjacencyTolerance float64
}

// DefaultOptions returns one smoothing pass over a three-neighbor minimum.
func DefaultOptions() Options {
	return Options{
		SmoothingPasses:       1,
		SmoothingMinNeighbors: 3,
		AdjacencyTolerance:    DefaultAdjacencyTolerance,
	}
}

// Classify assigns a condition class to every zone. Rules run in ascending
// priority order and the first match wins; a zone no rule matches fails the
// call with geodata.ErrNoMatchingRule. Rulesets are expected to end in a
// catch-all, and its absence is a configuration defect, not a silent
// default. After assignment, smoothing reclassifies zones that disagree
// with a strict majority of their neighbors.
func Classify(zones *geodata.ZoneSet, rules []Rule, opts Options) (map[string]geodata.ConditionClass, error) {
	if err := zones.Validate(); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("classify: empty ruleset: %w", geodata.ErrNoMatchingRule)
	}
	for _, r := range rules {
		if err := r.When.validate(); err != nil {
			return nil, fmt.Errorf("classify: rule %q: %w", r.Name, err)
		}
	}
	if opts.SmoothingPasses < 0 {
		return nil, fmt.Errorf("classify: smoothing passes must be >= 0, got %d", opts.SmoothingPasses)
	}
	if opts.SmoothingMinNeighbors == 0 {
		opts.SmoothingMinNeighbors = 3
	}
	if opts.SmoothingMinNeighbors < 1 {
		return nil, fmt.Errorf("classify: smoothing min neighbors must be >= 1, got %d", opts.SmoothingMinNeighbors)
	}
	if opts.AdjacencyTolerance == 0 {
		opts.AdjacencyTolerance = DefaultAdjacencyTolerance
	}

	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	classes := make(map[string]geodata.ConditionClass, len(zones.Zones))
	for i := range zones.Zones {
		z := &zones.Zones[i]
		class, ok := apply(ordered, z)
		if !ok {
			return nil, fmt.Errorf("classify: zone %q: %w", z.ID, geodata.ErrNoMatchingRule)
		}
		classes[z.ID] = class
	}

	if opts.SmoothingPasses > 0 {
		// Adjacency is derived once per run and cached across passes.
		adj := buildAdjacency(zones.Zones, opts.AdjacencyTolerance)
		for pass := 0; pass < opts.SmoothingPasses; pass++ {
			classes = smooth(zones, classes, adj, opts.SmoothingMinNeighbors)
		}
	}
	return classes, nil
}

// apply returns the class of the first matching rule.
func apply(ordered []Rule, z *geodata.Zone) (geodata.ConditionClass, bool) {
	for _, r := range ordered {
		if r.When.Holds(z) {
			return r.Class, true
		}
	}
	return "", false
}

// smooth runs one reclassification pass. The pass is two-phase: every
// decision reads the pre-pass snapshot, and writes land in a fresh map, so
// reclassification never propagates within a single pass.
func smooth(zones *geodata.ZoneSet, snapshot map[string]geodata.ConditionClass, adj map[string][]string, minNeighbors int) map[string]geodata.ConditionClass {
	next := make(map[string]geodata.ConditionClass, len(snapshot))
	for id, class := range snapshot {
		next[id] = class
	}

	for i := range zones.Zones {
		id := zones.Zones[i].ID
		neighbors := adj[id]
		if len(neighbors) < minNeighbors {
			continue
		}
		counts := make(map[geodata.ConditionClass]int)
		for _, nid := range neighbors {
			counts[snapshot[nid]]++
		}
		majority, count := majorityClass(counts)
		// Strict majority required; ties leave the zone unchanged. This
		// suppresses single-zone noise without letting small clusters
		// propagate.
		if count*2 > len(neighbors) && majority != snapshot[id] {
			next[id] = majority
		}
	}
	return next
}

// majorityClass returns the most frequent class. When several classes share
// the top count none of them holds a strict majority, so the arbitrary pick
// among them never reclassifies anything.
func majorityClass(counts map[geodata.ConditionClass]int) (geodata.ConditionClass, int) {
	var best geodata.ConditionClass
	bestCount := 0
	for class, n := range counts {
		if n > bestCount || (n == bestCount && class < best) {
			best = class
			bestCount = n
		}
	}
	return best, bestCount
}
