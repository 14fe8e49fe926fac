package geodata

import (
	"fmt"

	"github.com/ctessum/geom"
)

// ConditionClass is a categorical restoration state label. No ordering is
// implied; whatever ranking exists lives in the classification ruleset.
type ConditionClass string

// Standard condition classes used by the default Peatland Code ruleset.
// Rulesets may define their own labels.
const (
	ClassDegraded   ConditionClass = "Degraded"
	ClassRecovering ConditionClass = "Recovering"
	ClassStable     ConditionClass = "Stable"
	ClassReference  ConditionClass = "Reference"
)

// Zone is a management unit polygon with its field-assessed attributes,
// e.g. depth_mean, vegetation_cover_pct, hydrology_index.
type Zone struct {
	ID         string
	Polygon    geom.Polygonal
	Attributes map[string]float64
	Labels     map[string]string // categorical attributes, e.g. dominant vegetation
}

// Attr looks up a numeric attribute.
func (z *Zone) Attr(name string) (float64, bool) {
	v, ok := z.Attributes[name]
	return v, ok
}

// ZoneSet is a collection of management zones sharing a coordinate system.
type ZoneSet struct {
	CRS   string
	Zones []Zone
}

// Validate checks the set invariants: at least one zone, unique IDs and
// non-nil geometry throughout.
func (zs *ZoneSet) Validate() error {
	if len(zs.Zones) == 0 {
		return fmt.Errorf("zone set: %w", ErrDegenerateInput)
	}
	seen := make(map[string]struct{}, len(zs.Zones))
	for _, z := range zs.Zones {
		if z.ID == "" {
			return fmt.Errorf("zone set: zone with empty ID")
		}
		if _, dup := seen[z.ID]; dup {
			return fmt.Errorf("zone set: duplicate zone ID %q", z.ID)
		}
		seen[z.ID] = struct{}{}
		if z.Polygon == nil {
			return fmt.Errorf("zone set: zone %q has no geometry", z.ID)
		}
	}
	return nil
}

// Zone returns the zone with the given ID, or nil.
func (zs *ZoneSet) Zone(id string) *Zone {
	for i := range zs.Zones {
		if zs.Zones[i].ID == id {
			return &zs.Zones[i]
		}
	}
	return nil
}
