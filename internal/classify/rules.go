// Package classify assigns a condition class to every management zone by
// interpreting an ordered ruleset over zone attributes, then suppresses
// isolated misclassifications with a single adjacency-based smoothing pass.
package classify

import (
	"fmt"

	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
)

// PredicateKind enumerates the closed set of predicate variants. Rules are a
// tagged sum interpreted by one evaluator; there is no open dispatch.
type PredicateKind string

const (
	// KindThreshold compares one numeric attribute against a constant.
	KindThreshold PredicateKind = "threshold"
	// KindRange tests numeric attribute membership in [Low, High].
	KindRange PredicateKind = "range"
	// KindLabel tests a categorical attribute for equality.
	KindLabel PredicateKind = "label"
	// KindAll holds when every sub-predicate holds.
	KindAll PredicateKind = "all"
	// KindAny holds when at least one sub-predicate holds.
	KindAny PredicateKind = "any"
	// KindCatchAll always holds. Every ruleset needs one, lowest priority.
	KindCatchAll PredicateKind = "catchall"
)

// Op is a threshold comparison operator.
type Op string

const (
	OpGT Op = ">"
	OpGE Op = ">="
	OpLT Op = "<"
	OpLE Op = "<="
	OpEQ Op = "=="
	OpNE Op = "!="
)

// Predicate is one node of the rule condition tree. Which fields are
// meaningful depends on Kind.
type Predicate struct {
	Kind  PredicateKind
	Attr  string
	Op    Op
	Value float64
	Low   float64
	High  float64
	Label string
	Sub   []Predicate
}

// Rule maps a predicate to a candidate class. Rules are evaluated in
// ascending priority order; the first whose predicate holds wins.
type Rule struct {
	Name     string
	Priority int
	When     Predicate
	Class    geodata.ConditionClass
}

// Holds evaluates the predicate against a zone's attributes. A referenced
// attribute the zone does not carry makes the predicate false, never an
// error: absent field data is a property of the zone, not a configuration
// defect.
func (p Predicate) Holds(z *geodata.Zone) bool {
	switch p.Kind {
	case KindCatchAll:
		return true
	case KindThreshold:
		v, ok := z.Attr(p.Attr)
		if !ok {
			return false
		}
		switch p.Op {
		case OpGT:
			return v > p.Value
		case OpGE:
			return v >= p.Value
		case OpLT:
			return v < p.Value
		case OpLE:
			return v <= p.Value
		case OpEQ:
			return v == p.Value
		case OpNE:
			return v != p.Value
		}
		return false
	case KindRange:
		v, ok := z.Attr(p.Attr)
		if !ok {
			return false
		}
		return v >= p.Low && v <= p.High
	case KindLabel:
		return z.Labels[p.Attr] == p.Label
	case KindAll:
		for _, s := range p.Sub {
			if !s.Holds(z) {
				return false
			}
		}
		return true
	case KindAny:
		for _, s := range p.Sub {
			if s.Holds(z) {
				return true
			}
		}
		return false
	}
	return false
}

// validate rejects malformed predicates up front so a bad ruleset fails the
// run instead of silently never matching.
func (p Predicate) validate() error {
	switch p.Kind {
	case KindCatchAll:
		return nil
	case KindThreshold:
		if p.Attr == "" {
			return fmt.Errorf("threshold predicate without attribute")
		}
		switch p.Op {
		case OpGT, OpGE, OpLT, OpLE, OpEQ, OpNE:
			return nil
		}
		return fmt.Errorf("threshold predicate on %q: unknown operator %q", p.Attr, p.Op)
	case KindRange:
		if p.Attr == "" {
			return fmt.Errorf("range predicate without attribute")
		}
		if p.Low > p.High {
			return fmt.Errorf("range predicate on %q: low %g above high %g", p.Attr, p.Low, p.High)
		}
		return nil
	case KindLabel:
		if p.Attr == "" {
			return fmt.Errorf("label predicate without attribute")
		}
		return nil
	case KindAll, KindAny:
		if len(p.Sub) == 0 {
			return fmt.Errorf("%s predicate without sub-predicates", p.Kind)
		}
		for _, s := range p.Sub {
			if err := s.validate(); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown predicate kind %q", p.Kind)
}

// DefaultRules returns the provisional Peatland Code condition ruleset over
// the standard attributes depth_mean (m), vegetation_cover_pct and
// hydrology_index (0-1). Thresholds are domain-standard starting points, not
// observed protocol values; sites should supply their own ruleset.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "reference",
			Priority: 10,
			Class:    geodata.ClassReference,
			When: Predicate{Kind: KindAll, Sub: []Predicate{
				{Kind: KindThreshold, Attr: "depth_mean", Op: OpGE, Value: 0.5},
				{Kind: KindThreshold, Attr: "vegetation_cover_pct", Op: OpGE, Value: 90},
				{Kind: KindThreshold, Attr: "hydrology_index", Op: OpGE, Value: 0.8},
			}},
		},
		{
			Name:     "stable",
			Priority: 20,
			Class:    geodata.ClassStable,
			When: Predicate{Kind: KindAll, Sub: []Predicate{
				{Kind: KindThreshold, Attr: "depth_mean", Op: OpGE, Value: 0.5},
				{Kind: KindThreshold, Attr: "vegetation_cover_pct", Op: OpGE, Value: 70},
			}},
		},
		{
			Name:     "recovering",
			Priority: 30,
			Class:    geodata.ClassRecovering,
			When: Predicate{Kind: KindAny, Sub: []Predicate{
				{Kind: KindRange, Attr: "vegetation_cover_pct", Low: 40, High: 70},
				{Kind: KindThreshold, Attr: "hydrology_index", Op: OpGE, Value: 0.5},
			}},
		},
		{
			Name:     "degraded",
			Priority: 100,
			Class:    geodata.ClassDegraded,
			When:     Predicate{Kind: KindCatchAll},
		},
	}
}
