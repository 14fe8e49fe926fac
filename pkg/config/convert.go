package config

import (
	"fmt"

	"github.com/joekbullard/PeatlandSpatial/internal/classify"
	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
	"github.com/joekbullard/PeatlandSpatial/internal/interp"
	"github.com/joekbullard/PeatlandSpatial/internal/raster"
	"github.com/joekbullard/PeatlandSpatial/internal/survey"
	"github.com/joekbullard/PeatlandSpatial/internal/zonal"
)

// GridSpec converts the grid section, tagged with the configured CRS.
func (c *ConfigData) GridSpec() geodata.GridSpec {
	return geodata.GridSpec{
		OriginX:  c.Grid.OriginX,
		OriginY:  c.Grid.OriginY,
		CellSize: c.Grid.CellSize,
		Rows:     c.Grid.Rows,
		Cols:     c.Grid.Cols,
		CRS:      c.CRS,
	}
}

// InterpParams converts the interpolation section to engine parameters.
// Unset fields stay zero; the engine fills its own defaults on Validate.
func (c *ConfigData) InterpParams() interp.Params {
	return interp.Params{
		Estimator:             interp.EstimatorChoice(c.Interpolation.Estimator),
		Power:                 c.Interpolation.Power,
		Model:                 interp.VariogramModel(c.Interpolation.VariogramModel),
		Range:                 c.Interpolation.Range,
		Sill:                  c.Interpolation.Sill,
		Nugget:                c.Interpolation.Nugget,
		SearchRadius:          c.Interpolation.SearchRadius,
		MinNeighbors:          c.Interpolation.MinNeighbors,
		MaxNeighbors:          c.Interpolation.MaxNeighbors,
		IllConditionThreshold: c.Interpolation.IllConditionThreshold,
		Workers:               c.Interpolation.Workers,
	}
}

// RasterOptions converts the differencing section.
func (c *ConfigData) RasterOptions() raster.Options {
	return raster.Options{LowConfidenceFraction: c.Differencing.LowConfidenceFraction}
}

// ClassifyOptions converts the classification section.
func (c *ConfigData) ClassifyOptions() classify.Options {
	opts := classify.DefaultOptions()
	if c.Classification.SmoothingPasses != nil {
		opts.SmoothingPasses = *c.Classification.SmoothingPasses
	}
	if c.Classification.SmoothingMinNeighbors != 0 {
		opts.SmoothingMinNeighbors = c.Classification.SmoothingMinNeighbors
	}
	if c.Classification.AdjacencyTolerance != 0 {
		opts.AdjacencyTolerance = c.Classification.AdjacencyTolerance
	}
	return opts
}

// Rules converts the configured ruleset. An empty section yields the
// package default ruleset.
func (c *ConfigData) Rules() ([]classify.Rule, error) {
	if len(c.Classification.Rules) == 0 {
		return classify.DefaultRules(), nil
	}
	rules := make([]classify.Rule, len(c.Classification.Rules))
	for i, rd := range c.Classification.Rules {
		if rd.Class == "" {
			return nil, fmt.Errorf("config: rule %q has no class", rd.Name)
		}
		rules[i] = classify.Rule{
			Name:     rd.Name,
			Priority: rd.Priority,
			Class:    geodata.ConditionClass(rd.Class),
			When:     convertPredicate(rd.When),
		}
	}
	return rules, nil
}

func convertPredicate(pd PredicateData) classify.Predicate {
	p := classify.Predicate{
		Kind:  classify.PredicateKind(pd.Kind),
		Attr:  pd.Attr,
		Op:    classify.Op(pd.Op),
		Value: pd.Value,
		Low:   pd.Low,
		High:  pd.High,
		Label: pd.Label,
	}
	for _, sub := range pd.Sub {
		p.Sub = append(p.Sub, convertPredicate(sub))
	}
	return p
}

// ZonalOptions converts the aggregation section.
func (c *ConfigData) ZonalOptions() zonal.Options {
	return zonal.Options{CoverageThreshold: c.Aggregation.CoverageThreshold}
}

// SurveyParams converts the survey section. Spacing defaults to the coarse
// protocol lattice.
func (c *ConfigData) SurveyParams() survey.Params {
	p := survey.Params{
		Spacing:           c.Survey.Spacing,
		WatercourseBuffer: c.Survey.WatercourseBuffer,
	}
	if p.Spacing == 0 {
		p.Spacing = survey.Spacing100
	}
	return p
}
