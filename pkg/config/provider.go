// Package config loads pipeline configuration from YAML files or SQLite
// databases behind a common provider interface.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// IsReadOnly reports whether the source can be written back
	IsReadOnly() bool
	Close() error
}

// ConfigData is the complete pipeline configuration. Every numeric default
// in the processing packages can be overridden here; absent values fall
// back to the package defaults.
type ConfigData struct {
	Site           string             `yaml:"site,omitempty" json:"site,omitempty"`
	CRS            string             `yaml:"crs,omitempty" json:"crs,omitempty"`
	Grid           GridData           `yaml:"grid,omitempty" json:"grid,omitempty"`
	Interpolation  InterpolationData  `yaml:"interpolation,omitempty" json:"interpolation,omitempty"`
	Differencing   DifferencingData   `yaml:"differencing,omitempty" json:"differencing,omitempty"`
	Classification ClassificationData `yaml:"classification,omitempty" json:"classification,omitempty"`
	Aggregation    AggregationData    `yaml:"aggregation,omitempty" json:"aggregation,omitempty"`
	Survey         SurveyData         `yaml:"survey,omitempty" json:"survey,omitempty"`
	Storage        StorageData        `yaml:"storage,omitempty" json:"storage,omitempty"`
}

// GridData describes the output grid geometry. Campaigns that will be
// differenced must be interpolated onto the same grid.
type GridData struct {
	OriginX  float64 `yaml:"origin_x" json:"origin_x"`
	OriginY  float64 `yaml:"origin_y" json:"origin_y"`
	CellSize float64 `yaml:"cell_size" json:"cell_size"`
	Rows     int     `yaml:"rows" json:"rows"`
	Cols     int     `yaml:"cols" json:"cols"`
}

// InterpolationData configures the depth surface estimator.
type InterpolationData struct {
	Estimator             string  `yaml:"estimator,omitempty" json:"estimator,omitempty"` // distanceWeighted or geostatistical
	Power                 float64 `yaml:"power,omitempty" json:"power,omitempty"`
	VariogramModel        string  `yaml:"variogram_model,omitempty" json:"variogram_model,omitempty"` // spherical, exponential, gaussian
	Range                 float64 `yaml:"range,omitempty" json:"range,omitempty"`
	Sill                  float64 `yaml:"sill,omitempty" json:"sill,omitempty"`
	Nugget                float64 `yaml:"nugget,omitempty" json:"nugget,omitempty"`
	SearchRadius          float64 `yaml:"search_radius,omitempty" json:"search_radius,omitempty"`
	MinNeighbors          int     `yaml:"min_neighbors,omitempty" json:"min_neighbors,omitempty"`
	MaxNeighbors          int     `yaml:"max_neighbors,omitempty" json:"max_neighbors,omitempty"`
	IllConditionThreshold float64 `yaml:"ill_condition_threshold,omitempty" json:"ill_condition_threshold,omitempty"`
	Workers               int     `yaml:"workers,omitempty" json:"workers,omitempty"`
}

// DifferencingData configures change detection between campaigns.
type DifferencingData struct {
	LowConfidenceFraction float64 `yaml:"low_confidence_fraction,omitempty" json:"low_confidence_fraction,omitempty"`
}

// ClassificationData configures condition classification and smoothing.
// SmoothingPasses is a pointer so an explicit zero (smoothing disabled) can
// be told apart from an absent value (default of one pass).
type ClassificationData struct {
	SmoothingPasses       *int       `yaml:"smoothing_passes,omitempty" json:"smoothing_passes,omitempty"`
	SmoothingMinNeighbors int        `yaml:"smoothing_min_neighbors,omitempty" json:"smoothing_min_neighbors,omitempty"`
	AdjacencyTolerance    float64    `yaml:"adjacency_tolerance,omitempty" json:"adjacency_tolerance,omitempty"`
	Rules                 []RuleData `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// RuleData is one classification rule.
type RuleData struct {
	Name     string        `yaml:"name" json:"name"`
	Priority int           `yaml:"priority" json:"priority"`
	Class    string        `yaml:"class" json:"class"`
	When     PredicateData `yaml:"when" json:"when"`
}

// PredicateData is one node of a rule condition tree.
type PredicateData struct {
	Kind  string          `yaml:"kind" json:"kind"` // threshold, range, label, all, any, catchall
	Attr  string          `yaml:"attr,omitempty" json:"attr,omitempty"`
	Op    string          `yaml:"op,omitempty" json:"op,omitempty"`
	Value float64         `yaml:"value,omitempty" json:"value,omitempty"`
	Low   float64         `yaml:"low,omitempty" json:"low,omitempty"`
	High  float64         `yaml:"high,omitempty" json:"high,omitempty"`
	Label string          `yaml:"label,omitempty" json:"label,omitempty"`
	Sub   []PredicateData `yaml:"sub,omitempty" json:"sub,omitempty"`
}

// AggregationData configures zonal summaries.
type AggregationData struct {
	CoverageThreshold float64 `yaml:"coverage_threshold,omitempty" json:"coverage_threshold,omitempty"`
}

// SurveyData configures survey point generation.
type SurveyData struct {
	Spacing           int     `yaml:"spacing,omitempty" json:"spacing,omitempty"` // 100 or 50
	WatercourseBuffer float64 `yaml:"watercourse_buffer,omitempty" json:"watercourse_buffer,omitempty"`
}

// StorageData configures run report persistence.
type StorageData struct {
	ReportDB string `yaml:"report_db,omitempty" json:"report_db,omitempty"`
}
