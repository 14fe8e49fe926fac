package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/joekbullard/PeatlandSpatial/internal/classify"
	"github.com/joekbullard/PeatlandSpatial/internal/geodata"
	"github.com/joekbullard/PeatlandSpatial/internal/interp"
	"github.com/joekbullard/PeatlandSpatial/internal/log"
	"github.com/joekbullard/PeatlandSpatial/internal/raster"
	"github.com/joekbullard/PeatlandSpatial/internal/spatial"
	"github.com/joekbullard/PeatlandSpatial/internal/storage"
	"github.com/joekbullard/PeatlandSpatial/internal/survey"
	"github.com/joekbullard/PeatlandSpatial/internal/zonal"
	"github.com/joekbullard/PeatlandSpatial/pkg/config"
)

const version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml, site.yaml\n\t\t\t  SQLite: config.db, site.db")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	mode := flag.String("mode", "", "Pipeline stage to run: survey, interpolate, difference, classify")
	surveyFile := flag.String("survey", "", "Survey campaign CSV (interpolate mode)")
	beforeFile := flag.String("before", "", "Baseline campaign CSV (difference mode)")
	afterFile := flag.String("after", "", "Follow-up campaign CSV (difference mode)")
	zonesFile := flag.String("zones", "", "Management zone CSV (classify mode; optional elsewhere for zonal summaries)")
	boundaryFile := flag.String("boundary", "", "Site boundary CSV (survey mode)")
	exclusionsFile := flag.String("exclusions", "", "Exclusion polygon CSV (survey mode, optional)")
	watercoursesFile := flag.String("watercourses", "", "Watercourse centerline CSV (survey mode, optional)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("peatland-spatial %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	cfgData, err := loadConfig(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	switch *mode {
	case "survey":
		err = runSurvey(cfgData, *boundaryFile, *exclusionsFile, *watercoursesFile)
	case "interpolate":
		err = runInterpolate(cfgData, *surveyFile, *zonesFile)
	case "difference":
		err = runDifference(cfgData, *beforeFile, *afterFile, *zonesFile)
	case "classify":
		err = runClassify(cfgData, *zonesFile)
	default:
		err = fmt.Errorf("unsupported mode %q. Use 'survey', 'interpolate', 'difference' or 'classify'", *mode)
	}
	if err != nil {
		log.Errorf("Pipeline error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	var err error

	switch cfgBackend {
	case "yaml":
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		provider, err = config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}

// runSurvey lays out the survey lattice for a site and writes it as a
// campaign CSV on stdout, ready for field collection and later reloading
// through -mode interpolate.
func runSurvey(cfg *config.ConfigData, boundaryFile, exclusionsFile, watercoursesFile string) error {
	if boundaryFile == "" {
		return fmt.Errorf("survey mode requires -boundary")
	}
	boundaries, err := loadPolygons(boundaryFile, cfg.CRS)
	if err != nil {
		return err
	}
	if len(boundaries) > 1 {
		log.Warnf("Boundary file %s has %d polygons; using the first, ignoring the rest",
			boundaryFile, len(boundaries))
	}

	site := survey.Site{Boundary: boundaries[0]}
	if exclusionsFile != "" {
		if site.Exclusions, err = loadPolygons(exclusionsFile, cfg.CRS); err != nil {
			return err
		}
	}
	if watercoursesFile != "" {
		if site.Watercourses, err = loadPolylines(watercoursesFile); err != nil {
			return err
		}
	}

	points, err := survey.GeneratePoints(site, cfg.SurveyParams())
	if err != nil {
		return err
	}
	log.Infof("Generated %d survey points for site %s", len(points), cfg.Site)

	fmt.Println("record_id,easting,northing,depth,date,weight,spacing")
	for _, p := range points {
		fmt.Printf("%d,%.1f,%.1f,,,%g,%d\n", p.ID, p.X, p.Y, p.Weight, p.Spacing)
	}
	return nil
}

// runInterpolate builds a depth surface from one campaign and reports it,
// with per-zone summaries when a zone file is supplied.
func runInterpolate(cfg *config.ConfigData, surveyFile, zonesFile string) error {
	if surveyFile == "" {
		return fmt.Errorf("interpolate mode requires -survey")
	}
	grid, err := interpolateCampaign(cfg, surveyFile)
	if err != nil {
		return err
	}

	valid, degraded := 0, 0
	for i := range grid.Cells {
		if geodata.IsNoData(grid.Cells[i].Value) {
			continue
		}
		valid++
		if geodata.IsDegraded(grid.Cells[i].Variance) {
			degraded++
		}
	}
	log.Infof("Interpolated %dx%d grid: %d valid cells, %d degraded",
		grid.Spec.Rows, grid.Spec.Cols, valid, degraded)

	report := &storage.RunReport{
		Site:      cfg.Site,
		Estimator: string(cfg.InterpParams().Estimator),
		DepthGrid: storage.NewDepthBlob(grid),
	}
	if zonesFile != "" {
		zones, err := loadZoneCSV(zonesFile, cfg.CRS)
		if err != nil {
			return err
		}
		summaries, err := zonal.AggregateAll(zones, grid, nil, cfg.ZonalOptions())
		if err != nil {
			return err
		}
		printSummaries(summaries)
		report.Summaries = summaries
	}
	return saveReport(cfg, report)
}

// runDifference interpolates two campaigns onto the shared grid, differences
// them, and prints the volume report.
func runDifference(cfg *config.ConfigData, beforeFile, afterFile, zonesFile string) error {
	if beforeFile == "" || afterFile == "" {
		return fmt.Errorf("difference mode requires -before and -after")
	}
	before, err := interpolateCampaign(cfg, beforeFile)
	if err != nil {
		return fmt.Errorf("baseline campaign: %w", err)
	}
	after, err := interpolateCampaign(cfg, afterFile)
	if err != nil {
		return fmt.Errorf("follow-up campaign: %w", err)
	}

	change, volume, err := raster.Difference(before, after, cfg.GridSpec().CellArea(), cfg.RasterOptions())
	if err != nil {
		return err
	}
	fmt.Printf("volume change: %.2f m3 over %d cells (%d no-data, %d degraded), confidence %s\n",
		volume.Aggregate, volume.CellCount, volume.NoDataCount, volume.DegradedCount, volume.Confidence)

	report := &storage.RunReport{
		Site:       cfg.Site,
		Estimator:  string(cfg.InterpParams().Estimator),
		DepthGrid:  storage.NewDepthBlob(after),
		ChangeGrid: storage.NewChangeBlob(change),
	}
	report.VolumeFields(volume)
	if zonesFile != "" {
		zones, err := loadZoneCSV(zonesFile, cfg.CRS)
		if err != nil {
			return err
		}
		summaries, err := zonal.AggregateAll(zones, change, nil, cfg.ZonalOptions())
		if err != nil {
			return err
		}
		printSummaries(summaries)
		report.Summaries = summaries
	}
	return saveReport(cfg, report)
}

// runClassify applies the configured ruleset with adjacency smoothing and
// prints each zone's condition class.
func runClassify(cfg *config.ConfigData, zonesFile string) error {
	if zonesFile == "" {
		return fmt.Errorf("classify mode requires -zones")
	}
	zones, err := loadZoneCSV(zonesFile, cfg.CRS)
	if err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}
	classes, err := classify.Classify(zones, rules, cfg.ClassifyOptions())
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(classes))
	for id := range classes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("%s\t%s\n", id, classes[id])
	}
	return nil
}

func interpolateCampaign(cfg *config.ConfigData, path string) (*geodata.DepthGrid, error) {
	set, err := loadSurveyCSV(path, cfg.CRS)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded %d survey points (%d measured) from %s",
		set.Len(), len(set.Measured()), path)

	index, err := spatial.Build(set)
	if err != nil {
		return nil, err
	}
	return interp.Interpolate(set, index, cfg.GridSpec(), cfg.InterpParams())
}

func printSummaries(summaries []*zonal.ZoneSummary) {
	for _, s := range summaries {
		qualifier := ""
		if s.InsufficientCoverage {
			qualifier = "\t(insufficient coverage)"
		}
		fmt.Printf("%s\tmean %.3f\tvalid %.0f%%%s\n",
			s.ZoneID, s.AreaWeightedMean, s.ValidCellFraction*100, qualifier)
	}
}

func saveReport(cfg *config.ConfigData, report *storage.RunReport) error {
	if cfg.Storage.ReportDB == "" {
		return nil
	}
	store, err := storage.Open(cfg.Storage.ReportDB)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.SaveReport(report); err != nil {
		return err
	}
	log.Infof("Saved run report %s", report.ID)
	return nil
}
