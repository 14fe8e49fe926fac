package geodata

import "errors"

// Sentinel errors for whole-run failures. Per-cell and per-zone problems are
// encoded in the output data (no-data, degraded estimates, coverage flags)
// rather than raised.
var (
	// ErrDegenerateInput indicates an empty or unusable survey dataset.
	ErrDegenerateInput = errors.New("degenerate input: no usable survey points")

	// ErrCoordinateSystemMismatch indicates inputs tagged with different
	// coordinate systems. The core performs no reprojection.
	ErrCoordinateSystemMismatch = errors.New("coordinate system mismatch")

	// ErrGridMismatch indicates two grids whose geometry differs.
	ErrGridMismatch = errors.New("grid geometry mismatch")

	// ErrNoMatchingRule indicates a zone no classification rule matched and
	// no catch-all rule was supplied. This is a configuration defect.
	ErrNoMatchingRule = errors.New("no matching classification rule")
)
