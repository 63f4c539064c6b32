package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/timebox/internal/course"
	"github.com/pfrederiksen/timebox/internal/logger"
)

const (
	DefaultSettleDelay      = 250 * time.Millisecond
	DefaultOverlap          = 20
	DefaultMaxIterations    = 200
	DefaultStableIterations = 3
	DefaultMinColumns       = 11
)

var (
	// ErrNoData is returned when a sweep finishes without a single course.
	ErrNoData = errors.New("harvest: no courses found in the grid")
	// ErrMalformedRow marks a row that cannot be turned into a course.
	ErrMalformedRow = errors.New("harvest: malformed row")
)

// RowSource is the view of the grid a sweep needs.
type RowSource interface {
	// VisibleRows returns the cell text of every rendered row.
	VisibleRows(ctx context.Context) ([][]string, error)
	// ScrollOffset returns the scroll area's current vertical offset.
	ScrollOffset(ctx context.Context) (float64, error)
	// ViewportHeight returns the scroll area's visible height.
	ViewportHeight(ctx context.Context) (float64, error)
	// ScrollBy moves the scroll area down by delta pixels.
	ScrollBy(ctx context.Context, delta float64) error
}

// Options tunes a sweep. Zero fields take the package defaults.
type Options struct {
	SettleDelay      time.Duration
	Overlap          float64
	MaxIterations    int
	StableIterations int
	MinColumns       int
}

// DefaultOptions returns the options matching the portal's grid.
func DefaultOptions() Options {
	return Options{
		SettleDelay:      DefaultSettleDelay,
		Overlap:          DefaultOverlap,
		MaxIterations:    DefaultMaxIterations,
		StableIterations: DefaultStableIterations,
		MinColumns:       DefaultMinColumns,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SettleDelay <= 0 {
		o.SettleDelay = d.SettleDelay
	}
	if o.Overlap <= 0 {
		o.Overlap = d.Overlap
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.StableIterations <= 0 {
		o.StableIterations = d.StableIterations
	}
	if o.MinColumns <= 0 {
		o.MinColumns = d.MinColumns
	}
	return o
}

// Result is the outcome of a sweep. Courses and Cells are index-aligned and
// in first-seen order.
type Result struct {
	Courses    []course.Course
	Cells      [][]string
	Iterations int
	Skipped    int
}

// Len returns the number of harvested courses.
func (r *Result) Len() int {
	return len(r.Courses)
}

// Records returns each harvested row's raw cells as a record, for export.
func (r *Result) Records() []course.Record {
	records := make([]course.Record, len(r.Cells))
	for i, cells := range r.Cells {
		records[i] = course.Record{"cells": cells}
	}
	return records
}

type collector struct {
	minColumns int
	seen       map[string]bool
	result     *Result
}

func (c *collector) collect(rows [][]string) {
	for _, cells := range rows {
		crs, err := ExtractRow(cells, c.minColumns)
		if err != nil {
			c.result.Skipped++
			logger.IncrCounter("harvest.rows_skipped")
			logger.Debug("harvest: row skipped", logger.Fields{
				"cells": len(cells),
				"error": err.Error(),
			})
			continue
		}

		key := course.CompositeKey(crs)
		if c.seen[key] {
			continue
		}
		c.seen[key] = true
		c.result.Courses = append(c.result.Courses, crs)
		c.result.Cells = append(c.result.Cells, append([]string(nil), cells...))
	}
}

// Sweep scrolls through the grid behind src and returns every distinct
// course it renders. It stops once the scroll offset and the course count
// have stayed the same for opts.StableIterations iterations in a row, or
// after opts.MaxIterations. An empty harvest returns ErrNoData.
func Sweep(ctx context.Context, src RowSource, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	start := time.Now()

	result := &Result{}
	c := &collector{
		minColumns: opts.MinColumns,
		seen:       make(map[string]bool),
		result:     result,
	}

	rows, err := src.VisibleRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading visible rows: %w", err)
	}
	c.collect(rows)

	prevOffset := -1.0
	prevCount := result.Len()
	stable := 0

	for i := 0; i < opts.MaxIterations; i++ {
		result.Iterations++

		height, err := src.ViewportHeight(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading viewport height: %w", err)
		}
		if err := src.ScrollBy(ctx, height-opts.Overlap); err != nil {
			return nil, fmt.Errorf("scrolling grid: %w", err)
		}

		if err := settle(ctx, opts.SettleDelay); err != nil {
			return nil, err
		}

		rows, err := src.VisibleRows(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading visible rows: %w", err)
		}
		c.collect(rows)

		offset, err := src.ScrollOffset(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading scroll offset: %w", err)
		}
		count := result.Len()

		if offset == prevOffset && count == prevCount {
			stable++
		} else {
			stable = 0
		}
		prevOffset, prevCount = offset, count

		if stable >= opts.StableIterations {
			break
		}
	}

	elapsed := time.Since(start)
	logger.AddCounter("harvest.iterations", int64(result.Iterations))
	logger.RecordTiming("harvest.duration", elapsed)

	if result.Len() == 0 {
		logger.Warn("harvest: sweep found no courses", logger.Fields{
			"iterations": result.Iterations,
			"skipped":    result.Skipped,
		})
		return nil, ErrNoData
	}

	logger.Info("harvest: sweep finished", logger.Fields{
		"courses":    result.Len(),
		"iterations": result.Iterations,
		"skipped":    result.Skipped,
		"duration":   elapsed.String(),
	})
	return result, nil
}

func settle(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
