package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"

	"github.com/pfrederiksen/timebox/internal/harvest"
)

// ErrElementNotFound is returned when a grid selector matches nothing.
var ErrElementNotFound = errors.New("browser: element not found")

// Evaluator runs a JavaScript function in the page and returns its result.
type Evaluator interface {
	Eval(ctx context.Context, js string, args ...interface{}) (gson.JSON, error)
}

// PageEvaluator evaluates against a rod page.
type PageEvaluator struct {
	Page *rod.Page
}

func (e PageEvaluator) Eval(ctx context.Context, js string, args ...interface{}) (gson.JSON, error) {
	res, err := e.Page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

// GridSelectors locates the results grid in the page.
type GridSelectors struct {
	RowContainer string
	ScrollArea   string
	RowSelector  string
	ScheduleCell string
}

// DefaultGridSelectors returns the portal's grid selectors.
func DefaultGridSelectors() GridSelectors {
	return GridSelectors{
		RowContainer: harvest.DefaultRowContainer,
		ScrollArea:   harvest.DefaultScrollArea,
		RowSelector:  harvest.DefaultRowSelector,
		ScheduleCell: harvest.DefaultScheduleCell,
	}
}

const (
	jsOuterHTML = `(sel) => {
		const el = document.querySelector(sel);
		return el ? el.outerHTML : null;
	}`
	jsScrollTop = `(sel) => {
		const el = document.querySelector(sel);
		return el ? el.scrollTop : null;
	}`
	jsClientHeight = `(sel) => {
		const el = document.querySelector(sel);
		return el ? el.clientHeight : null;
	}`
	jsScrollBy = `(sel, delta) => {
		const el = document.querySelector(sel);
		if (!el) return null;
		el.scrollTop += delta;
		return el.scrollTop;
	}`
)

// GridSource reads the live results grid. It implements harvest.RowSource.
type GridSource struct {
	eval   Evaluator
	sel    GridSelectors
	parser *harvest.RowParser
}

var _ harvest.RowSource = (*GridSource)(nil)

// NewGridSource returns a RowSource over the grid matched by sel. Empty
// selectors fall back to the portal defaults.
func NewGridSource(eval Evaluator, sel GridSelectors) *GridSource {
	d := DefaultGridSelectors()
	if sel.RowContainer == "" {
		sel.RowContainer = d.RowContainer
	}
	if sel.ScrollArea == "" {
		sel.ScrollArea = d.ScrollArea
	}
	if sel.RowSelector == "" {
		sel.RowSelector = d.RowSelector
	}
	if sel.ScheduleCell == "" {
		sel.ScheduleCell = d.ScheduleCell
	}
	return &GridSource{
		eval: eval,
		sel:  sel,
		parser: &harvest.RowParser{
			RowSelector:  sel.RowSelector,
			ScheduleCell: sel.ScheduleCell,
		},
	}
}

// Check verifies that both the row container and the scroll area exist.
func (g *GridSource) Check(ctx context.Context) error {
	if _, err := g.query(ctx, jsOuterHTML, g.sel.RowContainer); err != nil {
		return err
	}
	_, err := g.query(ctx, jsClientHeight, g.sel.ScrollArea)
	return err
}

func (g *GridSource) VisibleRows(ctx context.Context) ([][]string, error) {
	v, err := g.query(ctx, jsOuterHTML, g.sel.RowContainer)
	if err != nil {
		return nil, err
	}
	return g.parser.ParseFragment(v.Str())
}

func (g *GridSource) ScrollOffset(ctx context.Context) (float64, error) {
	v, err := g.query(ctx, jsScrollTop, g.sel.ScrollArea)
	if err != nil {
		return 0, err
	}
	return v.Num(), nil
}

func (g *GridSource) ViewportHeight(ctx context.Context) (float64, error) {
	v, err := g.query(ctx, jsClientHeight, g.sel.ScrollArea)
	if err != nil {
		return 0, err
	}
	return v.Num(), nil
}

func (g *GridSource) ScrollBy(ctx context.Context, delta float64) error {
	_, err := g.query(ctx, jsScrollBy, g.sel.ScrollArea, delta)
	return err
}

func (g *GridSource) query(ctx context.Context, js, selector string, extra ...interface{}) (gson.JSON, error) {
	args := append([]interface{}{selector}, extra...)
	v, err := g.eval.Eval(ctx, js, args...)
	if err != nil {
		return gson.JSON{}, fmt.Errorf("browser: evaluating %s: %w", selector, err)
	}
	if v.Nil() {
		return gson.JSON{}, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return v, nil
}
