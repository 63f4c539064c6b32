// Package harvest collects every course row from the portal's virtualized
// results grid.
//
// The grid only renders the rows inside its viewport, so a single DOM read
// sees a fraction of the results. Sweep reads the visible rows, scrolls one
// viewport forward, waits for the grid to re-render and reads again, until
// neither the scroll position nor the number of collected courses changes
// for a few consecutive iterations. Rows are deduplicated by
// course.CompositeKey; the first occurrence wins.
//
// Access to the page goes through RowSource, so the sweep itself has no
// browser dependency. ParseRows turns the grid's row container HTML into
// cell text for RowSource implementations.
package harvest
