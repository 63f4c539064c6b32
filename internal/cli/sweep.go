package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/timebox/internal/browser"
	"github.com/pfrederiksen/timebox/internal/capture"
	"github.com/pfrederiksen/timebox/internal/harvest"
)

func newSweepCmd(a *app) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Scroll through the portal's results grid and export every course",
		Long: `Opens the course registration portal in Chrome. Run a course search,
then press Enter: timebox scrolls the results grid from its current position
until nothing new appears and exports every distinct course it saw.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSave(save); err != nil {
				return err
			}
			ctx := cmd.Context()

			sess, err := browser.Open(ctx, a.cfg.BrowserSession())
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := waitForEnter(ctx, a.in, a.errOut, "Run the course search in the browser, then press Enter to start."); err != nil {
				return err
			}

			src := browser.NewGridSource(browser.PageEvaluator{Page: sess.Page}, a.cfg.GridSelectors())
			if err := src.Check(ctx); err != nil {
				return fmt.Errorf("course grid not found: %w", err)
			}
			return a.sweep(ctx, src, save)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&save, "save", SaveCourses, "What to write: courses (course list) or export (document with each row's cells)")
	addBrowserFlags(a, cmd)
	flags.Duration("settle", 0, "Delay after each scroll before reading rows")
	flags.Int("max-iterations", 0, "Upper bound on scroll steps")
	a.bind("harvest.settle_delay", flags.Lookup("settle"))
	a.bind("harvest.max_iterations", flags.Lookup("max-iterations"))

	return cmd
}

// sweep harvests src and hands the result through an arming window, the
// same path a network capture takes. The window is armed once the sweep
// returns, so a long grid is bounded by the iteration cap, not the arm
// timeout.
func (a *app) sweep(ctx context.Context, src harvest.RowSource, save string) error {
	result, err := harvest.Sweep(ctx, src, a.cfg.HarvestOptions())
	if errors.Is(err, harvest.ErrNoData) {
		fmt.Fprintln(a.out, "No courses found in the grid.")
		return withExitCode(ExitNoData, err)
	}
	if err != nil {
		return err
	}

	win := capture.NewWindow(a.cfg.Capture.ArmTimeout)
	win.Arm()
	if !win.Offer(result.Batch(a.now())) {
		return withExitCode(ExitNoData, capture.ErrExpired)
	}
	b, err := win.Await(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.errOut, "Harvested %d courses in %d scroll steps (%d rows skipped).\n",
		result.Len(), result.Iterations, result.Skipped)
	return a.saveBatch(b, save)
}
