package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/timebox/internal/browser"
	"github.com/pfrederiksen/timebox/internal/capture"
	"github.com/pfrederiksen/timebox/internal/harvest"
	"github.com/pfrederiksen/timebox/internal/logger"
	"github.com/pfrederiksen/timebox/internal/storage"
)

// Save modes for captured batches.
const (
	SaveExport  = "export"
	SaveCourses = "courses"
)

func newCaptureCmd(a *app) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Intercept the portal's next course search response",
		Long: `Opens the course registration portal in Chrome and watches its network
traffic. Log in and open the course search, then press Enter: the next
course search response received within the arm timeout is exported.`,
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

			network := browser.NewNetworkTransport(sess.Page)
			defer network.Close()

			return a.capture(ctx, network, save)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&save, "save", SaveExport, "What to write: export (localized document with raw records) or courses (course list)")
	addBrowserFlags(a, cmd)
	flags.Duration("timeout", 0, "How long to wait for the search response after pressing Enter")
	a.bind("capture.arm_timeout", flags.Lookup("timeout"))

	return cmd
}

// addBrowserFlags registers the flags shared by commands that drive Chrome.
func addBrowserFlags(a *app, cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("url", "", "Portal page to open")
	flags.String("remote", "", "DevTools websocket URL of a running Chrome")
	flags.Bool("headless", false, "Run a launched Chrome without a window")

	a.bind("browser.page_url", flags.Lookup("url"))
	a.bind("browser.remote_url", flags.Lookup("remote"))
	a.bind("browser.headless", flags.Lookup("headless"))
}

func validateSave(save string) error {
	switch save {
	case SaveExport, SaveCourses:
		return nil
	}
	return fmt.Errorf("invalid --save value: %s (must be 'export' or 'courses')", save)
}

// capture installs an interceptor on t, arms the window once the user is
// ready and saves the batch it receives.
func (a *app) capture(ctx context.Context, t capture.Transport, save string) error {
	win := capture.NewWindow(a.cfg.Capture.ArmTimeout)
	ic := capture.NewInterceptor(a.cfg.InterceptorConfig(), func(b capture.Batch) {
		win.Offer(b)
	})
	if err := ic.Install(t); err != nil {
		return err
	}

	prompt := fmt.Sprintf("Open the course search in the browser, press Enter here, then run the search within %s.", a.cfg.Capture.ArmTimeout)
	if err := waitForEnter(ctx, a.in, a.errOut, prompt); err != nil {
		return err
	}

	win.Arm()
	b, err := win.Await(ctx)
	if errors.Is(err, capture.ErrExpired) {
		fmt.Fprintf(a.out, "No course search response captured within %s.\n", a.cfg.Capture.ArmTimeout)
		return withExitCode(ExitNoData, err)
	}
	if err != nil {
		return err
	}
	if b.Len() == 0 {
		fmt.Fprintln(a.out, "The course search returned no courses; nothing saved.")
		return withExitCode(ExitNoData, harvest.ErrNoData)
	}

	return a.saveBatch(b, save)
}

func (a *app) saveBatch(b capture.Batch, save string) error {
	store, err := storage.New(a.cfg.Export.Dir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	var path string
	if save == SaveCourses {
		path, err = store.WriteCourses(b.Courses, a.now())
	} else {
		path, err = store.WriteExport(b, a.now())
	}
	if err != nil {
		return err
	}

	logger.Info("batch saved", logger.Fields{
		"batch":   b.ID,
		"source":  string(b.Source),
		"records": b.Len(),
		"path":    path,
	})
	fmt.Fprintf(a.out, "Saved %d courses to %s\n", len(b.Courses), path)
	return nil
}

// waitForEnter shows prompt and blocks until a line is read from r.
func waitForEnter(ctx context.Context, r io.Reader, w io.Writer, prompt string) error {
	fmt.Fprintln(w, prompt)

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
