package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/timebox/internal/config"
	"github.com/pfrederiksen/timebox/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitNoData  = 2
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

// app is the state shared by every subcommand of one root command.
type app struct {
	v   *viper.Viper
	cfg *config.Config

	configPath string
	verbose    bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{
		v:      viper.New(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timebox",
		Short: "Collect course offerings and build a conflict-free timetable",
		Long: `timebox collects course offerings from the university's course
registration portal, either by intercepting its search API or by scrolling
through its results grid, and builds a weekly timetable from the courses you
select, rejecting any that overlap.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ./timebox.yaml or ~/.config/timebox/timebox.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: console or json")
	flags.String("dir", "", "Export directory")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")

	a.bind("log.level", flags.Lookup("log-level"))
	a.bind("log.format", flags.Lookup("log-format"))
	a.bind("export.dir", flags.Lookup("dir"))

	cmd.AddCommand(
		newCaptureCmd(a),
		newSweepCmd(a),
		newCoursesCmd(a),
		newTimetableCmd(a),
	)
	return cmd
}

// configKey annotates a flag with the config key it overrides.
const configKey = "timebox_config_key"

// bind lets a flag override the config key when it is set. Several
// subcommands may bind the same key; only the running command's flags are
// bound, in setup.
func (a *app) bind(key string, flag *pflag.Flag) {
	if flag.Annotations == nil {
		flag.Annotations = make(map[string][]string)
	}
	flag.Annotations[configKey] = []string{key}
}

func (a *app) bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys, ok := f.Annotations[configKey]
		if !ok || err != nil {
			return
		}
		err = a.v.BindPFlag(keys[0], f)
	})
	return err
}

// setup loads configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := a.bindFlags(cmd); err != nil {
		return err
	}
	cfg, err := config.LoadFrom(a.v, a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	l, err := logger.Configure(cfg.Log.Level, cfg.Log.Format, a.errOut)
	if err != nil {
		return err
	}
	logger.SetDefault(l)

	a.cfg = cfg
	logger.Debug("configuration loaded", logger.Fields{
		"config":     a.configPath,
		"export_dir": cfg.Export.Dir,
	})
	return nil
}

// reportMetrics writes the run's counters and timings at debug level.
func reportMetrics() {
	logger.Debug("run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
}

// Execute runs the CLI and exits with the command's exit code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	code := ExitCode(err)
	if err != nil && code != ExitNoData {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	reportMetrics()
	logger.Default().Sync()
	os.Exit(code)
}
