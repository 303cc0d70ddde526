package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/autostudy/pkg/browser"
	"github.com/entrhq/autostudy/pkg/config"
	"github.com/entrhq/autostudy/pkg/logging"
	"github.com/entrhq/autostudy/pkg/monitor"
	"github.com/entrhq/autostudy/pkg/overlay"
	"github.com/entrhq/autostudy/pkg/schedule"
	"github.com/entrhq/autostudy/pkg/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// teardownTimeout bounds the overlay removal on shutdown.
const teardownTimeout = 5 * time.Second

// runOptions holds the command-line overrides of the run command.
type runOptions struct {
	configPath string
	url        string
	match      string
	headless   bool
	tui        bool
	interval   time.Duration
	verbosity  string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the course page and monitor it until interrupted",
		Example: `  # Visible browser, so you can log in first
  autostudy run --url https://sysaq.sdu.edu.cn/lab-study-front/trainTask/123

  # With a config file and the dashboard
  autostudy run --config autostudy.yaml --tui`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	opts.bind(cmd.Flags())
	return cmd
}

func (o *runOptions) bind(flags *pflag.FlagSet) {
	flags.StringVarP(&o.configPath, "config", "c", "", "Path to configuration file (YAML)")
	flags.StringVar(&o.url, "url", "", "Course page address")
	flags.StringVar(&o.match, "match", "", "Glob the page address must match (empty matches all)")
	flags.BoolVar(&o.headless, "headless", false, "Run the browser without a window")
	flags.BoolVar(&o.tui, "tui", false, "Show the full-screen dashboard")
	flags.DurationVar(&o.interval, "interval", monitor.DefaultInterval, "Time between checks")
	flags.StringVarP(&o.verbosity, "verbosity", "v", "", "Logging verbosity: quiet, normal, verbose or debug")
}

// loadRunConfig loads the configuration file and applies the flags the
// user set explicitly.
func loadRunConfig(cmd *cobra.Command, opts *runOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = opts.url
	}
	if flags.Changed("match") {
		cfg.Match = opts.match
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = opts.headless
	}
	if flags.Changed("tui") {
		cfg.TUI = opts.tui
	}
	if flags.Changed("interval") {
		cfg.Timing.Interval = opts.interval
	}
	if flags.Changed("verbosity") {
		cfg.Logging.Verbosity = opts.verbosity
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run launches the browser and drives the monitor until ctx is cancelled,
// a signal arrives, the page closes or the dashboard is quit.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := openLogger(cfg, os.Stderr)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	matcher, err := cfg.Matcher()
	if err != nil {
		return err
	}
	monCfg := cfg.MonitorConfig()
	monCfg.Matcher = matcher

	manager := browser.NewManager(logger.Named("browser"))
	if err := manager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	session, err := manager.Launch(cfg.LaunchOptions())
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	if err := session.Navigate(cfg.URL, browser.NavigateOptions{}); err != nil {
		return fmt.Errorf("failed to open course page: %w", err)
	}
	session.OnClose(func() {
		logger.Infof("course page closed")
		cancel()
	})

	adapter := browser.NewAdapter(session, cfg.Selectors, logger.Named("page"))
	loop := schedule.NewLoop()
	mon, err := monitor.New(adapter, loop, logger.Named("monitor"), monCfg)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	dashboardDone := make(chan struct{})
	if cfg.TUI {
		dashboard := tui.New(cfg.URL)
		mon.OnSnapshot(dashboard.Observer())
		go func() {
			defer close(dashboardDone)
			if _, err := dashboard.Run(ctx); err != nil {
				logger.Errorf("%v", err)
			}
			cancel()
		}()
	} else {
		close(dashboardDone)
		mon.OnSnapshot(newStatusPrinter(out).print)
		fmt.Fprintln(out, banner(cfg.URL, logger.LogPath()))
	}

	loop.Post(func() { mon.Start(ctx) })
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warnf("monitor loop ended: %v", err)
	}

	teardownCtx, teardownCancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer teardownCancel()
	mon.Stop(teardownCtx)
	<-dashboardDone

	logger.Infof("autostudy stopped")
	return nil
}

// newLogger opens the session log file.
var newLogger = logging.NewLogger

// openLogger opens the session log. When the file cannot be opened the
// console fallback is used, except under the dashboard, whose alternate
// screen would be corrupted by it; logging is then discarded.
func openLogger(cfg *config.Config, stderr io.Writer) *logging.Logger {
	logger, err := newLogger("autostudy", cfg.Level())
	if err == nil {
		return logger
	}
	if cfg.TUI {
		logger.Close()
		return logging.Discard()
	}
	fmt.Fprintf(stderr, "Warning: %v\n", err)
	return logger
}

func banner(url, logPath string) string {
	if logPath == "" {
		return fmt.Sprintf("Monitoring %s. Press Ctrl+C to stop.", url)
	}
	return fmt.Sprintf("Monitoring %s (log: %s). Press Ctrl+C to stop.", url, logPath)
}

// statusPrinter writes the status line whenever it changes.
type statusPrinter struct {
	out  io.Writer
	last string
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{out: out}
}

func (p *statusPrinter) print(s monitor.Snapshot) {
	line := overlay.StatusLine(s.View)
	if !s.OnTarget {
		line = "waiting for a course page: " + s.URL
	}
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprintf(p.out, "%s %s\n", s.At.Format(time.TimeOnly), line)
}
