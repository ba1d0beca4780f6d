package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tjyana/calendar-slack-analyzer/internal/config"
	appLog "github.com/tjyana/calendar-slack-analyzer/internal/log"
	"github.com/tjyana/calendar-slack-analyzer/internal/pipeline"
	"github.com/tjyana/calendar-slack-analyzer/internal/report"
	"github.com/tjyana/calendar-slack-analyzer/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	cacheDir   string
	logLevel   string
	once       bool
	dryRun     bool
}

func main() {
	appLog.Info("calanalyzer starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI flags override the config file when set.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	level := conf.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"report_cron", conf.ReportCron,
		"working_hours_start", conf.WorkingHoursStart,
		"working_hours_end", conf.WorkingHoursEnd,
		"ics_count", len(conf.ICS),
		"summary_enabled", conf.Summary.Enabled,
		"once", flags.once,
		"dry_run", flags.dryRun,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	newRunner := func(c *config.Config) (*pipeline.Runner, error) {
		return pipeline.NewRunner(c, flags.cacheDir, buildReporter(ctx, c, flags.dryRun))
	}

	runner, err := newRunner(conf)
	if err != nil {
		appLog.Error("failed to initialize pipeline", err)
		os.Exit(1)
	}

	// runReport is one full report cycle. A dry run prints the structured
	// result to stdout instead of delivering it.
	runReport := func(r *pipeline.Runner) error {
		if !flags.dryRun {
			return r.RunAndSend(ctx, time.Now())
		}
		res, err := r.Run(ctx, time.Now())
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if flags.once {
		if err := runReport(runner); err != nil {
			appLog.Error("report run failed", err)
			os.Exit(1)
		}
		appLog.Info("report run complete, exiting")
		return
	}

	adminSrv := web.NewServer(conf, flags.configPath, runner, newRunner)

	// Scheduled runs fire in the analysis timezone so "0 9 * * MON" means
	// local Monday morning, not server-clock Monday. The runner is fetched
	// per run so config updates applied via the admin API take effect
	// without a restart; the cron expression itself is bound here.
	sched := cron.New(cron.WithLocation(conf.Location()))
	if _, err := sched.AddFunc(conf.ReportCron, func() {
		if err := runReport(adminSrv.CurrentRunner()); err != nil {
			appLog.Error("scheduled report run failed", err)
		}
	}); err != nil {
		appLog.Error("invalid report schedule", err, "report_cron", conf.ReportCron)
		os.Exit(1)
	}
	sched.Start()

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: adminSrv.Handler(),
	}
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown failed", err)
	}
	<-sched.Stop().Done()

	appLog.Info("calanalyzer exiting")
}

// buildReporter constructs the Slack reporter, or nil when delivery is
// disabled (dry runs or no token configured). A failing auth check at
// construction is surfaced immediately instead of at the next scheduled
// run, but the reporter is kept: the outage may be transient.
func buildReporter(ctx context.Context, c *config.Config, dryRun bool) *report.Reporter {
	if dryRun {
		appLog.Info("dry run: Slack delivery disabled")
		return nil
	}
	rep, err := report.NewReporter(c.Slack)
	if err != nil {
		appLog.Info("Slack delivery disabled", "reason", err.Error())
		return nil
	}

	checkCtx, checkCancel := context.WithTimeout(ctx, 10*time.Second)
	defer checkCancel()
	if err := rep.TestConnection(checkCtx); err != nil {
		appLog.Warn("slack auth check failed; delivery may not work", "err", err)
	}
	return rep
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/calanalyzer/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.cacheDir, "cache", "/var/lib/calanalyzer/ics-cache", "Directory for the ICS fetch cache")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one analyze+report cycle and exit")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "Run the pipeline without sending to Slack")

	flag.Parse()

	return cfg
}
