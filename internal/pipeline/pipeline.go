// Package pipeline wires the event source, analysis engine, summarizer
// and report sink into the weekly report run. Both the CLI entry point
// and the admin API trigger runs through it.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/tjyana/calendar-slack-analyzer/internal/analyze"
	"github.com/tjyana/calendar-slack-analyzer/internal/config"
	"github.com/tjyana/calendar-slack-analyzer/internal/ics"
	appLog "github.com/tjyana/calendar-slack-analyzer/internal/log"
	"github.com/tjyana/calendar-slack-analyzer/internal/model"
	"github.com/tjyana/calendar-slack-analyzer/internal/report"
	"github.com/tjyana/calendar-slack-analyzer/internal/summarize"
)

// Windows holds the two Monday-to-Sunday analysis windows for one run.
type Windows struct {
	PastStart     time.Time
	PastEnd       time.Time
	UpcomingStart time.Time
	UpcomingEnd   time.Time
}

// ComputeWindows derives the past week (last Monday through Sunday) and
// the upcoming week (this Monday through Sunday) from now, at local day
// boundaries in loc. Both windows are inclusive of both endpoints.
func ComputeWindows(now time.Time, loc *time.Location) Windows {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	// Monday-based weekday index: Monday=0 .. Sunday=6.
	sinceMonday := (int(today.Weekday()) + 6) % 7

	thisMonday := today.AddDate(0, 0, -sinceMonday)
	lastMonday := thisMonday.AddDate(0, 0, -7)

	return Windows{
		PastStart:     lastMonday,
		PastEnd:       endOfDay(lastMonday.AddDate(0, 0, 6)),
		UpcomingStart: thisMonday,
		UpcomingEnd:   endOfDay(thisMonday.AddDate(0, 0, 6)),
	}
}

func endOfDay(dayStart time.Time) time.Time {
	return dayStart.AddDate(0, 0, 1).Add(-time.Second)
}

// periodLabel formats a window as "2025-06-02 to 2025-06-08".
func periodLabel(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// Result is the structured outcome of one pipeline run, before delivery.
type Result struct {
	Analysis *model.AnalysisResult  `json:"analysis"`
	Upcoming *model.UpcomingSummary `json:"upcoming"`
	Digest   analyze.Digest         `json:"digest"`
	Summary  string                 `json:"summary"`
	Faults   []analyze.Fault        `json:"faults,omitempty"`
}

// Runner executes weekly report runs.
type Runner struct {
	cfg        *config.Config
	engine     *analyze.Engine
	fetcher    *ics.Fetcher
	summarizer *summarize.Summarizer
	reporter   *report.Reporter // nil when delivery is disabled (dry runs)
}

// NewRunner builds a Runner. reporter may be nil; Run still produces the
// full structured result, only delivery is skipped.
func NewRunner(cfg *config.Config, cacheDir string, reporter *report.Reporter) (*Runner, error) {
	engine, err := analyze.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:        cfg,
		engine:     engine,
		fetcher:    ics.NewFetcher(cacheDir),
		summarizer: summarize.New(cfg.Summary),
		reporter:   reporter,
	}, nil
}

// collect fetches all configured sources and expands their events into
// raw records within [from, to]. Per-source failures are logged and the
// remaining sources still contribute.
func (r *Runner) collect(ctx context.Context, from, to time.Time) ([]model.RawEvent, error) {
	sources := make([]ics.Source, 0, len(r.cfg.ICS))
	for _, c := range r.cfg.ICS {
		sources = append(sources, ics.Source{ID: c.ID, URL: c.URL})
	}

	results, errs := r.fetcher.FetchAll(ctx, sources)
	if len(results) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("pipeline: all %d sources failed, first error: %w", len(errs), errs[0])
	}

	var parsed []ics.ParsedEvent
	for _, res := range results {
		events, err := ics.Parse(res.Source, res.Body)
		if err != nil {
			appLog.Error("source parse failed, skipping", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	expanded, err := ics.Expand(parsed, ics.ExpandConfig{RangeStart: from, RangeEnd: to})
	if err != nil {
		return nil, err
	}
	return expanded.Events, nil
}

// Run executes one full analysis: both windows are collected, normalized
// and analyzed, and the prose summary is generated (bounded by the
// configured timeout, falling back deterministically).
func (r *Runner) Run(ctx context.Context, now time.Time) (*Result, error) {
	w := ComputeWindows(now, r.engine.Location())

	appLog.Info("analysis starting",
		"past", periodLabel(w.PastStart, w.PastEnd),
		"upcoming", periodLabel(w.UpcomingStart, w.UpcomingEnd),
	)

	pastRaw, err := r.collect(ctx, w.PastStart, w.PastEnd)
	if err != nil {
		return nil, err
	}
	upcomingRaw, err := r.collect(ctx, w.UpcomingStart, w.UpcomingEnd)
	if err != nil {
		return nil, err
	}

	pastEvents, pastFaults := r.engine.Normalize(pastRaw)
	upcomingEvents, upcomingFaults := r.engine.Normalize(upcomingRaw)

	res := &Result{
		Analysis: r.engine.AnalyzeWeek(pastEvents, periodLabel(w.PastStart, w.PastEnd)),
		Upcoming: r.engine.SummarizeUpcoming(upcomingEvents, periodLabel(w.UpcomingStart, w.UpcomingEnd)),
		Faults:   append(pastFaults, upcomingFaults...),
	}
	res.Digest = analyze.BuildDigest(res.Analysis, res.Upcoming)

	if r.cfg.Summary.Enabled {
		sctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Summary.TimeoutSeconds)*time.Second)
		defer cancel()
		res.Summary = r.summarizer.WeekSummary(sctx, res.Digest)
	}

	appLog.Info("analysis complete",
		"past_events", res.Analysis.TotalEvents,
		"upcoming_events", res.Upcoming.TotalEvents,
		"faults", len(res.Faults),
	)
	return res, nil
}

// RunAndSend executes Run and delivers the rendered report. On a pipeline
// failure an error notification is posted before the error is returned.
func (r *Runner) RunAndSend(ctx context.Context, now time.Time) error {
	res, err := r.Run(ctx, now)
	if err != nil {
		if r.reporter != nil {
			if nerr := r.reporter.SendErrorNotification(ctx, err); nerr != nil {
				appLog.Error("error notification failed", nerr)
			}
		}
		return err
	}

	if r.reporter == nil {
		appLog.Info("no reporter configured, skipping delivery")
		return nil
	}

	blocks := report.BuildReport(res.Analysis, res.Upcoming, res.Summary)
	return r.reporter.Send(ctx, blocks)
}
