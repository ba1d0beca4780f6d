// Package analyze is the event analysis engine: it turns normalized
// calendar events into aggregated statistics, detected patterns and
// ordered insight strings, plus a forward-looking upcoming-week summary.
//
// The engine is pure: it performs no I/O, keeps no state between calls,
// and every entry point allocates its own result. Fetching events and
// rendering/delivering reports live in internal/ics and internal/report.
package analyze

import (
	"strings"
	"time"

	"github.com/tjyana/calendar-slack-analyzer/internal/config"
)

// categoryRule is a CategoryRule with keywords pre-lowercased, so the
// per-event scan does no case work.
type categoryRule struct {
	name     string
	keywords []string
}

// Engine holds the immutable analysis configuration. Construct with
// NewEngine; a zero Engine is not usable.
type Engine struct {
	loc            *time.Location
	workStart      int // inclusive local hour
	workEnd        int // exclusive local hour
	includePrivate bool
	maxKeyMeetings int
	rules          []categoryRule
}

// NewEngine validates cfg and builds an Engine from it. Configuration
// faults (bad timezone, inverted working hours, malformed category rules)
// surface here, before any event is processed.
func NewEngine(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	rules := make([]categoryRule, 0, len(cfg.Categories))
	for _, r := range cfg.Categories {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kws = append(kws, strings.ToLower(kw))
		}
		rules = append(rules, categoryRule{name: r.Name, keywords: kws})
	}

	return &Engine{
		loc:            loc,
		workStart:      cfg.WorkingHoursStart,
		workEnd:        cfg.WorkingHoursEnd,
		includePrivate: cfg.IncludePrivateEvents,
		maxKeyMeetings: cfg.MaxKeyMeetings,
		rules:          rules,
	}, nil
}

// Location returns the analysis timezone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Fault records one event that could not be fully processed. Faults are
// recoverable by definition: the event is dropped (or degraded) and the
// batch continues. Callers may log, count or ignore them.
type Fault struct {
	UID     string `json:"uid"`
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}
