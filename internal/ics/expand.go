package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "github.com/tjyana/calendar-slack-analyzer/internal/log"
	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// RangeStart / RangeEnd define the inclusive time window for
	// occurrences, typically the local day boundaries of the analysis
	// window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent is a safety cap to avoid infinite or
	// extremely large expansions. If zero, defaultMaxOccurrencesPerEvent
	// is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the list of expanded raw events and information
// about truncation.
type ExpandResult struct {
	Events []model.RawEvent
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
}

// Expand takes parsed events (typically from one or more ICS sources) and
// expands them into concrete raw events within the given window. It
// handles:
//
//   - Single non-recurring events
//   - RRULE-based recurrence
//   - EXDATE exception removal
//   - RECURRENCE-ID overrides
//   - All-day semantics (emitted as date-only records)
//
// The result is sorted by start so the engine receives the stable
// chronological order its agenda bucketing relies on.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID.
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	uidOrder := make([]string, 0, len(events))

	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uidOrder = append(uidOrder, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	all := make([]model.RawEvent, 0)

	for _, uid := range uidOrder {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			all = append(all, occ...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Warn("expand: occurrences truncated",
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return sortKey(all[i]).Before(sortKey(all[j]))
	})

	result.Events = all
	return result, nil
}

// sortKey resolves an event's start for ordering purposes. All-day dates
// sort at UTC midnight; the engine re-resolves them in the analysis zone.
func sortKey(ev model.RawEvent) time.Time {
	if !ev.Start.IsAllDay() {
		return ev.Start.DateTime
	}
	t, err := time.Parse("2006-01-02", ev.Start.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.RawEvent, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.RawEvent {
	var out []model.RawEvent

	baseStart := ev.Start
	baseEnd := ev.End
	if baseEnd.IsZero() {
		// Feeds may omit DTEND; all-day events span their day.
		if ev.AllDay {
			baseEnd = baseStart.Add(24 * time.Hour)
		} else {
			baseEnd = baseStart
		}
	}

	if !timeRangesOverlap(baseStart, baseEnd, cfg.RangeStart, cfg.RangeEnd) {
		return out
	}

	// Apply any override whose RECURRENCE-ID matches this start.
	if o, ok := findOverrideForStart(overrides, baseStart); ok {
		baseStart = o.Start
		baseEnd = o.End
		ev = o
	}

	out = append(out, makeRawEvent(ev, baseStart, baseEnd))
	return out
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.RawEvent, bool) {
	out := make([]model.RawEvent, 0)
	hitCap := false

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)

	for _, ex := range ev.ExDates {
		// Best effort: align EXDATE location with the event's start.
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Adjust range into the event's original location for Between().
	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	for _, occStart := range occTimes {
		var occEnd time.Time
		if ev.AllDay {
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.Add(24 * time.Hour)
		} else {
			occEnd = occStart.Add(ev.End.Sub(ev.Start))
		}

		baseStart := occStart
		baseEnd := occEnd
		baseEv := ev

		if o, ok := findOverrideForStart(overrides, occStart); ok {
			baseStart = o.Start
			baseEnd = o.End
			baseEv = o
		}

		out = append(out, makeRawEvent(baseEv, baseStart, baseEnd))
	}

	return out, hitCap
}

// findOverrideForStart finds an override event whose RECURRENCE-ID matches
// the given baseStart with exact time equality.
func findOverrideForStart(overrides []ParsedEvent, baseStart time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		rid := ov.Recurrence.In(baseStart.Location())
		if rid.Equal(baseStart) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeRawEvent converts a (possibly overridden) ParsedEvent plus one
// concrete start/end into the engine's raw record. All-day occurrences
// carry the date-only variant; the engine's normalizer resolves it in the
// analysis timezone.
func makeRawEvent(ev ParsedEvent, start, end time.Time) model.RawEvent {
	raw := model.RawEvent{
		SourceID:    ev.Source.ID,
		UID:         ev.UID,
		Summary:     ev.Summary,
		Description: ev.Description,
		Attendees:   ev.Attendees,
	}
	if ev.Cancelled {
		raw.Status = model.StatusCancelled
	}
	if ev.Private {
		raw.Visibility = model.VisibilityPrivate
	}

	if ev.AllDay {
		raw.Start = model.EventTime{Date: start.Format("2006-01-02")}
		raw.End = model.EventTime{Date: end.Format("2006-01-02")}
	} else {
		raw.Start = model.EventTime{DateTime: start}
		raw.End = model.EventTime{DateTime: end}
	}
	return raw
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
