package analyze

import (
	"errors"
	"strings"
	"time"

	appLog "github.com/tjyana/calendar-slack-analyzer/internal/log"
	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

const allDayLayout = "2006-01-02"

var errNoStart = errors.New("event has neither a timed nor an all-day start")

// Normalize converts raw events into canonical NormalizedEvents.
//
// Timed starts/ends are taken verbatim (they are already zoned); all-day
// dates resolve to local midnight in the analysis timezone. An event with
// no usable start is dropped with a Fault; a missing or inverted end
// degrades to a zero duration with a Fault but keeps the event. The batch
// never aborts.
func (e *Engine) Normalize(raw []model.RawEvent) ([]model.NormalizedEvent, []Fault) {
	out := make([]model.NormalizedEvent, 0, len(raw))
	var faults []Fault

	for _, ev := range raw {
		n, fault, drop := e.normalizeOne(ev)
		if fault != nil {
			faults = append(faults, *fault)
			appLog.Warn("event fault",
				"uid", ev.UID,
				"source", ev.SourceID,
				"summary", ev.Summary,
				"reason", fault.Reason,
				"dropped", drop,
			)
		}
		if drop {
			continue
		}
		out = append(out, n)
	}

	return out, faults
}

func (e *Engine) normalizeOne(ev model.RawEvent) (model.NormalizedEvent, *Fault, bool) {
	start, err := e.resolveTime(ev.Start)
	if err != nil {
		return model.NormalizedEvent{}, &Fault{UID: ev.UID, Summary: ev.Summary, Reason: err.Error()}, true
	}

	n := model.NormalizedEvent{
		Start:         start,
		Summary:       ev.Summary,
		Title:         strings.ToLower(ev.Summary),
		Description:   strings.ToLower(ev.Description),
		AttendeeCount: ev.Attendees,
		IsCancelled:   ev.Status == model.StatusCancelled,
		IsPrivate:     ev.Visibility == model.VisibilityPrivate,
	}
	if n.AttendeeCount < 0 {
		n.AttendeeCount = 0
	}

	end, err := e.resolveTime(ev.End)
	if err != nil || end.Before(start) {
		// Duration clamps to zero; the event still counts everywhere else.
		n.End = start
		n.Duration = 0
		reason := "end before start"
		if err != nil {
			reason = "missing or unparseable end"
		}
		return n, &Fault{UID: ev.UID, Summary: ev.Summary, Reason: reason}, false
	}

	n.End = end
	n.Duration = end.Sub(start)
	return n, nil, false
}

// resolveTime resolves the tagged time variant. Timed values win when both
// are somehow present.
func (e *Engine) resolveTime(t model.EventTime) (time.Time, error) {
	switch {
	case !t.DateTime.IsZero():
		return t.DateTime, nil
	case t.IsAllDay():
		return time.ParseInLocation(allDayLayout, t.Date, e.loc)
	default:
		return time.Time{}, errNoStart
	}
}
