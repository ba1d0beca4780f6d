package analyze

import (
	"fmt"
	"time"

	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

const (
	dayLabelLayout   = "Monday, January 2"
	agendaTimeLayout = "15:04"

	keyMeetingMinDuration  = time.Hour
	keyMeetingMinAttendees = 5 // exclusive
	focusDayMaxMeetings    = 2
)

// SummarizeUpcoming builds the forward-looking schedule view: per-day
// agendas, flagged key meetings and focus-opportunity days.
//
// Only cancelled events are skipped. Private events are always included
// here, unlike in AnalyzeWeek: an upcoming private meeting still occupies
// the slot, and only its owner reads this report. Agenda entries keep the
// event sequence order handed in by the source.
func (e *Engine) SummarizeUpcoming(events []model.NormalizedEvent, period string) *model.UpcomingSummary {
	sum := &model.UpcomingSummary{
		Period:             period,
		DailySchedule:      make(map[string][]model.AgendaEntry),
		KeyMeetings:        []model.KeyMeeting{},
		FocusOpportunities: []string{},
	}

	for _, ev := range events {
		if ev.IsCancelled {
			continue
		}

		start := ev.Start.In(e.loc)
		day := start.Format(dayLabelLayout)
		timeOfDay := start.Format(agendaTimeLayout)

		title := ev.Summary
		if title == "" {
			title = "No title"
		}

		if _, seen := sum.DailySchedule[day]; !seen {
			sum.DayOrder = append(sum.DayOrder, day)
		}
		sum.DailySchedule[day] = append(sum.DailySchedule[day], model.AgendaEntry{
			Title:         title,
			Time:          timeOfDay,
			Duration:      ev.Duration,
			AttendeeCount: ev.AttendeeCount,
		})
		sum.TotalEvents++

		// Key meetings: duration is checked first, so a long meeting with a
		// crowd still reads "Long duration".
		if ev.Duration > keyMeetingMinDuration || ev.AttendeeCount > keyMeetingMinAttendees {
			reason := "Many attendees"
			if ev.Duration > keyMeetingMinDuration {
				reason = "Long duration"
			}
			sum.KeyMeetings = append(sum.KeyMeetings, model.KeyMeeting{
				Title:  title,
				Day:    day,
				Time:   timeOfDay,
				Reason: reason,
			})
		}
	}

	// Truncate in discovery order, not by importance.
	if len(sum.KeyMeetings) > e.maxKeyMeetings {
		sum.KeyMeetings = sum.KeyMeetings[:e.maxKeyMeetings]
	}

	for _, day := range sum.DayOrder {
		if n := len(sum.DailySchedule[day]); n <= focusDayMaxMeetings {
			sum.FocusOpportunities = append(sum.FocusOpportunities,
				fmt.Sprintf("%s - Good for focus work (%d meetings)", day, n))
		}
	}

	return sum
}
