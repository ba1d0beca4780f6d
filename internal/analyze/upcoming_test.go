package analyze

import (
	"strings"
	"testing"
	"time"

	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

func TestSummarizeUpcomingEmpty(t *testing.T) {
	e := testEngine(t)

	sum := e.SummarizeUpcoming(nil, "empty")
	if sum.TotalEvents != 0 || len(sum.DailySchedule) != 0 {
		t.Errorf("summary = %+v, want zero result", sum)
	}
	if sum.KeyMeetings == nil || sum.FocusOpportunities == nil {
		t.Error("lists are nil, want empty lists")
	}
}

func TestSummarizeUpcomingAgenda(t *testing.T) {
	e := testEngine(t)

	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	events := []model.NormalizedEvent{
		timedEvent(monday.Add(9*time.Hour), 30*time.Minute, "Standup", 5),
		timedEvent(monday.Add(14*time.Hour), time.Hour, "Planning", 4),
		timedEvent(monday.AddDate(0, 0, 1).Add(10*time.Hour), time.Hour, "Retro", 6),
	}

	sum := e.SummarizeUpcoming(events, "next week")

	if sum.TotalEvents != 3 {
		t.Fatalf("TotalEvents = %d, want 3", sum.TotalEvents)
	}
	wantDays := []string{"Monday, June 9", "Tuesday, June 10"}
	if len(sum.DayOrder) != 2 || sum.DayOrder[0] != wantDays[0] || sum.DayOrder[1] != wantDays[1] {
		t.Fatalf("DayOrder = %v, want %v", sum.DayOrder, wantDays)
	}

	mon := sum.DailySchedule[wantDays[0]]
	if len(mon) != 2 {
		t.Fatalf("Monday agenda has %d entries, want 2", len(mon))
	}
	// Agenda preserves event sequence order.
	if mon[0].Title != "Standup" || mon[1].Title != "Planning" {
		t.Errorf("Monday agenda order = %q, %q", mon[0].Title, mon[1].Title)
	}
	if mon[0].Time != "09:00" {
		t.Errorf("entry time = %q, want 09:00", mon[0].Time)
	}
	if mon[0].Duration != 30*time.Minute {
		t.Errorf("entry duration = %v, want raw 30m", mon[0].Duration)
	}
}

func TestSummarizeUpcomingKeyMeetingReasons(t *testing.T) {
	e := testEngine(t)
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		dur        time.Duration
		attendees  int
		wantKey    bool
		wantReason string
	}{
		{
			name:       "ninety minutes with two attendees is long duration",
			dur:        90 * time.Minute,
			attendees:  2,
			wantKey:    true,
			wantReason: "Long duration",
		},
		{
			name:       "short meeting with a crowd is many attendees",
			dur:        30 * time.Minute,
			attendees:  8,
			wantKey:    true,
			wantReason: "Many attendees",
		},
		{
			name:       "both conditions hold - duration wins",
			dur:        2 * time.Hour,
			attendees:  12,
			wantKey:    true,
			wantReason: "Long duration",
		},
		{
			name:      "exactly one hour and five attendees is not key",
			dur:       time.Hour,
			attendees: 5,
			wantKey:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := timedEvent(monday.Add(10*time.Hour), tt.dur, "Meeting", tt.attendees)
			sum := e.SummarizeUpcoming([]model.NormalizedEvent{ev}, "p")

			if !tt.wantKey {
				if len(sum.KeyMeetings) != 0 {
					t.Fatalf("KeyMeetings = %+v, want none", sum.KeyMeetings)
				}
				return
			}
			if len(sum.KeyMeetings) != 1 {
				t.Fatalf("got %d key meetings, want 1", len(sum.KeyMeetings))
			}
			if sum.KeyMeetings[0].Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", sum.KeyMeetings[0].Reason, tt.wantReason)
			}
		})
	}
}

func TestSummarizeUpcomingKeyMeetingTruncation(t *testing.T) {
	cfg := testConfig()
	cfg.MaxKeyMeetings = 2
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	var events []model.NormalizedEvent
	for i := 0; i < 4; i++ {
		events = append(events, timedEvent(monday.Add(time.Duration(9+i)*time.Hour),
			2*time.Hour, "Big "+strings.Repeat("I", i+1), 2))
	}

	sum := e.SummarizeUpcoming(events, "p")
	if len(sum.KeyMeetings) != 2 {
		t.Fatalf("got %d key meetings, want 2", len(sum.KeyMeetings))
	}
	// Discovery order preserved, not re-sorted by importance.
	if sum.KeyMeetings[0].Title != "Big I" || sum.KeyMeetings[1].Title != "Big II" {
		t.Errorf("truncation kept %q, %q; want the first two discovered",
			sum.KeyMeetings[0].Title, sum.KeyMeetings[1].Title)
	}
}

func TestSummarizeUpcomingFocusOpportunities(t *testing.T) {
	e := testEngine(t)

	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	var events []model.NormalizedEvent
	// Monday: 2 meetings (qualifies), Tuesday: 3 (does not).
	for i := 0; i < 2; i++ {
		events = append(events, timedEvent(monday.Add(time.Duration(9+i)*time.Hour), 30*time.Minute, "m", 2))
	}
	for i := 0; i < 3; i++ {
		events = append(events, timedEvent(tuesday.Add(time.Duration(9+i)*time.Hour), 30*time.Minute, "m", 2))
	}

	sum := e.SummarizeUpcoming(events, "p")

	if len(sum.FocusOpportunities) != 1 {
		t.Fatalf("FocusOpportunities = %v, want exactly one", sum.FocusOpportunities)
	}
	if !strings.Contains(sum.FocusOpportunities[0], "Monday, June 9") ||
		!strings.Contains(sum.FocusOpportunities[0], "(2 meetings)") {
		t.Errorf("focus opportunity = %q", sum.FocusOpportunities[0])
	}
}

func TestSummarizeUpcomingIncludesPrivateSkipsCancelled(t *testing.T) {
	// Upcoming summaries apply no privacy filter, only the cancelled one.
	e := testEngine(t)

	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	private := timedEvent(monday.Add(9*time.Hour), time.Hour, "secret", 2)
	private.IsPrivate = true
	cancelled := timedEvent(monday.Add(10*time.Hour), time.Hour, "dead", 2)
	cancelled.IsCancelled = true

	sum := e.SummarizeUpcoming([]model.NormalizedEvent{private, cancelled}, "p")
	if sum.TotalEvents != 1 {
		t.Fatalf("TotalEvents = %d, want 1 (private in, cancelled out)", sum.TotalEvents)
	}
	if sum.DailySchedule["Monday, June 9"][0].Title != "secret" {
		t.Error("private event missing from agenda")
	}
}

func TestSummarizeUpcomingUntitledEvent(t *testing.T) {
	e := testEngine(t)
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	ev := timedEvent(monday.Add(9*time.Hour), 2*time.Hour, "", 2)
	sum := e.SummarizeUpcoming([]model.NormalizedEvent{ev}, "p")

	if got := sum.DailySchedule["Monday, June 9"][0].Title; got != "No title" {
		t.Errorf("title = %q, want %q", got, "No title")
	}
	if got := sum.KeyMeetings[0].Title; got != "No title" {
		t.Errorf("key meeting title = %q, want %q", got, "No title")
	}
}

