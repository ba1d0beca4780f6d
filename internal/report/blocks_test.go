package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{45 * time.Minute, "45m"},
		{time.Hour, "1h 0m"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{30 * time.Second, "0m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		in   model.Category
		want string
	}{
		{"team_meeting", "Team Meeting"},
		{"standup", "Standup"},
		{"one_on_one", "One On One"},
	}
	for _, tt := range tests {
		if got := categoryLabel(tt.in); got != tt.want {
			t.Errorf("categoryLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func sampleAnalysis() *model.AnalysisResult {
	return &model.AnalysisResult{
		Period:           "2025-06-02 to 2025-06-08",
		TotalEvents:      3,
		TotalMeetingTime: 3 * time.Hour,
		WorkingHoursTime: 2 * time.Hour,
		AfterHoursTime:   time.Hour,
		DailyBreakdown: map[string]*model.DailyStat{
			"Monday": {Events: 3, MeetingTime: 3 * time.Hour},
		},
		DayOrder: []string{"Monday"},
		CategoryBreakdown: map[model.Category]*model.CategoryStat{
			"standup": {Count: 3, TotalTime: 3 * time.Hour},
		},
		CategoryOrder: []model.Category{"standup"},
		Insights:      []string{"📅 Light meeting week - good for deep work"},
	}
}

func sampleUpcoming(keyMeetings int) *model.UpcomingSummary {
	u := &model.UpcomingSummary{
		Period:      "2025-06-09 to 2025-06-15",
		TotalEvents: 2,
		DailySchedule: map[string][]model.AgendaEntry{
			"Monday, June 9": {
				{Title: "Standup", Time: "09:00", Duration: 30 * time.Minute, AttendeeCount: 5},
				{Title: "Planning", Time: "14:00", Duration: time.Hour, AttendeeCount: 4},
			},
		},
		DayOrder:           []string{"Monday, June 9"},
		FocusOpportunities: []string{"Monday, June 9 - Good for focus work (2 meetings)"},
	}
	for i := 0; i < keyMeetings; i++ {
		u.KeyMeetings = append(u.KeyMeetings, model.KeyMeeting{
			Title:  fmt.Sprintf("Big %d", i),
			Day:    "Monday, June 9",
			Time:   "09:00",
			Reason: "Long duration",
		})
	}
	return u
}

// blockTexts flattens every text fragment in the block list for simple
// substring assertions.
func blockTexts(blocks []slack.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		switch v := blk.(type) {
		case *slack.SectionBlock:
			if v.Text != nil {
				b.WriteString(v.Text.Text)
				b.WriteString("\n")
			}
		case *slack.HeaderBlock:
			if v.Text != nil {
				b.WriteString(v.Text.Text)
				b.WriteString("\n")
			}
		case *slack.ContextBlock:
			for _, el := range v.ContextElements.Elements {
				if txt, ok := el.(*slack.TextBlockObject); ok {
					b.WriteString(txt.Text)
					b.WriteString("\n")
				}
			}
		}
	}
	return b.String()
}

func TestBuildReportSections(t *testing.T) {
	blocks := BuildReport(sampleAnalysis(), sampleUpcoming(1), "This week you had a light meeting week.")
	text := blockTexts(blocks)

	for _, want := range []string{
		"Weekly Calendar Report",
		"Week Summary",
		"This week you had a light meeting week.",
		"Past Week Analysis",
		"*Total Meetings:* 3",
		"*Working Hours:* 2h 0m",
		"Daily Breakdown",
		"Monday: 3 meetings (3h 0m)",
		"Standup: 3 meetings",
		"Light meeting week",
		"Upcoming Week Preview",
		"*Total Scheduled Meetings:* 2",
		"Key Meetings",
		"Focus Opportunities",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q\nrendered:\n%s", want, text)
		}
	}
}

func TestBuildReportScheduleDetailToggle(t *testing.T) {
	t.Run("no summary renders full schedule", func(t *testing.T) {
		text := blockTexts(BuildReport(sampleAnalysis(), sampleUpcoming(0), ""))
		if !strings.Contains(text, "09:00 Standup (30m, 5 attendees)") {
			t.Errorf("full agenda missing:\n%s", text)
		}
		if strings.Contains(text, "Week Summary") {
			t.Error("summary section rendered without a summary")
		}
	})

	t.Run("with summary renders brief counts", func(t *testing.T) {
		text := blockTexts(BuildReport(sampleAnalysis(), sampleUpcoming(0), "prose"))
		if !strings.Contains(text, "*Meetings per day:* Monday (2)") {
			t.Errorf("brief counts missing:\n%s", text)
		}
		if strings.Contains(text, "09:00 Standup") {
			t.Error("full agenda rendered despite summary")
		}
	})
}

func TestBuildReportCapsRenderedKeyMeetings(t *testing.T) {
	text := blockTexts(BuildReport(sampleAnalysis(), sampleUpcoming(8), ""))

	if !strings.Contains(text, "Big 4") {
		t.Error("fifth key meeting missing")
	}
	if strings.Contains(text, "Big 5") {
		t.Error("more than five key meetings rendered")
	}
}

func TestBuildReportEmptyWeek(t *testing.T) {
	a := &model.AnalysisResult{Period: "p", Insights: []string{}}
	u := &model.UpcomingSummary{Period: "p"}

	text := blockTexts(BuildReport(a, u, ""))
	if !strings.Contains(text, "*Total Meetings:* 0") {
		t.Errorf("zero week overview missing:\n%s", text)
	}
	if strings.Contains(text, "Daily Breakdown") || strings.Contains(text, "Key Insights") {
		t.Error("empty sections rendered")
	}
}
