package analyze

import (
	"sort"
	"time"

	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

// CategoryCount pairs a category with its event count.
type CategoryCount struct {
	Category model.Category `json:"category"`
	Count    int            `json:"count"`
}

// Digest is the compact statistics digest handed to a text summarizer.
// It is a deterministic function of the two result structures and carries
// everything a prose summary needs, so generation (or its fallback) never
// has to reach back into the engine.
type Digest struct {
	Period           string        `json:"period"`
	TotalEvents      int           `json:"total_events"`
	TotalMeetingTime time.Duration `json:"total_meeting_time"`
	WorkingHoursTime time.Duration `json:"working_hours_time"`
	AfterHoursTime   time.Duration `json:"after_hours_time"`

	// TopCategories holds at most three categories, count descending,
	// first-seen order on equal counts.
	TopCategories []CategoryCount `json:"top_categories"`

	BusiestDay  string `json:"busiest_day,omitempty"`
	LightestDay string `json:"lightest_day,omitempty"`

	UpcomingEvents   int `json:"upcoming_events"`
	UpcomingKeyCount int `json:"upcoming_key_count"`
	FocusDayCount    int `json:"focus_day_count"`
}

// BuildDigest condenses an analysis result and an upcoming summary into a
// Digest. Either argument may be nil; the corresponding fields stay zero.
func BuildDigest(a *model.AnalysisResult, u *model.UpcomingSummary) Digest {
	var d Digest

	if a != nil {
		d.Period = a.Period
		d.TotalEvents = a.TotalEvents
		d.TotalMeetingTime = a.TotalMeetingTime
		d.WorkingHoursTime = a.WorkingHoursTime
		d.AfterHoursTime = a.AfterHoursTime

		counts := make([]CategoryCount, 0, len(a.CategoryOrder))
		for _, cat := range a.CategoryOrder {
			counts = append(counts, CategoryCount{Category: cat, Count: a.CategoryBreakdown[cat].Count})
		}
		// Stable sort keeps first-seen order among equal counts.
		sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
		if len(counts) > 3 {
			counts = counts[:3]
		}
		d.TopCategories = counts

		if a.Patterns.BusiestDay != nil {
			d.BusiestDay = a.Patterns.BusiestDay.Day
		}
		if a.Patterns.LightestDay != nil {
			d.LightestDay = a.Patterns.LightestDay.Day
		}
	}

	if u != nil {
		d.UpcomingEvents = u.TotalEvents
		d.UpcomingKeyCount = len(u.KeyMeetings)
		d.FocusDayCount = len(u.FocusOpportunities)
	}

	return d
}
