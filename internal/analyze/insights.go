package analyze

import (
	"fmt"

	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

// identifyPatterns derives the busiest/lightest day and the dominant
// category from an aggregated result. Ties break on first-seen order: the
// scans walk the explicit order slices and only a strictly greater (or
// smaller) value displaces the current pick.
func identifyPatterns(res *model.AnalysisResult) model.Patterns {
	var p model.Patterns

	for _, day := range res.DayOrder {
		n := res.DailyBreakdown[day].Events
		if p.BusiestDay == nil || n > p.BusiestDay.Events {
			p.BusiestDay = &model.DayPattern{Day: day, Events: n}
		}
		if p.LightestDay == nil || n < p.LightestDay.Events {
			p.LightestDay = &model.DayPattern{Day: day, Events: n}
		}
	}

	best := -1
	for _, cat := range res.CategoryOrder {
		if n := res.CategoryBreakdown[cat].Count; n > best {
			best = n
			p.DominantCategory = cat
		}
	}

	return p
}

// generateInsights builds the ordered insight list. Each of the five
// checks is independent and conditionally appended; the report renders
// them as an ordered list, so neither conditions nor order may drift.
func generateInsights(res *model.AnalysisResult) []string {
	insights := []string{}

	// Meeting load. Heavy and light notes are mutually exclusive; the band
	// in between produces nothing.
	if res.TotalEvents > 25 {
		insights = append(insights, "📅 Heavy meeting week - consider blocking focus time")
	} else if res.TotalEvents < 5 {
		insights = append(insights, "📅 Light meeting week - good for deep work")
	}

	// Work-life balance.
	totalTime := res.WorkingHoursTime + res.AfterHoursTime
	if totalTime > 0 {
		pct := float64(res.AfterHoursTime) / float64(totalTime) * 100
		if pct > 20 {
			insights = append(insights, fmt.Sprintf("⏰ %.1f%% of meetings were outside working hours", pct))
		}
	}

	// Dominant meeting type.
	if len(res.CategoryOrder) > 0 {
		cat := res.Patterns.DominantCategory
		insights = append(insights, fmt.Sprintf("🎯 Most common meeting type: %s (%d meetings)",
			cat, res.CategoryBreakdown[cat].Count))
	}

	// Daily distribution, only worth calling out past 6 meetings a day.
	if res.Patterns.BusiestDay != nil && res.Patterns.BusiestDay.Events > 6 {
		insights = append(insights, fmt.Sprintf("📊 Busiest day: %s with %d meetings",
			res.Patterns.BusiestDay.Day, res.Patterns.BusiestDay.Events))
	}

	// Peak hour, first-seen maximum on ties.
	if len(res.HourOrder) > 0 {
		peakHour := res.HourOrder[0]
		for _, h := range res.HourOrder {
			if res.HourlyDistribution[h] > res.HourlyDistribution[peakHour] {
				peakHour = h
			}
		}
		insights = append(insights, fmt.Sprintf("🕐 Peak meeting hour: %d:00 (%d meetings)",
			peakHour, res.HourlyDistribution[peakHour]))
	}

	return insights
}
