package analyze

import (
	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

// AnalyzeWeek folds normalized events into per-day, per-category and
// per-hour statistics, then attaches derived patterns and insights.
//
// Cancelled events are skipped, private events too unless their inclusion
// is configured. An event counts toward working hours when its start's
// local hour falls inside the half-open interval [workStart, workEnd).
// An empty input yields a fully-populated zero result, never an error.
func (e *Engine) AnalyzeWeek(events []model.NormalizedEvent, period string) *model.AnalysisResult {
	res := &model.AnalysisResult{
		Period:             period,
		DailyBreakdown:     make(map[string]*model.DailyStat),
		CategoryBreakdown:  make(map[model.Category]*model.CategoryStat),
		HourlyDistribution: make(map[int]int),
		Insights:           []string{},
	}

	for _, ev := range events {
		if ev.IsCancelled {
			continue
		}
		if ev.IsPrivate && !e.includePrivate {
			continue
		}

		start := ev.Start.In(e.loc)
		day := start.Weekday().String()

		ds := res.DailyBreakdown[day]
		if ds == nil {
			ds = &model.DailyStat{Categories: make(map[model.Category]int)}
			res.DailyBreakdown[day] = ds
			res.DayOrder = append(res.DayOrder, day)
		}
		ds.Events++
		ds.MeetingTime += ev.Duration

		cat := e.Categorize(ev)
		ds.Categories[cat]++

		cs := res.CategoryBreakdown[cat]
		if cs == nil {
			cs = &model.CategoryStat{}
			res.CategoryBreakdown[cat] = cs
			res.CategoryOrder = append(res.CategoryOrder, cat)
		}
		cs.Count++
		cs.TotalTime += ev.Duration

		hour := start.Hour()
		if _, seen := res.HourlyDistribution[hour]; !seen {
			res.HourOrder = append(res.HourOrder, hour)
		}
		res.HourlyDistribution[hour]++

		res.TotalEvents++
		res.TotalMeetingTime += ev.Duration
		if hour >= e.workStart && hour < e.workEnd {
			res.WorkingHoursTime += ev.Duration
		} else {
			res.AfterHoursTime += ev.Duration
		}
	}

	res.Patterns = identifyPatterns(res)
	res.Insights = generateInsights(res)
	return res
}
