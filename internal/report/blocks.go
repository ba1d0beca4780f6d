// Package report is the report sink: it renders the engine's structured
// results into Slack Block Kit messages and delivers them. All formatting
// and localization lives here; the engine hands over raw counts and
// durations only.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

// renderedKeyMeetings caps the key-meeting list in the rendered message;
// the summary structure itself may carry more.
const renderedKeyMeetings = 5

// FormatDuration renders a duration as "2h 15m", or "45m" under an hour.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// BuildReport assembles the full weekly report. weekSummary is the prose
// paragraph from the summarizer; when empty, the summary section (and the
// detailed per-day agenda it replaces) is rendered accordingly.
func BuildReport(analysis *model.AnalysisResult, upcoming *model.UpcomingSummary, weekSummary string) []slack.Block {
	blocks := []slack.Block{
		mrkdwnSection("🗓️ *Weekly Calendar Report* 🗓️\n_Your weekly calendar analysis and upcoming schedule preview_"),
	}

	if weekSummary != "" {
		blocks = append(blocks,
			slack.NewDividerBlock(),
			mrkdwnSection("📝 *Week Summary*\n"+weekSummary),
		)
	}

	blocks = append(blocks, pastWeekBlocks(analysis)...)
	blocks = append(blocks, upcomingBlocks(upcoming, weekSummary != "")...)

	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				"📈 _Report generated by Calendar Analyzer_", false, false)),
	)

	return blocks
}

func pastWeekBlocks(a *model.AnalysisResult) []slack.Block {
	blocks := []slack.Block{
		headerBlock("📊 Past Week Analysis"),
		slack.NewDividerBlock(),
	}

	overview := fmt.Sprintf(
		"*Period:* %s\n*Total Meetings:* %d\n*Total Meeting Time:* %s\n*Working Hours:* %s\n*After Hours:* %s",
		a.Period,
		a.TotalEvents,
		FormatDuration(a.TotalMeetingTime),
		FormatDuration(a.WorkingHoursTime),
		FormatDuration(a.AfterHoursTime),
	)
	blocks = append(blocks, mrkdwnSection(overview))

	if len(a.DayOrder) > 0 {
		var b strings.Builder
		b.WriteString("*Daily Breakdown:*\n")
		for _, day := range a.DayOrder {
			stat := a.DailyBreakdown[day]
			fmt.Fprintf(&b, "• %s: %d meetings (%s)\n", day, stat.Events, FormatDuration(stat.MeetingTime))
		}
		blocks = append(blocks, mrkdwnSection(b.String()))
	}

	if len(a.CategoryOrder) > 0 {
		var b strings.Builder
		b.WriteString("*Meeting Types:*\n")
		for _, cat := range a.CategoryOrder {
			stat := a.CategoryBreakdown[cat]
			fmt.Fprintf(&b, "• %s: %d meetings (%s)\n", categoryLabel(cat), stat.Count, FormatDuration(stat.TotalTime))
		}
		blocks = append(blocks, mrkdwnSection(b.String()))
	}

	if len(a.Insights) > 0 {
		var b strings.Builder
		b.WriteString("*Key Insights:*\n")
		for _, in := range a.Insights {
			fmt.Fprintf(&b, "• %s\n", in)
		}
		blocks = append(blocks, mrkdwnSection(b.String()))
	}

	return blocks
}

func upcomingBlocks(u *model.UpcomingSummary, haveSummary bool) []slack.Block {
	blocks := []slack.Block{
		headerBlock("📅 Upcoming Week Preview"),
		slack.NewDividerBlock(),
		mrkdwnSection(fmt.Sprintf("*Period:* %s\n*Total Scheduled Meetings:* %d", u.Period, u.TotalEvents)),
	}

	switch {
	case len(u.DayOrder) > 0 && !haveSummary:
		// Full detailed schedule when no prose summary carries the gist.
		var b strings.Builder
		b.WriteString("*Daily Schedule:*\n")
		for _, day := range u.DayOrder {
			fmt.Fprintf(&b, "*%s*\n", day)
			for _, entry := range u.DailySchedule[day] {
				fmt.Fprintf(&b, "• %s %s (%s, %d attendees)\n",
					entry.Time, entry.Title, FormatDuration(entry.Duration), entry.AttendeeCount)
			}
		}
		blocks = append(blocks, mrkdwnSection(b.String()))

	case len(u.DayOrder) > 0:
		// Brief per-day counts when the summary is shown above.
		parts := make([]string, 0, len(u.DayOrder))
		for _, day := range u.DayOrder {
			weekday, _, _ := strings.Cut(day, ",")
			parts = append(parts, fmt.Sprintf("%s (%d)", weekday, len(u.DailySchedule[day])))
		}
		blocks = append(blocks, mrkdwnSection("*Meetings per day:* "+strings.Join(parts, ", ")))
	}

	if len(u.KeyMeetings) > 0 {
		var b strings.Builder
		b.WriteString("*Key Meetings:*\n")
		for i, km := range u.KeyMeetings {
			if i == renderedKeyMeetings {
				break
			}
			fmt.Fprintf(&b, "• %s — %s %s (%s)\n", km.Title, km.Day, km.Time, km.Reason)
		}
		blocks = append(blocks, mrkdwnSection(b.String()))
	}

	if len(u.FocusOpportunities) > 0 {
		var b strings.Builder
		b.WriteString("*Focus Opportunities:*\n")
		for _, fo := range u.FocusOpportunities {
			fmt.Fprintf(&b, "• %s\n", fo)
		}
		blocks = append(blocks, mrkdwnSection(b.String()))
	}

	return blocks
}

// categoryLabel turns a category identifier into display form:
// "team_meeting" becomes "Team Meeting".
func categoryLabel(cat model.Category) string {
	words := strings.Split(strings.ReplaceAll(string(cat), "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func mrkdwnSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

func headerBlock(text string) *slack.HeaderBlock {
	return slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, text, true, false))
}
