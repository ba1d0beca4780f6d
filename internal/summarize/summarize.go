// Package summarize turns the engine's statistics digest into a short
// prose paragraph for the top of the weekly report. Generation goes
// through a chat completion model when configured; otherwise (or on any
// failure) a deterministic fallback sentence is built from the digest, so
// the report never blocks on the model being reachable.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tjyana/calendar-slack-analyzer/internal/analyze"
	"github.com/tjyana/calendar-slack-analyzer/internal/config"
	appLog "github.com/tjyana/calendar-slack-analyzer/internal/log"
)

const maxSummaryTokens = 150

// Summarizer generates the prose week summary.
type Summarizer struct {
	client  *openai.Client
	model   string
	enabled bool
}

// New builds a Summarizer. Generation is active only when it is enabled
// and an API key is present; otherwise WeekSummary always returns the
// fallback.
func New(cfg config.SummaryConfig) *Summarizer {
	s := &Summarizer{
		model:   cfg.Model,
		enabled: cfg.Enabled && cfg.APIKey != "",
	}
	if s.enabled {
		s.client = openai.NewClient(cfg.APIKey)
	}
	return s
}

// WeekSummary returns a 4-5 sentence summary of the digest. The caller
// owns the timeout via ctx; on expiry, error, or an empty completion the
// deterministic fallback is returned instead.
func (s *Summarizer) WeekSummary(ctx context.Context, d analyze.Digest) string {
	if !s.enabled {
		return FallbackSummary(d)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(d)},
		},
		MaxTokens:   maxSummaryTokens,
		Temperature: 0.7,
	})
	if err != nil {
		appLog.Warn("summary generation failed, using fallback", "err", err)
		return FallbackSummary(d)
	}
	if len(resp.Choices) == 0 {
		return FallbackSummary(d)
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return FallbackSummary(d)
	}
	return out
}

func buildPrompt(d analyze.Digest) string {
	var data strings.Builder
	fmt.Fprintf(&data, "Past week statistics:\n")
	fmt.Fprintf(&data, "- Total meetings: %d\n", d.TotalEvents)
	fmt.Fprintf(&data, "- Total meeting time: %s\n", formatDuration(d.TotalMeetingTime))
	fmt.Fprintf(&data, "- Working hours meetings: %s\n", formatDuration(d.WorkingHoursTime))
	fmt.Fprintf(&data, "- After-hours meetings: %s\n", formatDuration(d.AfterHoursTime))
	if d.BusiestDay != "" {
		fmt.Fprintf(&data, "- Busiest day: %s\n", d.BusiestDay)
	}
	if len(d.TopCategories) > 0 {
		parts := make([]string, 0, len(d.TopCategories))
		for _, cc := range d.TopCategories {
			parts = append(parts, fmt.Sprintf("%s (%d)", cc.Category, cc.Count))
		}
		fmt.Fprintf(&data, "- Top meeting types: %s\n", strings.Join(parts, ", "))
	}
	fmt.Fprintf(&data, "\nUpcoming week:\n")
	fmt.Fprintf(&data, "- Scheduled meetings: %d\n", d.UpcomingEvents)
	fmt.Fprintf(&data, "- Focus opportunities: %d days\n", d.FocusDayCount)

	return fmt.Sprintf(`Write a brief, professional summary of this person's meeting week in 4-5 sentences. Focus on:
1. Overall meeting load and time investment
2. Key meeting patterns or notable trends
3. Work-life balance observations
4. One actionable insight for the upcoming week

Keep it conversational and helpful, like advice from a productivity coach.

Data:
%s
Write a summary in this style: "This week you had..."
`, data.String())
}

// FallbackSummary builds the deterministic summary used when generation
// is disabled or fails. Pure function of the digest.
func FallbackSummary(d analyze.Digest) string {
	if d.TotalEvents == 0 {
		return "This week was unusually quiet with no scheduled meetings. Great time for deep work! " +
			fmt.Sprintf("Next week has %d meetings scheduled.", d.UpcomingEvents)
	}

	var load string
	switch {
	case d.TotalEvents >= 20:
		load = "a heavy meeting week"
	case d.TotalEvents >= 10:
		load = "a moderately busy meeting week"
	default:
		load = "a light meeting week"
	}

	category := ""
	if len(d.TopCategories) > 0 {
		top := d.TopCategories[0]
		category = fmt.Sprintf(", with %s meetings being most common",
			strings.ReplaceAll(string(top.Category), "_", " "))
	}

	return fmt.Sprintf("This week you had %s with %d meetings totaling %s%s. Next week has %d meetings scheduled.",
		load, d.TotalEvents, formatDuration(d.TotalMeetingTime), category, d.UpcomingEvents)
}

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
