package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/tjyana/calendar-slack-analyzer/internal/config"
	appLog "github.com/tjyana/calendar-slack-analyzer/internal/log"
)

// Reporter delivers rendered reports to Slack.
type Reporter struct {
	client  *slack.Client
	channel string
	userID  string
}

// NewReporter builds a Reporter from the Slack configuration.
func NewReporter(cfg config.SlackConfig) (*Reporter, error) {
	if cfg.Token == "" {
		return nil, errors.New("report: slack token is empty")
	}
	if cfg.Channel == "" && cfg.UserID == "" {
		return nil, errors.New("report: neither slack channel nor user id configured")
	}
	return &Reporter{
		client:  slack.New(cfg.Token),
		channel: cfg.Channel,
		userID:  cfg.UserID,
	}, nil
}

// target picks the delivery destination: a user DM when configured,
// otherwise the channel.
func (r *Reporter) target() string {
	if r.userID != "" {
		return r.userID
	}
	return r.channel
}

// Send posts the weekly report.
func (r *Reporter) Send(ctx context.Context, blocks []slack.Block) error {
	dest := r.target()
	appLog.Info("sending report", "target", dest, "blocks", len(blocks))

	_, ts, err := r.client.PostMessageContext(ctx, dest,
		slack.MsgOptionBlocks(blocks...),
		// Fallback text for notifications.
		slack.MsgOptionText("Weekly Calendar Report", false),
	)
	if err != nil {
		return fmt.Errorf("report: post message: %w", err)
	}
	appLog.Info("report sent", "target", dest, "ts", ts)
	return nil
}

// SendErrorNotification posts a short failure notice to the same target
// as regular reports.
func (r *Reporter) SendErrorNotification(ctx context.Context, cause error) error {
	blocks := []slack.Block{
		mrkdwnSection("🚨 *Calendar Analyzer Error*"),
		mrkdwnSection(fmt.Sprintf("An error occurred while generating your weekly calendar report:\n\n```%v```", cause)),
		mrkdwnSection("Please check the application logs for more details."),
	}

	_, _, err := r.client.PostMessageContext(ctx, r.target(),
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText("Calendar Analyzer Error", false),
	)
	if err != nil {
		return fmt.Errorf("report: post error notification: %w", err)
	}
	return nil
}

// TestConnection verifies the token and basic permissions.
func (r *Reporter) TestConnection(ctx context.Context) error {
	resp, err := r.client.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("report: auth test: %w", err)
	}
	appLog.Info("slack connection ok", "bot", resp.User)
	return nil
}
