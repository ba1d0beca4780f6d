package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slack-go/slack"

	"github.com/tjyana/calendar-slack-analyzer/internal/config"
)

// fakeSlack serves canned JSON for the Slack Web API methods the
// reporter uses.
func fakeSlack(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			t.Errorf("unexpected Slack API call: %s", r.URL.Path)
			body = `{"ok":false,"error":"unknown_method"}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fakeReporter(srv *httptest.Server, channel, userID string) *Reporter {
	return &Reporter{
		client:  slack.New("xoxb-test", slack.OptionAPIURL(srv.URL+"/")),
		channel: channel,
		userID:  userID,
	}
}

func TestNewReporter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SlackConfig
		wantErr bool
	}{
		{"channel target", config.SlackConfig{Token: "xoxb-x", Channel: "#reports"}, false},
		{"dm target", config.SlackConfig{Token: "xoxb-x", UserID: "U123"}, false},
		{"missing token", config.SlackConfig{Channel: "#reports"}, true},
		{"no target", config.SlackConfig{Token: "xoxb-x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReporter(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewReporter error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTestConnection(t *testing.T) {
	srv := fakeSlack(t, map[string]string{
		"/auth.test": `{"ok":true,"url":"https://example.slack.com/","team":"T","user":"reportbot","team_id":"T1","user_id":"U1"}`,
	})

	r := fakeReporter(srv, "#reports", "")
	if err := r.TestConnection(context.Background()); err != nil {
		t.Errorf("TestConnection returned error for valid token: %v", err)
	}
}

func TestTestConnectionBadToken(t *testing.T) {
	srv := fakeSlack(t, map[string]string{
		"/auth.test": `{"ok":false,"error":"invalid_auth"}`,
	})

	r := fakeReporter(srv, "#reports", "")
	if err := r.TestConnection(context.Background()); err == nil {
		t.Error("TestConnection accepted an invalid token")
	}
}

func TestSendPrefersUserDM(t *testing.T) {
	srv := fakeSlack(t, map[string]string{
		"/chat.postMessage": `{"ok":true,"channel":"D123","ts":"1700000000.000100"}`,
	})

	r := fakeReporter(srv, "#reports", "U123")
	if got := r.target(); got != "U123" {
		t.Errorf("target() = %q, want the user DM", got)
	}

	blocks := []slack.Block{mrkdwnSection("hello")}
	if err := r.Send(context.Background(), blocks); err != nil {
		t.Errorf("Send returned error: %v", err)
	}
}

func TestSendErrorNotification(t *testing.T) {
	srv := fakeSlack(t, map[string]string{
		"/chat.postMessage": `{"ok":true,"channel":"C1","ts":"1700000000.000200"}`,
	})

	r := fakeReporter(srv, "#reports", "")
	if err := r.SendErrorNotification(context.Background(), context.DeadlineExceeded); err != nil {
		t.Errorf("SendErrorNotification returned error: %v", err)
	}
}
