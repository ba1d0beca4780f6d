package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CategoryRule maps one meeting category onto the keywords that select it.
// Rule order in the config file is significant: the first matching rule
// wins during categorization.
type CategoryRule struct {
	// Name is the category label, e.g. "standup".
	Name string `yaml:"name" json:"name"`
	// Keywords are matched as substrings against title+description.
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label used in reports.
	Name string `yaml:"name" json:"name"`
}

// SlackConfig holds report delivery settings.
type SlackConfig struct {
	// Token is the bot token used for chat.postMessage.
	Token string `yaml:"token" json:"token"`
	// Channel is the target channel ID or name.
	Channel string `yaml:"channel" json:"channel"`
	// UserID, if set, makes the report go out as a DM instead.
	UserID string `yaml:"user_id,omitempty" json:"user_id,omitempty"`
}

// SummaryConfig controls the optional generated prose week summary.
type SummaryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// APIKey is the OpenAI API key. Empty disables generation; the
	// deterministic fallback summary is used instead.
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	// Model is the chat completion model name.
	Model string `yaml:"model" json:"model"`
	// TimeoutSeconds bounds the generation call; the fallback is used
	// when it expires.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the admin API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the admin API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the analysis zone (e.g. "UTC",
	// "America/New_York"). All-day events and hour bucketing resolve here.
	Timezone string `yaml:"timezone" json:"timezone"`

	// ReportCron is a cron-style schedule for the weekly report run.
	ReportCron string `yaml:"report_cron" json:"report_cron"`

	// WorkingHoursStart / WorkingHoursEnd bound the local working-hours
	// interval [start, end). Events starting inside it count as working
	// hours, everything else as after hours.
	WorkingHoursStart int `yaml:"working_hours_start" json:"working_hours_start"`
	WorkingHoursEnd   int `yaml:"working_hours_end" json:"working_hours_end"`

	// IncludePrivateEvents includes private events in past-week analysis.
	// Upcoming-week summaries always include them.
	IncludePrivateEvents bool `yaml:"include_private_events" json:"include_private_events"`

	// MaxKeyMeetings caps the key-meeting list in the upcoming summary.
	MaxKeyMeetings int `yaml:"max_key_meetings" json:"max_key_meetings"`

	// Categories is the ordered keyword rule list for categorization.
	Categories []CategoryRule `yaml:"categories" json:"categories"`

	// ICS is the list of subscribed event sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	Slack   SlackConfig   `yaml:"slack" json:"slack"`
	Summary SummaryConfig `yaml:"summary" json:"summary"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// admin endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultCategories mirrors the category set the reports were designed
// around. Order matters: first match wins.
func DefaultCategories() []CategoryRule {
	return []CategoryRule{
		{Name: "standup", Keywords: []string{"standup", "daily", "scrum"}},
		{Name: "one_on_one", Keywords: []string{"1:1", "one-on-one", "1 on 1"}},
		{Name: "planning", Keywords: []string{"planning", "sprint", "roadmap"}},
		{Name: "review", Keywords: []string{"review", "retro", "demo"}},
		{Name: "interview", Keywords: []string{"interview", "screening"}},
		{Name: "client", Keywords: []string{"client", "customer", "external"}},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:            "127.0.0.1:8080",
		Timezone:          "UTC",
		ReportCron:        "0 9 * * MON",
		WorkingHoursStart: 9,
		WorkingHoursEnd:   17,
		MaxKeyMeetings:    10,
		Categories:        DefaultCategories(),
		ICS:               []ICSConfig{},
		Summary: SummaryConfig{
			Enabled:        true,
			Model:          "gpt-3.5-turbo",
			TimeoutSeconds: 20,
		},
		LogLevel: "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.ReportCron == "" {
		c.ReportCron = "0 9 * * MON"
	}
	if c.WorkingHoursStart == 0 && c.WorkingHoursEnd == 0 {
		c.WorkingHoursStart = 9
		c.WorkingHoursEnd = 17
	}
	if c.MaxKeyMeetings <= 0 {
		c.MaxKeyMeetings = 10
	}
	if c.Categories == nil {
		c.Categories = DefaultCategories()
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if c.Summary.Model == "" {
		c.Summary.Model = "gpt-3.5-turbo"
	}
	if c.Summary.TimeoutSeconds <= 0 {
		c.Summary.TimeoutSeconds = 20
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects structurally broken configuration. It runs before any
// event is processed so that category rules or hour bounds never degrade
// silently mid-analysis.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	if c.WorkingHoursStart < 0 || c.WorkingHoursEnd > 24 || c.WorkingHoursStart >= c.WorkingHoursEnd {
		return fmt.Errorf("config: invalid working hours [%d, %d)", c.WorkingHoursStart, c.WorkingHoursEnd)
	}
	seen := make(map[string]bool, len(c.Categories))
	for i, rule := range c.Categories {
		if rule.Name == "" {
			return fmt.Errorf("config: category %d has no name", i)
		}
		if seen[rule.Name] {
			return fmt.Errorf("config: duplicate category %q", rule.Name)
		}
		seen[rule.Name] = true
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("config: category %q has no keywords", rule.Name)
		}
		for _, kw := range rule.Keywords {
			if kw == "" {
				return fmt.Errorf("config: category %q has an empty keyword", rule.Name)
			}
		}
	}
	return nil
}

// Location resolves the configured analysis timezone. Validate must have
// passed; on a stale config this falls back to UTC instead of panicking.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600 (the file holds tokens).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".calanalyzer-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
