package model

import "time"

// EventTime is the time field of a raw calendar event. Exactly one of the
// two variants is set: DateTime for timed events, Date (as "2006-01-02")
// for all-day events. The normalizer resolves this once; downstream code
// only ever sees resolved time.Time values.
type EventTime struct {
	DateTime time.Time `json:"date_time,omitempty"`
	Date     string    `json:"date,omitempty"`
}

// IsZero reports whether neither variant is set.
func (t EventTime) IsZero() bool {
	return t.DateTime.IsZero() && t.Date == ""
}

// IsAllDay reports whether this is the all-day (date only) variant.
func (t EventTime) IsAllDay() bool {
	return t.Date != "" && t.DateTime.IsZero()
}

// RawEvent status/visibility markers, matching the wire values used by
// common calendar sources.
const (
	StatusCancelled   = "cancelled"
	VisibilityPrivate = "private"
)

// RawEvent is a calendar event as delivered by an event source, before
// normalization. SourceID/UID identify provenance and are used only for
// logging.
type RawEvent struct {
	SourceID string
	UID      string

	Summary     string
	Description string

	Start EventTime
	End   EventTime

	Attendees  int
	Status     string // StatusCancelled when the event was cancelled
	Visibility string // VisibilityPrivate for private events
}

// NormalizedEvent is the canonical event record the analysis pipeline
// operates on. Start is always non-zero; Duration is never negative.
type NormalizedEvent struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration

	// Summary is the display title, carried through to agendas unchanged.
	Summary string

	// Title and Description are lower-cased; used only for categorization.
	Title       string
	Description string

	AttendeeCount int
	IsCancelled   bool
	IsPrivate     bool
}

// Category is the single classification label assigned to an event.
type Category string

// Structural fallback categories applied when no keyword rule matches.
const (
	CategoryLargeMeeting Category = "large_meeting"
	CategoryTeamMeeting  Category = "team_meeting"
	CategorySmallMeeting Category = "small_meeting"
	CategoryOther        Category = "other"
)

// DailyStat accumulates per-weekday statistics for one analysis window.
type DailyStat struct {
	Events      int              `json:"events"`
	MeetingTime time.Duration    `json:"meeting_time"`
	Categories  map[Category]int `json:"categories"`
}

// CategoryStat accumulates per-category statistics.
type CategoryStat struct {
	Count     int           `json:"count"`
	TotalTime time.Duration `json:"total_time"`
}

// DayPattern names a weekday together with its event count.
type DayPattern struct {
	Day    string `json:"day"`
	Events int    `json:"events"`
}

// Patterns holds the qualitative findings derived from aggregated stats.
// Pointer fields are nil when the underlying mapping was empty.
type Patterns struct {
	BusiestDay       *DayPattern `json:"busiest_day,omitempty"`
	LightestDay      *DayPattern `json:"lightest_day,omitempty"`
	DominantCategory Category    `json:"dominant_category,omitempty"`
}

// AnalysisResult is the full outcome of analyzing one past window of
// events. All durations are raw time.Duration values; formatting belongs
// to the report layer. The *Order slices record first-seen key order of
// their mapping so that consumers (and tie-breaks) have a deterministic
// iteration order.
type AnalysisResult struct {
	Period           string        `json:"period"`
	TotalEvents      int           `json:"total_events"`
	TotalMeetingTime time.Duration `json:"total_meeting_time"`
	WorkingHoursTime time.Duration `json:"working_hours_time"`
	AfterHoursTime   time.Duration `json:"after_hours_time"`

	DailyBreakdown map[string]*DailyStat `json:"daily_breakdown"`
	DayOrder       []string              `json:"day_order"`

	CategoryBreakdown map[Category]*CategoryStat `json:"category_breakdown"`
	CategoryOrder     []Category                 `json:"category_order"`

	HourlyDistribution map[int]int `json:"hourly_distribution"`
	HourOrder          []int       `json:"hour_order"`

	Patterns Patterns `json:"patterns"`
	Insights []string `json:"insights"`
}

// AgendaEntry is one scheduled meeting in an upcoming day's agenda.
type AgendaEntry struct {
	Title         string        `json:"title"`
	Time          string        `json:"time"` // start time of day, "15:04"
	Duration      time.Duration `json:"duration"`
	AttendeeCount int           `json:"attendee_count"`
}

// KeyMeeting is an upcoming meeting flagged for attention.
type KeyMeeting struct {
	Title  string `json:"title"`
	Day    string `json:"day"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

// UpcomingSummary is the forward-looking schedule view for one window.
type UpcomingSummary struct {
	Period      string `json:"period"`
	TotalEvents int    `json:"total_events"`

	DailySchedule map[string][]AgendaEntry `json:"daily_schedule"`
	DayOrder      []string                 `json:"day_order"`

	KeyMeetings        []KeyMeeting `json:"key_meetings"`
	FocusOpportunities []string     `json:"focus_opportunities"`
}
