package pipeline

import (
	"testing"
	"time"
)

func TestComputeWindows(t *testing.T) {
	tests := []struct {
		name         string
		now          time.Time
		wantPastFrom string
		wantPastTo   string
		wantUpFrom   string
		wantUpTo     string
	}{
		{
			name:         "wednesday",
			now:          time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC),
			wantPastFrom: "2025-06-02", wantPastTo: "2025-06-08",
			wantUpFrom: "2025-06-09", wantUpTo: "2025-06-15",
		},
		{
			name:         "monday maps to the week just started",
			now:          time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
			wantPastFrom: "2025-06-02", wantPastTo: "2025-06-08",
			wantUpFrom: "2025-06-09", wantUpTo: "2025-06-15",
		},
		{
			name:         "sunday still belongs to the current week",
			now:          time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC),
			wantPastFrom: "2025-06-02", wantPastTo: "2025-06-08",
			wantUpFrom: "2025-06-09", wantUpTo: "2025-06-15",
		},
		{
			name:         "year boundary",
			now:          time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
			wantPastFrom: "2025-12-22", wantPastTo: "2025-12-28",
			wantUpFrom: "2025-12-29", wantUpTo: "2026-01-04",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ComputeWindows(tt.now, time.UTC)

			if got := w.PastStart.Format("2006-01-02"); got != tt.wantPastFrom {
				t.Errorf("PastStart = %s, want %s", got, tt.wantPastFrom)
			}
			if got := w.PastEnd.Format("2006-01-02"); got != tt.wantPastTo {
				t.Errorf("PastEnd = %s, want %s", got, tt.wantPastTo)
			}
			if got := w.UpcomingStart.Format("2006-01-02"); got != tt.wantUpFrom {
				t.Errorf("UpcomingStart = %s, want %s", got, tt.wantUpFrom)
			}
			if got := w.UpcomingEnd.Format("2006-01-02"); got != tt.wantUpTo {
				t.Errorf("UpcomingEnd = %s, want %s", got, tt.wantUpTo)
			}
		})
	}
}

func TestComputeWindowsDayBoundaries(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	// 02:00 UTC on Tuesday is still Monday evening in New York, so the
	// windows must be computed from the local calendar day.
	now := time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC)
	w := ComputeWindows(now, loc)

	if got := w.UpcomingStart.Format("2006-01-02"); got != "2025-06-09" {
		t.Errorf("UpcomingStart = %s, want 2025-06-09", got)
	}
	if w.UpcomingStart.Location() != loc {
		t.Error("window boundaries are not in the analysis timezone")
	}
	if h, m, s := w.PastEnd.Clock(); h != 23 || m != 59 || s != 59 {
		t.Errorf("PastEnd clock = %02d:%02d:%02d, want 23:59:59", h, m, s)
	}
	if w.PastEnd.Weekday() != time.Sunday {
		t.Errorf("PastEnd weekday = %s, want Sunday", w.PastEnd.Weekday())
	}
}

func TestPeriodLabel(t *testing.T) {
	w := ComputeWindows(time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC), time.UTC)
	if got := periodLabel(w.PastStart, w.PastEnd); got != "2025-06-02 to 2025-06-08" {
		t.Errorf("periodLabel = %q, want %q", got, "2025-06-02 to 2025-06-08")
	}
}
