package model

import (
	"testing"
	"time"
)

func TestEventTimeVariants(t *testing.T) {
	timed := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		et         EventTime
		wantZero   bool
		wantAllDay bool
	}{
		{"timed", EventTime{DateTime: timed}, false, false},
		{"all-day", EventTime{Date: "2025-06-10"}, false, true},
		{"unset", EventTime{}, true, false},
		{"both set resolves as timed", EventTime{DateTime: timed, Date: "2025-06-10"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.et.IsZero(); got != tt.wantZero {
				t.Errorf("IsZero() = %v, want %v", got, tt.wantZero)
			}
			if got := tt.et.IsAllDay(); got != tt.wantAllDay {
				t.Errorf("IsAllDay() = %v, want %v", got, tt.wantAllDay)
			}
		})
	}
}
