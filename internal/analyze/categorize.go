package analyze

import (
	"strings"

	"github.com/tjyana/calendar-slack-analyzer/internal/model"
)

// Categorize assigns exactly one category to an event.
//
// Keyword rules run first, in their configured order; the first rule with
// any substring match against the lower-cased title+description wins.
// Only when no rule matches do the structural attendee-count fallbacks
// apply, in this fixed order:
//
//	> 10  large_meeting
//	> 3   team_meeting
//	== 2  small_meeting
//	else  other
//
// The boundaries are deliberate: 0, 1 and 3 attendees all fall through to
// "other".
func (e *Engine) Categorize(ev model.NormalizedEvent) model.Category {
	haystack := ev.Title + " " + ev.Description

	for _, rule := range e.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return model.Category(rule.name)
			}
		}
	}

	switch {
	case ev.AttendeeCount > 10:
		return model.CategoryLargeMeeting
	case ev.AttendeeCount > 3:
		return model.CategoryTeamMeeting
	case ev.AttendeeCount == 2:
		return model.CategorySmallMeeting
	}
	return model.CategoryOther
}
