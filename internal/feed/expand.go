package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "sheetcal/internal/log"
	"sheetcal/internal/model"
)

// windowPadding is how far past the expansion horizon occurrences are
// generated. Navigating months ahead then rarely needs re-expansion; at
// this feed's scale (tens of events) the extra occurrences are cheap.
const windowPadding = 365 * 24 * time.Hour

// maxOccurrencesPerEvent is a safety cap against runaway rules
// (e.g. FREQ=MINUTELY with no COUNT).
const maxOccurrencesPerEvent = 5000

// ExpandRecurrences expands one template event into its concrete dated
// occurrences up to a year past until.
//
// An event without a recurrence rule is returned unchanged as a
// single-element slice. Each occurrence is a copy of the template with
// the occurrence date, an id suffixed with the occurrence index, and
// IsRecurring set; id uniqueness within a load is preserved by the
// index suffix.
//
// The lower bound of the generation window is fixed relative to the
// template's own anchor, never to the load instant: the index counts
// occurrences from the start of the rule, so a given calendar
// occurrence keeps the same index, and therefore the same id, across
// reloads on different days.
//
// A rule that fails to parse never fails the pipeline: the template is
// returned unexpanded and processing continues.
func ExpandRecurrences(ev model.Event, until time.Time, loc *time.Location) []model.Event {
	if ev.RecurrenceRule == "" {
		return []model.Event{ev}
	}
	if loc == nil {
		loc = time.Local
	}

	// The template's own date, normalized to noon, anchors the rule.
	anchor := ev.Date.Noon(loc)

	rule, err := rrule.StrToRRule(strings.TrimPrefix(ev.RecurrenceRule, "RRULE:"))
	if err != nil {
		appLog.Error("recurrence rule parse failed; keeping single event", err,
			"id", ev.ID, "rule", ev.RecurrenceRule)
		return []model.Event{ev}
	}
	rule.DTStart(anchor)

	occTimes := rule.Between(anchor.Add(-windowPadding), until.Add(windowPadding), true)
	if len(occTimes) > maxOccurrencesPerEvent {
		appLog.Warn("recurrence expansion truncated",
			"id", ev.ID, "cap", maxOccurrencesPerEvent)
		occTimes = occTimes[:maxOccurrencesPerEvent]
	}

	out := make([]model.Event, 0, len(occTimes))
	for i, t := range occTimes {
		occ := ev
		occ.ID = fmt.Sprintf("%s-occurrence-%d", ev.ID, i)
		occ.Date = model.DateOf(t.In(loc))
		occ.IsRecurring = true
		occ.OccurrenceIndex = i
		out = append(out, occ)
	}

	return out
}
