// Package timing is the temporal status engine: it classifies events
// against a supplied clock sample and derives countdowns. Nothing here
// is cached; status depends on wall-clock time and is recomputed on
// every query.
package timing

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"sheetcal/internal/model"
)

// AssumedDuration is the duration assumed for events with no explicit
// end time. It is a business rule inherited from the feed's authors,
// not a documented contract; every finished/ongoing computation must go
// through EndAt so the assumption lives in exactly one place.
const AssumedDuration = 2 * time.Hour

// ImminentThreshold marks a countdown as imminent ("starting soon").
const ImminentThreshold = 15 * time.Minute

// Status is an event's lifecycle stage relative to a clock sample.
// Transitions only ever move forward: upcoming → ongoing → finished.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusFinished Status = "finished"
)

// ItemStatus is the per-program-item sub-state, meaningful while the
// parent event is ongoing.
type ItemStatus string

const (
	ItemCompleted ItemStatus = "completed"
	ItemCurrent   ItemStatus = "current"
	ItemUpcoming  ItemStatus = "upcoming"
)

// Countdown is the decomposed time remaining until an event starts.
type Countdown struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	// Imminent is set when the start is within ImminentThreshold.
	Imminent bool `json:"imminent"`
}

// clockRe accepts both the display form "9:00 AM" and the sheet form
// "9:00:00 AM"; the optional seconds group is ignored.
var clockRe = regexp.MustCompile(`(\d+):(\d+)(?::(\d+))?\s*(AM|PM)`)

// ParseClock parses a 12-hour wall-clock string into 24-hour components.
func ParseClock(s string) (hours, minutes int, ok bool) {
	m := clockRe.FindStringSubmatch(strings.ToUpper(s))
	if m == nil {
		return 0, 0, false
	}
	hours, _ = strconv.Atoi(m[1])
	minutes, _ = strconv.Atoi(m[2])

	switch m[4] {
	case "PM":
		if hours != 12 {
			hours += 12
		}
	case "AM":
		if hours == 12 {
			hours = 0
		}
	}
	return hours, minutes, true
}

// StartAt combines an event's date and start time in loc. The second
// return value is false for all-day events, which have no start instant.
func StartAt(ev model.Event, loc *time.Location) (time.Time, bool) {
	h, m, ok := ParseClock(ev.Time)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(ev.Date.Year, ev.Date.Month, ev.Date.Day, h, m, 0, 0, loc), true
}

// EndAt returns the instant an event stops being ongoing:
// the explicit end time when present, otherwise start plus
// AssumedDuration; all-day events end at the end of their day.
func EndAt(ev model.Event, loc *time.Location) time.Time {
	start, ok := StartAt(ev, loc)
	if !ok {
		// All-day: the practical boundary is the next midnight.
		return ev.Date.StartOfDay(loc).AddDate(0, 0, 1)
	}
	if h, m, ok := ParseClock(ev.EndTime); ok {
		end := time.Date(ev.Date.Year, ev.Date.Month, ev.Date.Day, h, m, 0, 0, loc)
		if end.After(start) {
			return end
		}
	}
	return start.Add(AssumedDuration)
}

// Classify determines the lifecycle status of ev at instant now.
// The event is ongoing over [start, end): inclusive start, exclusive
// end.
func Classify(ev model.Event, now time.Time) Status {
	loc := now.Location()

	start, hasTime := StartAt(ev, loc)
	if !hasTime {
		start = ev.Date.StartOfDay(loc)
	}
	end := EndAt(ev, loc)

	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.Before(end):
		return StatusOngoing
	default:
		return StatusFinished
	}
}

// CountdownTo decomposes the time until ev starts. It returns nil for
// all-day events and for events that have already started.
func CountdownTo(ev model.Event, now time.Time) *Countdown {
	start, ok := StartAt(ev, now.Location())
	if !ok {
		return nil
	}

	diff := start.Sub(now)
	if diff <= 0 {
		return nil
	}

	return &Countdown{
		Days:     int(diff / (24 * time.Hour)),
		Hours:    int(diff % (24 * time.Hour) / time.Hour),
		Minutes:  int(diff % time.Hour / time.Minute),
		Seconds:  int(diff % time.Minute / time.Second),
		Imminent: diff <= ImminentThreshold,
	}
}

// NextEvent returns the globally nearest future event with a defined
// start time, or -1 when none is upcoming. Ties on the start instant
// keep the first event encountered in iteration order.
func NextEvent(events []model.Event, now time.Time) int {
	best := -1
	var bestStart time.Time

	for i, ev := range events {
		start, ok := StartAt(ev, now.Location())
		if !ok || !start.After(now) {
			continue
		}
		if best == -1 || start.Before(bestStart) {
			best = i
			bestStart = start
		}
	}

	return best
}

// ProgramItemStatus computes the sub-state of the idx-th program item at
// instant now. An item is current from its start until the next item's
// start, or indefinitely if it is the last item; items before that are
// completed once passed, items not yet started are upcoming.
//
// The result is only meaningful while Classify reports the parent event
// as ongoing.
func ProgramItemStatus(ev model.Event, idx int, now time.Time) ItemStatus {
	if idx < 0 || idx >= len(ev.Program) {
		return ItemUpcoming
	}
	loc := now.Location()

	start, ok := itemStart(ev, ev.Program[idx], loc)
	if !ok {
		return ItemUpcoming
	}
	if now.Before(start) {
		return ItemUpcoming
	}

	// Find the next item that has a parseable start time.
	for _, next := range ev.Program[idx+1:] {
		nextStart, ok := itemStart(ev, next, loc)
		if !ok {
			continue
		}
		if now.Before(nextStart) {
			return ItemCurrent
		}
		return ItemCompleted
	}

	// Last timed item: current from its start onward.
	return ItemCurrent
}

func itemStart(ev model.Event, item model.ProgramItem, loc *time.Location) (time.Time, bool) {
	h, m, ok := ParseClock(item.StartTime)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(ev.Date.Year, ev.Date.Month, ev.Date.Day, h, m, 0, 0, loc), true
}

// IsDayPast reports whether every one of the day's events has finished:
// the whole day renders as past only when nothing on it is live or
// pending. A day with no events is not past.
func IsDayPast(events []model.Event, date model.Date, now time.Time) bool {
	seen := false
	for _, ev := range events {
		if ev.Date != date {
			continue
		}
		seen = true
		if Classify(ev, now) != StatusFinished {
			return false
		}
	}
	return seen
}

// CountPastInMonth counts the month's events that have finished at
// instant now. A pure fold over Classify; no state is maintained.
func CountPastInMonth(events []model.Event, year int, month time.Month, now time.Time) int {
	count := 0
	for _, ev := range events {
		if !ev.Date.InMonth(year, month) {
			continue
		}
		if Classify(ev, now) == StatusFinished {
			count++
		}
	}
	return count
}
