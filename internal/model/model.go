package model

import (
	"fmt"
	"time"
)

// Date is a timezone-neutral calendar date. Events carry a Date plus
// optional wall-clock display strings instead of a raw timestamp, so that
// a feed authored in one timezone never shifts by a day when viewed in
// another.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// String renders the date as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Noon returns the date anchored at 12:00 in loc. Recurrence rules and
// date arithmetic anchor at noon so that DST shifts and UTC rounding
// cannot move an occurrence across a day boundary.
func (d Date) Noon(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, loc)
}

// StartOfDay returns midnight at the start of the date in loc.
func (d Date) StartOfDay(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// InMonth reports whether the date falls in the given year/month.
func (d Date) InMonth(year int, month time.Month) bool {
	return d.Year == year && d.Month == month
}

// MarshalText / UnmarshalText make Date round-trip through JSON as the
// plain "YYYY-MM-DD" string the presentation layer expects.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EventType is a categorical tag with presentation hints. The hints are
// opaque to the pipeline; they are carried through for the UI.
type EventType struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	BorderColor string `json:"borderColor"`
}

// EventColor is an explicit color resolved from the palette sheet.
type EventColor struct {
	Hex     string `json:"hex"`
	TextHex string `json:"textHex"`
}

// ProgramItem is one ordered agenda entry of an event's program. Items
// are owned by the event they were resolved for and never shared.
type ProgramItem struct {
	Unit            string `json:"unit,omitempty"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime,omitempty"`
	Act             string `json:"act,omitempty"`
	Title           string `json:"title"`
	Presenter       string `json:"presenter,omitempty"`
	Link            string `json:"link,omitempty"`
	LinkDescription string `json:"linkDescription,omitempty"`
}

// StatusConfirmed is the only feed status that survives normalization;
// rows with any other status are dropped. A row without a status column
// defaults to confirmed.
const StatusConfirmed = "confirmed"

// Event is the canonical normalized event. Instances are treated as
// immutable after the feed load; program enrichment produces patched
// copies instead of mutating in place.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	Date Date `json:"date"`

	// Time / EndTime are 12-hour display strings like "9:00 AM".
	// An empty Time means an all-day event.
	Time    string `json:"time,omitempty"`
	EndTime string `json:"endTime,omitempty"`

	Type   EventType   `json:"type"`
	Color  *EventColor `json:"color,omitempty"`
	Status string      `json:"status"`

	RecurrenceRule  string `json:"recurrenceRule,omitempty"`
	IsRecurring     bool   `json:"isRecurring,omitempty"`
	OccurrenceIndex int    `json:"occurrenceIndex,omitempty"`

	// ProgramSheetRef points at the external per-date program sheet.
	// Program stays nil until the month resolver fills it in.
	ProgramSheetRef string        `json:"programSheetRef,omitempty"`
	Program         []ProgramItem `json:"program,omitempty"`

	// Streaming and registration extras carried through from the feed.
	YoutubeURL             string `json:"youtubeUrl,omitempty"`
	ZoomURL                string `json:"zoomUrl,omitempty"`
	IsLive                 bool   `json:"isLive,omitempty"`
	RegistrationURL        string `json:"registrationUrl,omitempty"`
	RegistrationButtonText string `json:"registrationButtonText,omitempty"`
	RegistrationDeadline   string `json:"registrationDeadline,omitempty"`
}

// AllDay reports whether the event has no start time.
func (e Event) AllDay() bool {
	return e.Time == ""
}

// WithProgram returns a copy of the event with the given program
// attached. The receiver is left untouched.
func (e Event) WithProgram(items []ProgramItem) Event {
	e.Program = items
	return e
}
