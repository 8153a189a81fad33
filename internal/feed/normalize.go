// Package feed turns raw sheet rows into the canonical event collection:
// normalization, recurrence expansion, and the load/enrich orchestration.
package feed

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sheetcal/internal/model"
	"sheetcal/internal/sheet"
)

var (
	sheetDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	sheetTimeRe = regexp.MustCompile(`(\d+):(\d+):(\d+)\s*(AM|PM)`)
	slugSpaceRe = regexp.MustCompile(`\s+`)
)

// parseSheetDate parses the feed's M/D/YYYY date format.
func parseSheetDate(s string) (model.Date, bool) {
	m := sheetDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return model.Date{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return model.Date{}, false
	}
	return model.Date{Year: year, Month: time.Month(month), Day: day}, true
}

// parseSheetTime parses the feed's H:MM:SS AM/PM time format into
// 24-hour components.
func parseSheetTime(s string) (hours, minutes int, ok bool) {
	m := sheetTimeRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
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

// displayTime renders 24-hour components as the 12-hour display string
// used everywhere downstream: no leading zero on the hour, zero-padded
// minutes ("9:00 AM", "12:30 PM").
func displayTime(hours, minutes int) string {
	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	display := hours
	switch {
	case display == 0:
		display = 12
	case display > 12:
		display -= 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minutes, period)
}

// inferEventType scans the lowercased title for keyword families in a
// fixed priority order; the first match wins. This mirrors the feed
// authors' conventions rather than attempting real classification, so
// false positives are accepted.
func inferEventType(title string) model.EventType {
	t := strings.ToLower(title)

	switch {
	case strings.Contains(t, "worship") || strings.Contains(t, "sunday"):
		return model.EventType{ID: "sunday_service", Icon: "⛪", Color: "bg-blue-600", BorderColor: "border-blue-600"}
	case strings.Contains(t, "prayer") || strings.Contains(t, "oração"):
		return model.EventType{ID: "prayer_meeting", Icon: "🙏", Color: "bg-purple-600", BorderColor: "border-purple-600"}
	case strings.Contains(t, "bible") || strings.Contains(t, "study") || strings.Contains(t, "estudo"):
		return model.EventType{ID: "bible_study", Icon: "📖", Color: "bg-green-600", BorderColor: "border-green-600"}
	case strings.Contains(t, "youth") || strings.Contains(t, "jovens"):
		return model.EventType{ID: "youth_group", Icon: "👥", Color: "bg-orange-600", BorderColor: "border-orange-600"}
	case strings.Contains(t, "casais") || strings.Contains(t, "couples"):
		return model.EventType{ID: "special_event", Icon: "💑", Color: "bg-pink-600", BorderColor: "border-pink-600"}
	case strings.Contains(t, "família") || strings.Contains(t, "family"):
		return model.EventType{ID: "special_event", Icon: "👨‍👩‍👧‍👦", Color: "bg-teal-600", BorderColor: "border-teal-600"}
	default:
		return model.EventType{ID: "special_event", Icon: "📅", Color: "bg-indigo-600", BorderColor: "border-indigo-600"}
	}
}

// eventID derives a stable id for a row: an explicit identifier column
// when present, otherwise a slug of title and date so the same row keeps
// the same id across reloads.
func eventID(row sheet.RawRow) string {
	if id := strings.TrimSpace(row["event_id"]); id != "" {
		return id
	}
	if id := strings.TrimSpace(row["row_id"]); id != "" {
		return id
	}
	slug := strings.ToLower(slugSpaceRe.ReplaceAllString(strings.TrimSpace(row["title"]), "-"))
	date := strings.ReplaceAll(strings.TrimSpace(row["start_date"]), "/", "-")
	return slug + "-" + date
}

// NormalizeRow maps one raw feed row to a canonical Event.
//
// Returns nil when the row cannot become a valid event: blank title,
// blank start_date, or a start_date that does not parse. Rejected rows
// are dropped silently; a partial feed beats no feed.
func NormalizeRow(row sheet.RawRow, palette sheet.Palette) *model.Event {
	title := strings.TrimSpace(row["title"])
	if title == "" || strings.TrimSpace(row["start_date"]) == "" {
		return nil
	}

	date, ok := parseSheetDate(row["start_date"])
	if !ok {
		return nil
	}

	ev := model.Event{
		ID:          eventID(row),
		Title:       title,
		Description: row["description"],
		Location:    row["location"],
		Date:        date,
		Status:      strings.TrimSpace(row["status"]),

		RecurrenceRule:  strings.TrimSpace(row["recurrence_rule"]),
		ProgramSheetRef: strings.TrimSpace(row["program_sheet_id"]),

		YoutubeURL:             strings.TrimSpace(row["youtube_url"]),
		ZoomURL:                strings.TrimSpace(row["zoom_url"]),
		IsLive:                 strings.EqualFold(strings.TrimSpace(row["is_live"]), "TRUE"),
		RegistrationURL:        strings.TrimSpace(row["registration_url"]),
		RegistrationButtonText: strings.TrimSpace(row["registration_button_text"]),
		RegistrationDeadline:   strings.TrimSpace(row["registration_deadline"]),
	}
	if ev.Status == "" {
		ev.Status = model.StatusConfirmed
	}

	if h, m, ok := parseSheetTime(row["start_time"]); ok {
		ev.Time = displayTime(h, m)
	}
	if h, m, ok := parseSheetTime(row["end_time"]); ok {
		ev.EndTime = displayTime(h, m)
	}

	if explicit := strings.TrimSpace(row["event_type"]); explicit != "" {
		ev.Type = model.EventType{ID: explicit}
	} else {
		ev.Type = inferEventType(title)
	}

	// Color is only set from an explicit palette match. A nil color
	// tells the presentation layer to derive the deterministic hash
	// fallback itself, keeping explicit and derived colors
	// distinguishable in the JSON.
	if c, ok := palette.Lookup(row["color_id"]); ok && row["color_id"] != "" {
		ev.Color = &c
	}

	return &ev
}
