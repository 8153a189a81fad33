// Package sample holds the static fallback dataset served when the bulk
// feed load fails. The entries mirror a typical month of the real feed
// so the calendar stays plausible while the upstream is down.
package sample

import (
	"time"

	"sheetcal/internal/model"
)

var types = map[string]model.EventType{
	"sunday_service": {ID: "sunday_service", Icon: "⛪", Color: "bg-blue-600", BorderColor: "border-blue-600"},
	"prayer_meeting": {ID: "prayer_meeting", Icon: "🙏", Color: "bg-purple-600", BorderColor: "border-purple-600"},
	"bible_study":    {ID: "bible_study", Icon: "📖", Color: "bg-green-600", BorderColor: "border-green-600"},
	"youth_group":    {ID: "youth_group", Icon: "👥", Color: "bg-orange-600", BorderColor: "border-orange-600"},
	"special_event":  {ID: "special_event", Icon: "📅", Color: "bg-indigo-600", BorderColor: "border-indigo-600"},
}

var events = []model.Event{
	{
		ID:          "sample-1",
		Title:       "Sunday Worship Service",
		Description: "Join us for worship, prayer, and biblical teaching.",
		Location:    "Main Sanctuary",
		Date:        model.Date{Year: 2025, Month: time.January, Day: 5},
		Time:        "10:00 AM",
		Type:        types["sunday_service"],
		Status:      model.StatusConfirmed,
	},
	{
		ID:          "sample-2",
		Title:       "Evening Prayer Meeting",
		Description: "Come together for corporate prayer and intercession.",
		Location:    "Prayer Room",
		Date:        model.Date{Year: 2025, Month: time.January, Day: 5},
		Time:        "6:00 PM",
		Type:        types["prayer_meeting"],
		Status:      model.StatusConfirmed,
	},
	{
		ID:          "sample-3",
		Title:       "Wednesday Bible Study",
		Description: "In-depth study of the Book of Romans.",
		Location:    "Fellowship Hall",
		Date:        model.Date{Year: 2025, Month: time.January, Day: 8},
		Time:        "7:00 PM",
		Type:        types["bible_study"],
		Status:      model.StatusConfirmed,
	},
	{
		ID:          "sample-4",
		Title:       "Youth Group Meeting",
		Description: "Fun activities, worship, and discussion for ages 12-18.",
		Location:    "Youth Center",
		Date:        model.Date{Year: 2025, Month: time.January, Day: 12},
		Time:        "5:00 PM",
		Type:        types["youth_group"],
		Status:      model.StatusConfirmed,
	},
	{
		ID:          "sample-5",
		Title:       "Community Food Drive",
		Description: "Collecting and distributing food to families in need.",
		Location:    "Church Parking Lot",
		Date:        model.Date{Year: 2025, Month: time.January, Day: 18},
		Time:        "9:00 AM",
		Type:        types["special_event"],
		Status:      model.StatusConfirmed,
	},
	{
		ID:          "sample-6",
		Title:       "Sunday Worship Service",
		Description: "Join us for worship, prayer, and biblical teaching.",
		Location:    "Main Sanctuary",
		Date:        model.Date{Year: 2025, Month: time.January, Day: 19},
		Time:        "10:00 AM",
		Type:        types["sunday_service"],
		Status:      model.StatusConfirmed,
	},
}

// Events returns a fresh copy of the sample dataset. Callers may attach
// programs or otherwise patch the copies without affecting later calls.
func Events() []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)
	return out
}
