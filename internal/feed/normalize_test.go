package feed

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sheetcal/internal/model"
	"sheetcal/internal/sheet"
)

func TestNormalizeRow(t *testing.T) {
	palette := sheet.Palette{
		"red": {Hex: "#D50000", TextHex: "#FFFFFF"},
	}

	tests := []struct {
		name string
		row  sheet.RawRow
		want *model.Event
	}{
		{
			name: "confirmed sunday service",
			row: sheet.RawRow{
				"title":      "Sunday Worship",
				"start_date": "1/5/2025",
				"start_time": "10:00:00 AM",
				"status":     "",
			},
			want: &model.Event{
				ID:     "sunday-worship-1-5-2025",
				Title:  "Sunday Worship",
				Date:   model.Date{Year: 2025, Month: time.January, Day: 5},
				Time:   "10:00 AM",
				Type:   model.EventType{ID: "sunday_service", Icon: "⛪", Color: "bg-blue-600", BorderColor: "border-blue-600"},
				Status: model.StatusConfirmed,
			},
		},
		{
			name: "blank title is rejected",
			row:  sheet.RawRow{"title": "", "start_date": "1/5/2025"},
			want: nil,
		},
		{
			name: "blank date is rejected",
			row:  sheet.RawRow{"title": "Service", "start_date": ""},
			want: nil,
		},
		{
			name: "unparseable date is rejected",
			row:  sheet.RawRow{"title": "Service", "start_date": "2025-01-05"},
			want: nil,
		},
		{
			name: "explicit event id wins over slug",
			row: sheet.RawRow{
				"event_id":   "E-0017",
				"title":      "Culto de Oração",
				"start_date": "2/14/2025",
				"status":     "confirmed",
			},
			want: &model.Event{
				ID:     "E-0017",
				Title:  "Culto de Oração",
				Date:   model.Date{Year: 2025, Month: time.February, Day: 14},
				Type:   model.EventType{ID: "prayer_meeting", Icon: "🙏", Color: "bg-purple-600", BorderColor: "border-purple-600"},
				Status: model.StatusConfirmed,
			},
		},
		{
			name: "afternoon times render without leading zero",
			row: sheet.RawRow{
				"title":      "Estudo Bíblico",
				"start_date": "3/3/2025",
				"start_time": "7:00:00 PM",
				"end_time":   "9:30:00 PM",
			},
			want: &model.Event{
				ID:      "estudo-bíblico-3-3-2025",
				Title:   "Estudo Bíblico",
				Date:    model.Date{Year: 2025, Month: time.March, Day: 3},
				Time:    "7:00 PM",
				EndTime: "9:30 PM",
				Type:    model.EventType{ID: "bible_study", Icon: "📖", Color: "bg-green-600", BorderColor: "border-green-600"},
				Status:  model.StatusConfirmed,
			},
		},
		{
			name: "midnight and noon are 12 o'clock",
			row: sheet.RawRow{
				"title":      "Vigília",
				"start_date": "6/21/2025",
				"start_time": "12:00:00 AM",
				"end_time":   "12:30:00 PM",
			},
			want: &model.Event{
				ID:      "vigília-6-21-2025",
				Title:   "Vigília",
				Date:    model.Date{Year: 2025, Month: time.June, Day: 21},
				Time:    "12:00 AM",
				EndTime: "12:30 PM",
				Type:    model.EventType{ID: "special_event", Icon: "📅", Color: "bg-indigo-600", BorderColor: "border-indigo-600"},
				Status:  model.StatusConfirmed,
			},
		},
		{
			name: "color id resolves case-insensitively",
			row: sheet.RawRow{
				"title":      "Youth Night",
				"start_date": "4/4/2025",
				"color_id":   "RED",
			},
			want: &model.Event{
				ID:     "youth-night-4-4-2025",
				Title:  "Youth Night",
				Date:   model.Date{Year: 2025, Month: time.April, Day: 4},
				Type:   model.EventType{ID: "youth_group", Icon: "👥", Color: "bg-orange-600", BorderColor: "border-orange-600"},
				Color:  &model.EventColor{Hex: "#D50000", TextHex: "#FFFFFF"},
				Status: model.StatusConfirmed,
			},
		},
		{
			name: "unknown color id leaves color unset",
			row: sheet.RawRow{
				"title":      "Festa da Família",
				"start_date": "5/10/2025",
				"color_id":   "turquoise",
			},
			want: &model.Event{
				ID:     "festa-da-família-5-10-2025",
				Title:  "Festa da Família",
				Date:   model.Date{Year: 2025, Month: time.May, Day: 10},
				Type:   model.EventType{ID: "special_event", Icon: "👨‍👩‍👧‍👦", Color: "bg-teal-600", BorderColor: "border-teal-600"},
				Status: model.StatusConfirmed,
			},
		},
		{
			name: "cancelled status is carried through",
			row: sheet.RawRow{
				"title":      "Ensaio",
				"start_date": "1/9/2025",
				"status":     "cancelled",
			},
			want: &model.Event{
				ID:     "ensaio-1-9-2025",
				Title:  "Ensaio",
				Date:   model.Date{Year: 2025, Month: time.January, Day: 9},
				Type:   model.EventType{ID: "special_event", Icon: "📅", Color: "bg-indigo-600", BorderColor: "border-indigo-600"},
				Status: "cancelled",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRow(tt.row, palette)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("event mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeRowDateRoundTrip(t *testing.T) {
	// The date must survive as the same Y-M-D triple regardless of the
	// process's local timezone.
	row := sheet.RawRow{"title": "Service", "start_date": "12/31/2025"}

	ev := NormalizeRow(row, nil)
	if ev == nil {
		t.Fatal("expected event, got nil")
	}
	if got := ev.Date.String(); got != "2025-12-31" {
		t.Errorf("date round-trip mismatch: got %s", got)
	}
}

func TestInferEventTypePriorityOrder(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Sunday Worship Service", "sunday_service"},
		{"Culto de Oração", "prayer_meeting"},
		{"Prayer & Worship Night", "sunday_service"}, // worship outranks prayer
		{"Bible Study", "bible_study"},
		{"Estudo de Jovens", "bible_study"}, // study outranks youth
		{"Youth Conference", "youth_group"},
		{"Encontro de Casais", "special_event"},
		{"Festa da Família", "special_event"},
		{"Assembleia Geral", "special_event"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := inferEventType(tt.title)
			if got.ID != tt.want {
				t.Errorf("inferEventType(%q).ID = %q, want %q", tt.title, got.ID, tt.want)
			}
		})
	}
}
