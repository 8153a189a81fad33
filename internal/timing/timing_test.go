package timing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sheetcal/internal/model"
)

func timedEvent(date model.Date, start, end string) model.Event {
	return model.Event{
		ID:      "ev",
		Title:   "Evento",
		Date:    date,
		Time:    start,
		EndTime: end,
		Status:  model.StatusConfirmed,
	}
}

var jan5 = model.Date{Year: 2025, Month: time.January, Day: 5}

func at(d model.Date, hour, min int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, min, 0, 0, time.UTC)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in        string
		wantHours int
		wantMins  int
		wantOK    bool
	}{
		{"9:00 AM", 9, 0, true},
		{"12:00 AM", 0, 0, true},
		{"12:30 PM", 12, 30, true},
		{"7:45 PM", 19, 45, true},
		{"10:00:00 AM", 10, 0, true}, // sheet form with seconds
		{"", 0, 0, false},
		{"half past nine", 0, 0, false},
	}

	for _, tt := range tests {
		h, m, ok := ParseClock(tt.in)
		if h != tt.wantHours || m != tt.wantMins || ok != tt.wantOK {
			t.Errorf("ParseClock(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tt.in, h, m, ok, tt.wantHours, tt.wantMins, tt.wantOK)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	ev := timedEvent(jan5, "10:00 AM", "11:00 AM")

	tests := []struct {
		now  time.Time
		want Status
	}{
		{at(jan5, 9, 59), StatusUpcoming},
		{at(jan5, 10, 0), StatusOngoing}, // inclusive start
		{at(jan5, 10, 30), StatusOngoing},
		{at(jan5, 11, 0), StatusFinished}, // exclusive end
		{at(jan5, 23, 0), StatusFinished},
	}

	for _, tt := range tests {
		if got := Classify(ev, tt.now); got != tt.want {
			t.Errorf("Classify at %s = %s, want %s", tt.now, got, tt.want)
		}
	}
}

func TestClassifyAssumedDurationBoundary(t *testing.T) {
	// No explicit end time: the event runs for exactly AssumedDuration.
	// A 9:00 PM event is still ongoing at 10:30 PM and finishes at
	// 11:00 PM sharp.
	ev := timedEvent(jan5, "9:00 PM", "")

	if got := Classify(ev, at(jan5, 22, 30)); got != StatusOngoing {
		t.Errorf("at 10:30 PM got %s, want ongoing", got)
	}
	if got := Classify(ev, at(jan5, 22, 59)); got != StatusOngoing {
		t.Errorf("at 10:59 PM got %s, want ongoing", got)
	}
	if got := Classify(ev, at(jan5, 23, 0)); got != StatusFinished {
		t.Errorf("at 11:00 PM got %s, want finished", got)
	}
}

func TestClassifyAllDay(t *testing.T) {
	ev := timedEvent(jan5, "", "")

	jan4 := model.Date{Year: 2025, Month: time.January, Day: 4}
	jan6 := model.Date{Year: 2025, Month: time.January, Day: 6}

	if got := Classify(ev, at(jan4, 15, 0)); got != StatusUpcoming {
		t.Errorf("day before: got %s, want upcoming", got)
	}
	if got := Classify(ev, at(jan5, 15, 0)); got != StatusOngoing {
		t.Errorf("during the day: got %s, want ongoing", got)
	}
	if got := Classify(ev, at(jan6, 0, 0)); got != StatusFinished {
		t.Errorf("next midnight: got %s, want finished", got)
	}
}

func TestEndAtPrefersExplicitEndTime(t *testing.T) {
	ev := timedEvent(jan5, "10:00 AM", "1:00 PM")
	if got := EndAt(ev, time.UTC); !got.Equal(at(jan5, 13, 0)) {
		t.Errorf("EndAt = %s, want 13:00", got)
	}

	// An end time at or before the start falls back to the assumed
	// duration rather than producing a negative-length event.
	ev = timedEvent(jan5, "10:00 AM", "9:00 AM")
	if got := EndAt(ev, time.UTC); !got.Equal(at(jan5, 12, 0)) {
		t.Errorf("EndAt with inverted end = %s, want 12:00", got)
	}
}

func TestCountdownTo(t *testing.T) {
	ev := timedEvent(jan5, "10:00 AM", "")

	tests := []struct {
		name string
		now  time.Time
		want *Countdown
	}{
		{
			name: "ninety minutes out",
			now:  at(jan5, 8, 30),
			want: &Countdown{Hours: 1, Minutes: 30},
		},
		{
			name: "imminent inside fifteen minutes",
			now:  at(jan5, 9, 50),
			want: &Countdown{Minutes: 10, Imminent: true},
		},
		{
			name: "days decompose",
			now:  at(model.Date{Year: 2025, Month: time.January, Day: 3}, 9, 59),
			want: &Countdown{Days: 2, Hours: 0, Minutes: 1},
		},
		{
			name: "already started",
			now:  at(jan5, 10, 0),
			want: nil,
		},
		{
			name: "finished",
			now:  at(jan5, 15, 0),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountdownTo(ev, tt.now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("countdown mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if got := CountdownTo(timedEvent(jan5, "", ""), at(jan5, 8, 0)); got != nil {
		t.Errorf("all-day event must have no countdown, got %+v", got)
	}
}

func TestNextEvent(t *testing.T) {
	jan6 := model.Date{Year: 2025, Month: time.January, Day: 6}

	events := []model.Event{
		timedEvent(jan5, "9:00 AM", ""),  // past
		timedEvent(jan6, "7:00 PM", ""),  // later
		timedEvent(jan6, "10:00 AM", ""), // nearest future
		timedEvent(jan6, "", ""),         // all-day: never "next"
	}

	now := at(jan5, 12, 0)
	if got := NextEvent(events, now); got != 2 {
		t.Errorf("NextEvent = %d, want 2", got)
	}

	// Tie on the start instant keeps the first encountered.
	tied := []model.Event{
		timedEvent(jan6, "10:00 AM", ""),
		timedEvent(jan6, "10:00 AM", ""),
	}
	if got := NextEvent(tied, now); got != 0 {
		t.Errorf("NextEvent tie = %d, want 0", got)
	}

	if got := NextEvent(events, at(jan6, 23, 0)); got != -1 {
		t.Errorf("NextEvent with nothing upcoming = %d, want -1", got)
	}
}

func TestProgramItemStatus(t *testing.T) {
	ev := timedEvent(jan5, "10:00 AM", "12:00 PM")
	ev.Program = []model.ProgramItem{
		{Title: "Abertura", StartTime: "10:00:00 AM"},
		{Title: "Louvor", StartTime: "10:15:00 AM"},
		{Title: "Mensagem", StartTime: "10:45:00 AM"},
	}

	tests := []struct {
		name string
		now  time.Time
		idx  int
		want ItemStatus
	}{
		{"before start", at(jan5, 9, 30), 0, ItemUpcoming},
		{"first item current", at(jan5, 10, 5), 0, ItemCurrent},
		{"first item completed once second starts", at(jan5, 10, 20), 0, ItemCompleted},
		{"second item current", at(jan5, 10, 20), 1, ItemCurrent},
		{"third not yet started", at(jan5, 10, 20), 2, ItemUpcoming},
		{"last item current with no end", at(jan5, 11, 30), 2, ItemCurrent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgramItemStatus(ev, tt.idx, tt.now); got != tt.want {
				t.Errorf("item %d at %s = %s, want %s", tt.idx, tt.now, got, tt.want)
			}
		})
	}

	if got := ProgramItemStatus(ev, 99, at(jan5, 10, 5)); got != ItemUpcoming {
		t.Errorf("out-of-range index = %s, want upcoming", got)
	}
}

func TestIsDayPast(t *testing.T) {
	jan6 := model.Date{Year: 2025, Month: time.January, Day: 6}

	events := []model.Event{
		timedEvent(jan5, "9:00 AM", "10:00 AM"),
		timedEvent(jan5, "8:00 PM", "9:00 PM"),
		timedEvent(jan6, "10:00 AM", ""),
	}

	// Between the two Jan 5 events: the day is not past yet.
	if IsDayPast(events, jan5, at(jan5, 12, 0)) {
		t.Error("day with a pending evening event must not be past")
	}
	// After both have finished.
	if !IsDayPast(events, jan5, at(jan5, 21, 30)) {
		t.Error("day with all events finished must be past")
	}
	// A day with no events is never past.
	if IsDayPast(events, model.Date{Year: 2025, Month: time.January, Day: 7}, at(jan5, 12, 0)) {
		t.Error("empty day must not be past")
	}
}

func TestCountPastInMonth(t *testing.T) {
	feb1 := model.Date{Year: 2025, Month: time.February, Day: 1}

	events := []model.Event{
		timedEvent(jan5, "9:00 AM", "10:00 AM"),
		timedEvent(model.Date{Year: 2025, Month: time.January, Day: 20}, "9:00 AM", ""),
		timedEvent(feb1, "9:00 AM", ""), // other month
	}

	now := at(model.Date{Year: 2025, Month: time.January, Day: 10}, 12, 0)
	if got := CountPastInMonth(events, 2025, time.January, now); got != 1 {
		t.Errorf("CountPastInMonth = %d, want 1", got)
	}

	end := at(feb1, 23, 0)
	if got := CountPastInMonth(events, 2025, time.January, end); got != 2 {
		t.Errorf("CountPastInMonth at month end = %d, want 2", got)
	}
}
