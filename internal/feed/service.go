package feed

import (
	"context"
	"sync"
	"time"

	appLog "sheetcal/internal/log"
	"sheetcal/internal/model"
	"sheetcal/internal/program"
	"sheetcal/internal/sample"
	"sheetcal/internal/sheet"
)

// Options configures a feed Service.
type Options struct {
	// SheetID is the spreadsheet document id of the event feed.
	SheetID string
	// FeedGID is the tab id of the events tab.
	FeedGID string
	// ColorGIDs are candidate tabs probed for the color palette.
	ColorGIDs []string
	// Location is the zone events are authored in.
	Location *time.Location
	// ProgramFetchTimeout bounds each per-event program fetch.
	ProgramFetchTimeout time.Duration
	// SampleFallback substitutes the built-in sample dataset when the
	// bulk load fails.
	SampleFallback bool
}

// Service is the feed orchestrator: it composes fetch, parse,
// normalization, recurrence expansion and program enrichment into the
// two operations the presentation layer consumes.
type Service struct {
	fetcher  *sheet.Fetcher
	programs *program.Resolver
	opts     Options
}

// NewService creates a Service.
func NewService(f *sheet.Fetcher, r *program.Resolver, opts Options) *Service {
	if opts.FeedGID == "" {
		opts.FeedGID = "0"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ProgramFetchTimeout <= 0 {
		opts.ProgramFetchTimeout = 10 * time.Second
	}
	return &Service{fetcher: f, programs: r, opts: opts}
}

// LoadFeed performs a bulk feed load: palette, feed rows, normalization,
// confirmed-only filtering, and recurrence expansion.
//
// The load never fails outright. If the bulk fetch or parse yields
// nothing usable, the built-in sample dataset is substituted (when
// enabled) and the second return value reports the substitution so the
// caller can surface an advisory.
func (s *Service) LoadFeed(ctx context.Context) (events []model.Event, fromSample bool) {
	palette := sheet.LoadPalette(ctx, s.fetcher, s.opts.SheetID, s.opts.ColorGIDs)

	rows, err := s.fetcher.FetchRows(ctx, s.opts.SheetID, s.opts.FeedGID)
	if err != nil {
		appLog.Error("feed load failed", err, "sheet_id", s.opts.SheetID)
		return s.fallback(), true
	}

	now := time.Now().In(s.opts.Location)

	// Source row order is preserved; a recurring template is replaced
	// in place by its occurrences, contiguously.
	events = make([]model.Event, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		ev := NormalizeRow(row, palette)
		if ev == nil {
			dropped++
			continue
		}
		if ev.Status != model.StatusConfirmed {
			continue
		}
		events = append(events, ExpandRecurrences(*ev, now, s.opts.Location)...)
	}

	if len(events) == 0 {
		appLog.Warn("feed load produced no events", "rows", len(rows), "dropped", dropped)
		if len(rows) == 0 {
			return s.fallback(), true
		}
	}

	appLog.Info("feed loaded", "rows", len(rows), "events", len(events), "dropped", dropped)
	return events, false
}

func (s *Service) fallback() []model.Event {
	if !s.opts.SampleFallback {
		return []model.Event{}
	}
	appLog.Warn("substituting sample dataset for failed feed load")
	return sample.Events()
}

// EnrichProgramsForMonth resolves programs for every event of the given
// month that references a program sheet.
//
// The input slice is not mutated: a new slice is returned with patched
// copies, so a UI iterating the previous slice never observes a
// half-written program. Programs attached during an earlier viewing of
// another month are cleared first, so a stale schedule can never leak
// into an unrelated month; re-viewing a month re-fetches rather than
// trusting memory state.
//
// Fetches for the month run concurrently, each under its own timeout.
// Every goroutine writes only its own slice index, so the fan-out needs
// no locking. One event's failure is logged and leaves that event's
// program nil; siblings are unaffected.
func (s *Service) EnrichProgramsForMonth(ctx context.Context, events []model.Event, year int, month time.Month) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)

	var wg sync.WaitGroup
	requested := 0

	for i := range out {
		out[i].Program = nil

		ev := out[i]
		if ev.ProgramSheetRef == "" || !ev.Date.InMonth(year, month) {
			continue
		}

		requested++
		wg.Add(1)
		go func(i int, ev model.Event) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, s.opts.ProgramFetchTimeout)
			defer cancel()

			items, err := s.programs.Resolve(fetchCtx, ev.ProgramSheetRef, ev.Date)
			if err != nil {
				appLog.Warn("program fetch failed; event renders without agenda",
					"id", ev.ID, "date", ev.Date.String(), "err", err)
				return
			}
			out[i] = ev.WithProgram(items)
		}(i, ev)
	}

	wg.Wait()
	appLog.Info("month enrichment done", "year", year, "month", int(month), "fetched", requested)
	return out
}
