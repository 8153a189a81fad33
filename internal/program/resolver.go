// Package program resolves the external per-date program schedule
// referenced by an event.
package program

import (
	"context"
	"fmt"
	"strings"

	appLog "sheetcal/internal/log"
	"sheetcal/internal/model"
	"sheetcal/internal/sheet"
)

// indexGID is the tab of a program sheet that maps dates to the gid of
// that date's program tab.
const indexGID = "0"

// Resolver fetches per-date program schedules. A program sheet is a
// two-step indirection: its first tab is an index of date → gid rows,
// and each gid points at the tab holding that date's agenda.
type Resolver struct {
	fetcher *sheet.Fetcher
}

// NewResolver creates a Resolver on top of the given fetcher.
func NewResolver(f *sheet.Fetcher) *Resolver {
	return &Resolver{fetcher: f}
}

// Resolve returns the ordered program for an event's date, or nil when
// the sheet has no tab for that date. A missing date is a deliberate
// absence, not an error; errors are reserved for fetch failures.
func (r *Resolver) Resolve(ctx context.Context, sheetRef string, date model.Date) ([]model.ProgramItem, error) {
	if sheetRef == "" {
		return nil, nil
	}

	// The index keys dates as zero-padded MM/DD/YYYY.
	dateKey := fmt.Sprintf("%02d/%02d/%04d", int(date.Month), date.Day, date.Year)

	indexRows, err := r.fetcher.FetchRows(ctx, sheetRef, indexGID)
	if err != nil {
		return nil, fmt.Errorf("fetch program index: %w", err)
	}

	gid := findGID(indexRows, dateKey)
	if gid == "" {
		appLog.Debug("no program tab for date", "sheet", sheetRef, "date", dateKey)
		return nil, nil
	}

	programRows, err := r.fetcher.FetchRows(ctx, sheetRef, gid)
	if err != nil {
		return nil, fmt.Errorf("fetch program tab: %w", err)
	}

	items := make([]model.ProgramItem, 0, len(programRows))
	for _, row := range programRows {
		item := model.ProgramItem{
			Unit:            row["unit"],
			StartTime:       row["start_time"],
			EndTime:         row["end_time"],
			Act:             row["act"],
			Title:           row["title"],
			Presenter:       row["presenter"],
			Link:            row["link"],
			LinkDescription: row["link_description"],
		}
		// Rows without a title are spacing/formatting rows.
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		items = append(items, item)
	}

	appLog.Info("program resolved", "sheet", sheetRef, "date", dateKey, "items", len(items))
	return items, nil
}

// findGID linear-scans the index for an exact date-string match. The
// index is a handful of rows; nothing smarter is warranted.
func findGID(rows []sheet.RawRow, dateKey string) string {
	for _, row := range rows {
		rowDate := row["date"]
		if rowDate == "" {
			rowDate = row["Date"]
		}
		if strings.TrimSpace(rowDate) != dateKey {
			continue
		}
		for _, key := range []string{"gid", "Gid", "GID"} {
			if v := strings.TrimSpace(row[key]); v != "" {
				return v
			}
		}
	}
	return ""
}
