package sheet

import (
	"context"
	"strings"

	appLog "sheetcal/internal/log"
	"sheetcal/internal/model"
)

// Palette maps a lowercased color id to its resolved color.
type Palette map[string]model.EventColor

// Lookup resolves a color id case-insensitively.
func (p Palette) Lookup(id string) (model.EventColor, bool) {
	if p == nil {
		return model.EventColor{}, false
	}
	c, ok := p[strings.ToLower(strings.TrimSpace(id))]
	return c, ok
}

// LoadPalette locates and loads the color palette tab of the feed sheet.
//
// The palette tab's gid is not published anywhere, so candidate gids are
// probed in order and the tab is recognized by carrying both an "id" and
// a "hex" header. A missing palette is not an error; events then fall
// back to the deterministic hash palette.
func LoadPalette(ctx context.Context, f *Fetcher, sheetID string, gids []string) Palette {
	for _, gid := range gids {
		rows, err := f.FetchRows(ctx, sheetID, gid)
		if err != nil {
			appLog.Debug("palette probe failed", "gid", gid, "err", err)
			continue
		}
		if len(rows) == 0 || !hasHeader(rows[0], "id") || !hasHeader(rows[0], "hex") {
			continue
		}

		palette := make(Palette, len(rows))
		for _, row := range rows {
			id := rowValue(row, "id")
			hex := rowValue(row, "hex")
			if id == "" || hex == "" {
				continue
			}
			textHex := rowValue(row, "text_color")
			if textHex == "" {
				textHex = "#FFFFFF"
			}
			palette[strings.ToLower(id)] = model.EventColor{Hex: hex, TextHex: textHex}
		}

		appLog.Info("color palette loaded", "gid", gid, "colors", len(palette))
		return palette
	}

	appLog.Warn("color palette tab not found; using fallback colors", "sheet_id", sheetID)
	return nil
}

func hasHeader(row RawRow, name string) bool {
	for k := range row {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// rowValue reads a column case-insensitively; header casing in
// hand-maintained sheets is not reliable.
func rowValue(row RawRow, name string) string {
	if v, ok := row[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range row {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// fallbackPalette mirrors the Google Calendar event colors the UI uses
// when a row has no explicit palette entry.
var fallbackPalette = []model.EventColor{
	{Hex: "#F6BF26", TextHex: "#1F2937"}, // banana
	{Hex: "#039BE5", TextHex: "#FFFFFF"}, // peacock
	{Hex: "#0B8043", TextHex: "#FFFFFF"}, // basil
	{Hex: "#D50000", TextHex: "#FFFFFF"}, // tomato
	{Hex: "#F4511E", TextHex: "#FFFFFF"}, // tangerine
}

// FallbackColor picks a deterministic palette entry from a stable hash
// of the event id: the same id always resolves to the same color across
// reloads.
func FallbackColor(id string) model.EventColor {
	var hash int32
	for _, c := range id {
		hash = int32(c) + (hash << 5) - hash
	}
	return fallbackPalette[fallbackIndex(hash)]
}

// fallbackIndex maps the signed 32-bit hash onto a palette slot. The
// absolute value is taken in 64 bits; negating MinInt32 in 32 bits
// would overflow back to a negative number.
func fallbackIndex(hash int32) int {
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return int(h % int64(len(fallbackPalette)))
}
