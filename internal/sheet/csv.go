// Package sheet retrieves and parses spreadsheet tabs exported as CSV.
package sheet

import "strings"

// RawRow maps a header name to the raw cell value of one data line.
// Rows are ephemeral; normalization turns them into model.Event and
// discards them.
type RawRow map[string]string

// ParseCSV parses delimited text into rows keyed by the header line.
//
// The exported feed is not strict CSV: descriptions routinely contain
// embedded line breaks inside quoted cells, and hand-edited rows can be
// short or ragged. The parse is therefore best-effort by contract:
//
//   - a double quote toggles "inside quoted field"; line breaks inside
//     quotes do not end the row
//   - delimiters inside quotes are literal
//   - lines that are blank after trimming are skipped
//   - rows shorter than the header get empty strings for the missing
//     trailing fields; extra fields are ignored
//   - malformed input never fails; whatever parsed is returned
func ParseCSV(text string) []RawRow {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	headers := splitFields(lines[0])
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]RawRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitFields(line)
		row := make(RawRow, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows
}

// splitLines splits CSV text into logical lines, treating a newline
// inside a quoted field as part of the current line.
func splitLines(text string) []string {
	var lines []string
	var current strings.Builder
	insideQuotes := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			insideQuotes = !insideQuotes
			current.WriteByte(c)
		case c == '\n' && !insideQuotes:
			if line := current.String(); strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	if line := current.String(); strings.TrimSpace(line) != "" {
		lines = append(lines, line)
	}

	return lines
}

// splitFields splits one logical line into trimmed fields, honoring
// quotes. Quote characters themselves are dropped from the value.
func splitFields(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		case c == '\r':
			// Exported CSV uses CRLF; the CR is never part of a value.
		default:
			current.WriteByte(c)
		}
	}

	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}
