package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout renders searchDate the way the dashboard displays it, e.g.
// "3/14/2025, 9:05:07 PM". The date filter matches against this string.
const DateLayout = "1/2/2006, 3:04:05 PM"

// FormatDate renders t in loc using DateLayout. A nil loc means UTC.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// FilterByDate keeps entries whose formatted searchDate contains q,
// ignoring case. An empty q keeps everything.
func FilterByDate(entries []Entry, q string, loc *time.Location) []Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(FormatDate(e.SearchDate, loc)), q) {
			out = append(out, e)
		}
	}
	return out
}

// ExportFilename is the download name for an entry's export.
func ExportFilename(e *Entry) string {
	return fmt.Sprintf("search-data-%s.json", e.ID.Hex())
}

// Export serializes the entry's searchData verbatim as indented JSON.
func Export(e *Entry) ([]byte, string, error) {
	data, err := json.MarshalIndent(e.SearchData, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to export search data: %w", err)
	}
	return data, ExportFilename(e), nil
}
