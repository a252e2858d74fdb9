// Package schema fixes the column layout of the two logical tables the
// store keeps in the workbook. Row 1 of each worksheet must equal the
// canonical header for its table; readers tolerate reordered or partial
// headers by resolving columns through Index.
package schema

import "strings"

// Worksheet titles for the two logical tables.
const (
	RecordsSheet = "records"
	TargetsSheet = "targets"
)

// Canonical headers. The provisioner rewrites row 1 whenever it drifts
// from these.
var (
	RecordsHeader = []string{"date", "week", "name", "type", "count"}
	TargetsHeader = []string{"month", "category", "target"}
)

// maxColumns bounds single-letter A1 column addressing. Headers wider
// than this are an explicit limitation of the store.
const maxColumns = 26

// Index resolves each canonical column name against a live header row.
// Cells are trimmed before comparison. Absent columns map to -1.
func Index(live []string, canonical []string) map[string]int {
	idx := make(map[string]int, len(canonical))
	for _, name := range canonical {
		idx[name] = -1
	}
	for i, cell := range live {
		cell = strings.TrimSpace(cell)
		if _, ok := idx[cell]; ok && idx[cell] == -1 {
			idx[cell] = i
		}
	}
	return idx
}

// EndColumn returns the A1 column letter for a header of n columns,
// capped at column Z.
func EndColumn(n int) string {
	if n < 1 {
		n = 1
	}
	if n > maxColumns {
		n = maxColumns
	}
	return string(rune('A' + n - 1))
}

// HeaderRange returns the A1 range covering row 1 of an n-column header,
// e.g. "A1:E1" for the records table.
func HeaderRange(n int) string {
	return "A1:" + EndColumn(n) + "1"
}

// Matches reports whether a live header row carries the canonical header
// as its prefix. Extra trailing columns are tolerated; missing or
// reordered leading columns are not.
func Matches(live []string, canonical []string) bool {
	if len(live) < len(canonical) {
		return false
	}
	for i, want := range canonical {
		if strings.TrimSpace(live[i]) != want {
			return false
		}
	}
	return true
}
