package dataset

import (
	"strings"
)

// ColumnMatcher locates a column by case-insensitive substring match on its
// header. Passes are tried in order; within a pass, columns are scanned left
// to right and the first header containing any keyword of the pass wins.
type ColumnMatcher struct {
	Field  string
	Passes [][]string
}

// Match returns the index of the matching column, or -1.
func (m ColumnMatcher) Match(header []string) int {
	for _, keywords := range m.Passes {
		for i, col := range header {
			lc := strings.ToLower(col)
			for _, kw := range keywords {
				if strings.Contains(lc, kw) {
					return i
				}
			}
		}
	}
	return -1
}

// Column detection rules for raw complaint exports.
var (
	DescriptionColumn = ColumnMatcher{
		Field:  FieldDescription,
		Passes: [][]string{{"description", "descriptor", "resolution description", "resolution"}},
	}
	CategoryColumn = ColumnMatcher{
		Field: FieldCategory,
		Passes: [][]string{
			{"complaint type", "complaint", "complaint_type"},
			{"agency name"},
		},
	}
	AgencyColumn = ColumnMatcher{
		Field: FieldAgency,
		Passes: [][]string{
			{"agency name", "agency", "agency_name"},
			{"agency"},
		},
	}
)

// Normalised column names written by Reduce and read by the trainer.
const (
	FieldDescription = "description"
	FieldCategory    = "complaint_type"
	FieldAgency      = "agency_name"
)
