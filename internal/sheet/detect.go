package sheet

import (
	"strings"
	"time"

	"github.com/nconklindev/sheetwise/internal/types"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"01-02-06",
}

// LooksLikeDate checks if a value is a date cell or text in a common date layout
func LooksLikeDate(v types.Value) bool {
	switch v.Kind {
	case types.Date:
		return true
	case types.String:
		s := strings.TrimSpace(v.Text)
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
	}
	return false
}

// DetectDateColumns identifies columns whose first non-missing values are
// all dates. Only the first RowDetectionLimit values of each column are
// checked.
func DetectDateColumns(t *types.Table) []int {
	var detectedIndices []int

	for i, col := range t.Columns {
		hasDates := true
		checkedRows := 0

		for _, v := range col.Values {
			if checkedRows >= RowDetectionLimit {
				break
			}
			if v.IsMissing() {
				continue
			}
			if !LooksLikeDate(v) {
				hasDates = false
				break
			}
			checkedRows++
		}

		if hasDates && checkedRows > 0 {
			detectedIndices = append(detectedIndices, i)
		}
	}

	return detectedIndices
}
