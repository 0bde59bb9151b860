package sheet

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nconklindev/sheetwise/internal/types"
)

// Preview renders the header and up to limit rows as a text table. A
// limit of zero or less renders every row.
func Preview(t *types.Table, w io.Writer, limit int) error {
	var header table.Row
	for _, h := range t.Headers() {
		header = append(header, h)
	}

	rows := t.NumRows()
	if limit > 0 && limit < rows {
		rows = limit
	}

	tw := table.NewWriter()
	tw.AppendHeader(header)
	for i := 0; i < rows; i++ {
		var row table.Row
		for _, v := range t.Row(i) {
			row = append(row, v.String())
		}
		tw.AppendRow(row)
	}
	tw.SetStyle(table.StyleLight)
	tw.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	if rows < t.NumRows() {
		tw.AppendFooter(table.Row{fmt.Sprintf("%d of %d rows", rows, t.NumRows())})
	}

	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}
