package export

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/quantumsuite/marketfetch/src/models"
)

// WriteSummary renders the batch outcome table for the terminal.
func WriteSummary(w io.Writer, batch models.BatchResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Status", "Rows", "Filled", "Dropped", "Detail"})

	for _, symbol := range batch.Order {
		outcome := batch.Outcomes[symbol]

		if outcome.Failed() {
			table.Append([]string{string(symbol), "FAILED", "-", "-", "-", outcome.Err.Error()})
			continue
		}

		r := outcome.Result
		detail := ""
		if !r.StrikeMatch {
			detail = "realized strike differs from requested"
		}
		table.Append([]string{
			string(symbol),
			"OK",
			fmt.Sprintf("%d", r.RowCount),
			fmt.Sprintf("%d", r.FilledCells),
			fmt.Sprintf("%d", r.DroppedRows),
			detail,
		})
	}

	table.SetFooter([]string{"", "", "", "", "elapsed", batch.Elapsed.Round(time.Second).String()})
	table.Render()
}
