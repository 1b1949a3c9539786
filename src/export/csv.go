package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/quantumsuite/marketfetch/src/models"
)

// CanonicalRowDTO mirrors the hard external column contract. Field order is
// the contract; do not reorder.
type CanonicalRowDTO struct {
	Date         string `csv:"Date"`
	Series       string `csv:"Series"`
	Open         string `csv:"Open"`
	High         string `csv:"High"`
	Low          string `csv:"Low"`
	Close        string `csv:"Close"`
	Volume       string `csv:"Volume"`
	OpenInterest string `csv:"Open Interest"`
}

type canonicalRowWithStrikeDTO struct {
	CanonicalRowDTO
	StrikePrice string `csv:"Strike Price"`
}

// WriteCSV exports one instrument's canonical table.
func WriteCSV(path string, result *models.MergeResult, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteCSV: failed to create %s: %w", path, err)
	}
	defer file.Close()

	if result.HasStrikeKey {
		rows := make([]canonicalRowWithStrikeDTO, 0, len(result.Rows))
		for _, row := range result.Rows {
			cells := opts.renderRow(row, true)
			rows = append(rows, canonicalRowWithStrikeDTO{
				CanonicalRowDTO: dtoFromCells(cells),
				StrikePrice:     cells[8],
			})
		}
		if err := gocsv.MarshalFile(&rows, file); err != nil {
			return fmt.Errorf("WriteCSV: failed to marshal %s: %w", path, err)
		}
	} else {
		rows := make([]CanonicalRowDTO, 0, len(result.Rows))
		for _, row := range result.Rows {
			rows = append(rows, dtoFromCells(opts.renderRow(row, false)))
		}
		if err := gocsv.MarshalFile(&rows, file); err != nil {
			return fmt.Errorf("WriteCSV: failed to marshal %s: %w", path, err)
		}
	}

	log.Infof("exported %d rows to %s", result.RowCount, path)
	return nil
}

func dtoFromCells(cells []string) CanonicalRowDTO {
	return CanonicalRowDTO{
		Date:         cells[0],
		Series:       cells[1],
		Open:         cells[2],
		High:         cells[3],
		Low:          cells[4],
		Close:        cells[5],
		Volume:       cells[6],
		OpenInterest: cells[7],
	}
}
