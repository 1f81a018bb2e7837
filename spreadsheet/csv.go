package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVReader читает файл с разделителем-запятой
type CSVReader struct{}

func (CSVReader) Extension() string { return ".csv" }

func (CSVReader) Read(r io.Reader) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return newSheet(records), nil
}
