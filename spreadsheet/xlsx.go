package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXReader читает активный лист книги Excel
type XLSXReader struct{}

func (XLSXReader) Extension() string { return ".xlsx" }

// Read возвращает значения ячеек без применения числовых форматов,
// поэтому даты приходят порядковыми номерами дней.
func (XLSXReader) Read(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		return &Sheet{}, nil
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}
	return newSheet(rows), nil
}
