package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"
)

// XMLReader читает первый лист книги в формате XML Spreadsheet 2003
type XMLReader struct{}

func (XMLReader) Extension() string { return ".xml" }

func (XMLReader) Read(r io.Reader) (*Sheet, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing xml: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "Workbook" {
		return nil, errors.New("not a SpreadsheetML workbook")
	}

	worksheet := child(root, "Worksheet")
	if worksheet == nil {
		return &Sheet{}, nil
	}
	table := child(worksheet, "Table")
	if table == nil {
		return &Sheet{}, nil
	}

	var rows [][]string
	for _, rowEl := range table.ChildElements() {
		if rowEl.Tag != "Row" {
			continue
		}
		// ss:Index задает номер строки, пропущенные строки пустые
		if idx, ok := indexAttr(rowEl); ok {
			for len(rows) < idx-1 {
				rows = append(rows, nil)
			}
		}
		row, err := readRow(rowEl)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return newSheet(rows), nil
}

func readRow(rowEl *etree.Element) ([]string, error) {
	var row []string
	for _, cell := range rowEl.ChildElements() {
		if cell.Tag != "Cell" {
			continue
		}
		if idx, ok := indexAttr(cell); ok {
			if idx < len(row)+1 {
				return nil, fmt.Errorf("cell index %d goes backwards", idx)
			}
			for len(row) < idx-1 {
				row = append(row, "")
			}
		}
		value := ""
		if data := child(cell, "Data"); data != nil {
			value = data.Text()
		}
		row = append(row, value)
	}
	return row, nil
}

func child(e *etree.Element, tag string) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// indexAttr читает атрибут Index независимо от префикса пространства имен
func indexAttr(e *etree.Element) (int, bool) {
	for _, a := range e.Attr {
		if a.Key == "Index" {
			n, err := strconv.Atoi(a.Value)
			return n, err == nil && n > 0
		}
	}
	return 0, false
}
