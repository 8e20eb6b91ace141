package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

// CSVSheetName is the implicit sheet name a csv scoresheet is exposed under,
// so csv and xlsx files present the same multi-sheet surface.
const CSVSheetName = "Sheet1"

// Workbook is a parsed scoresheet: one or more named sheets of string cells.
type Workbook struct {
	sheetNames []string
	rows       map[string][][]string
}

// Open parses a scoresheet from bytes. Files named *.csv are read as a
// single-sheet workbook; everything else goes through excelize.
func Open(filename string, data []byte) (*Workbook, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return openCSV(data)
	}
	return openXLSX(data)
}

func openXLSX(data []byte) (*Workbook, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}

	wb := &Workbook{
		sheetNames: sheets,
		rows:       make(map[string][][]string, len(sheets)),
	}
	for _, name := range sheets {
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		wb.rows[name] = rows
	}
	return wb, nil
}

func openCSV(data []byte) (*Workbook, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}

	return &Workbook{
		sheetNames: []string{CSVSheetName},
		rows:       map[string][][]string{CSVSheetName: rows},
	}, nil
}

func (w *Workbook) SheetNames() []string {
	return w.sheetNames
}

// HeaderRow returns the first row of the named sheet. An empty sheet yields
// an empty header set, not an error.
func (w *Workbook) HeaderRow(sheetName string) ([]string, error) {
	rows, ok := w.rows[sheetName]
	if !ok {
		return nil, errors.ErrSheetNotFound
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// DataRows returns every row after the header for the named sheet.
func (w *Workbook) DataRows(sheetName string) ([][]string, error) {
	rows, ok := w.rows[sheetName]
	if !ok {
		return nil, errors.ErrSheetNotFound
	}
	if len(rows) < 2 {
		return nil, nil
	}
	return rows[1:], nil
}
