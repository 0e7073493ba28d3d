package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// xlsMaxCols bounds the column scan for .xls rows, whose recorded width is
// not reliable.
const xlsMaxCols = 64

// Record is one data row keyed by its header cell.
type Record map[string]string

// Table is the first sheet of an import file.
type Table struct {
	Header  []string
	Records []Record
}

// ReadFile dispatches on the extension: .csv, .xlsx or .xls. The first row
// is the header; blank rows are skipped.
func ReadFile(path string) (Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVFile(path)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".xls":
		rows, err = readXLS(path)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return buildTable(rows), nil
}

func buildTable(rows [][]string) Table {
	var t Table
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if t.Header == nil {
			t.Header = make([]string, len(row))
			for i, cell := range row {
				t.Header[i] = strings.TrimSpace(cell)
			}
			continue
		}
		rec := make(Record, len(t.Header))
		for i, name := range t.Header {
			if name == "" || i >= len(row) {
				continue
			}
			rec[name] = strings.TrimSpace(row[i])
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

// readXLSX returns raw cell values so that date cells arrive as serials.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no worksheet found")
	}
	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row, ok := xlsRow(sheet, i)
		if !ok {
			continue
		}
		cells := make([]string, 0, 8)
		for c := 0; c < xlsMaxCols; c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, trimTrailing(cells))
	}
	return rows, nil
}

// xlsRow guards WorkSheet.Row, which panics on rows absent from the sheet.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row, ok bool) {
	defer func() {
		if recover() != nil {
			row, ok = nil, false
		}
	}()
	row = sheet.Row(i)
	return row, row != nil
}

func trimTrailing(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}
