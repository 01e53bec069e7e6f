package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"uirunner/internal/domain"
)

const (
	// Fill colours for the Status column
	passFillColor = "C6EFCE"
	failFillColor = "FFC7CE"

	patternType  = "pattern"
	patternValue = 1

	defaultColumnWidth  = 18
	selectorColumnWidth = 40
)

// Columns a case workbook must have; the others may be left out.
var requiredColumns = []string{"Test Case ID", "Element Selector", "Action"}

// WorkbookStore reads and writes test case and result tables as .xlsx files.
type WorkbookStore struct {
	sheet string
}

// NewWorkbookStore creates a WorkbookStore using the named worksheet
func NewWorkbookStore(sheet string) *WorkbookStore {
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &WorkbookStore{sheet: sheet}
}

// WriteCases writes cases to a new workbook at path
func (w *WorkbookStore) WriteCases(path string, cases []domain.TestCase) error {
	rows := make([][]string, 0, len(cases))
	for _, tc := range cases {
		rows = append(rows, tc.Row())
	}
	return w.write(path, domain.CaseColumns, rows, nil)
}

// WriteResults writes results to a new workbook at path, shading the Status
// cell of every row.
func (w *WorkbookStore) WriteResults(path string, results []domain.TestResult) error {
	rows := make([][]string, 0, len(results))
	passed := make([]bool, 0, len(results))
	for _, r := range results {
		rows = append(rows, r.Row())
		passed = append(passed, r.Passed())
	}
	return w.write(path, domain.ResultColumns, rows, passed)
}

func (w *WorkbookStore) write(path string, header []string, rows [][]string, passed []bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), w.sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := setRow(f, w.sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, w.sheet, i+2, row); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(w.sheet, "A", lastCol, defaultColumnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(w.sheet, "C", "C", selectorColumnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if passed != nil {
		if err := shadeStatus(f, w.sheet, len(header), passed); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func shadeStatus(f *excelize.File, sheet string, statusCol int, passed []bool) error {
	passStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: patternType, Pattern: patternValue, Color: []string{passFillColor}},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	failStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: patternType, Pattern: patternValue, Color: []string{failFillColor}},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, ok := range passed {
		cell, err := excelize.CoordinatesToCellName(statusCol, i+2)
		if err != nil {
			return err
		}
		style := failStyle
		if ok {
			style = passStyle
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("style %s: %w", cell, err)
		}
	}
	return nil
}

// ReadCases reads test cases from the workbook at path
func (w *WorkbookStore) ReadCases(path string) ([]domain.TestCase, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return w.readCases(f)
}

// ReadCasesFrom reads test cases from a workbook stream, e.g. an upload
func (w *WorkbookStore) ReadCasesFrom(r io.Reader) ([]domain.TestCase, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return w.readCases(f)
}

// readCases maps columns by header name, so column order does not matter.
// Rows with no values are skipped. Cell values are taken verbatim.
func (w *WorkbookStore) readCases(f *excelize.File) ([]domain.TestCase, error) {
	sheet := w.sheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	index := make(map[string]int)
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("sheet %s: missing column %q", sheet, name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := index[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	cases := make([]domain.TestCase, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cases = append(cases, domain.TestCase{
			ID:             cell(row, "Test Case ID"),
			Description:    cell(row, "Description"),
			Selector:       cell(row, "Element Selector"),
			Action:         cell(row, "Action"),
			InputData:      cell(row, "Input Data"),
			ExpectedResult: cell(row, "Expected Result"),
		})
	}
	return cases, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
