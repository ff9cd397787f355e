package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat signals that the uploaded file is neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("spreadsheet: unsupported file format")

// Record is one data row keyed by header name.
type Record map[string]string

// Sheet is the parsed contents of an uploaded spreadsheet.
type Sheet struct {
	Headers []string
	Records []Record
}

// Parse reads the spreadsheet selected by the filename extension and verifies
// that every required column is present. Header matching is
// case-insensitive; record keys use the canonical required-column spelling.
func Parse(filename string, r io.Reader, required []string) (*Sheet, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("spreadsheet: file is empty")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	canonical, err := resolveColumns(headers, required)
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{Headers: headers}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		record := make(Record, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			key := header
			if name, ok := canonical[strings.ToLower(header)]; ok {
				key = name
			}
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			record[key] = value
		}
		sheet.Records = append(sheet.Records, record)
	}

	return sheet, nil
}

func resolveColumns(headers, required []string) (map[string]string, error) {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[strings.ToLower(h)] = true
	}

	var missing []string
	canonical := make(map[string]string, len(required))
	for _, name := range required {
		if !seen[strings.ToLower(name)] {
			missing = append(missing, name)
			continue
		}
		canonical[strings.ToLower(name)] = name
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("spreadsheet: missing required columns: %s", strings.Join(missing, ", "))
	}
	return canonical, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: open xlsx: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet: workbook has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: read xlsx rows: %w", err)
	}
	return rows, nil
}
