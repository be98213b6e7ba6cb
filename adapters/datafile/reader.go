package datafile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"apistudy/internal"
	apperrors "apistudy/internal/errors"
)

// RawRow is one data row keyed by trimmed header name
type RawRow map[string]string

// Table is the raw tabular content of a data file before any typed parsing
type Table struct {
	Headers []string
	Rows    []RawRow
}

// DataReader reads Excel and CSV files into a Table. The format is picked
// from the file extension; everything except ".csv" goes through excelize.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadTable reads the file into header-keyed rows
func (r *DataReader) ReadTable() (*Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.DataInvalid(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath))
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, apperrors.DataInvalid("unsupported file type: " + r.fileType)
	}
}

func (r *DataReader) readExcel() (*Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read first sheet")
	}
	if len(rows) < 2 {
		return nil, apperrors.DataInvalid("Excel file must have a header row and at least one data row")
	}

	internal.DefaultLogger.Debug("[DataReader] Excel file read (%d rows)", len(rows))
	return r.buildTable(rows)
}

func (r *DataReader) readCSV() (*Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-cell below
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read CSV file")
	}
	if len(rows) < 2 {
		return nil, apperrors.DataInvalid("CSV file must have a header row and at least one data row")
	}

	internal.DefaultLogger.Debug("[DataReader] CSV file read (%d rows)", len(rows))
	return r.buildTable(rows)
}

func (r *DataReader) buildTable(rows [][]string) (*Table, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRow)
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	internal.DefaultLogger.Info("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &Table{Headers: headers, Rows: dataRows}, nil
}
