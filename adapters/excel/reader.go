package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"goancova/domain/core"
	"goancova/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// Options tunes column type inference.
type Options struct {
	// Sheet selects the worksheet of an xlsx file; empty means the first one.
	Sheet string
	// ZeroOneAsBinary turns columns made only of "0" and "1" into Binary
	// columns instead of Numerical ones.
	ZeroOneAsBinary bool
}

// DataReader reads Excel and CSV files into a dataset.Store
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	opts     Options
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, opts Options) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, opts: opts}
}

// ReadStore reads the file into a typed column store
func (r *DataReader) ReadStore() (*dataset.Store, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s file %s", core.ErrNotFound, strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		file, err := os.Open(r.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		return ReadCSV(file, r.opts)
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the configured sheet of an xlsx workbook
func (r *DataReader) readExcelData() (*dataset.Store, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, core.NewInvalidDataError("workbook %s has no sheets", r.filePath)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	// excelize drops trailing empty cells, so short rows are padded back
	// to the header width before the field count check.
	if len(rows) > 0 {
		width := len(rows[0])
		for i := 1; i < len(rows); i++ {
			for len(rows[i]) < width {
				rows[i] = append(rows[i], "")
			}
		}
	}
	return buildStore(rows, r.opts)
}

// ReadCSV reads delimited text with a header row into a store
func ReadCSV(src io.Reader, opts Options) (*dataset.Store, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	log.Printf("[DataReader] CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return buildStore(rows, opts)
}

// buildStore infers a kind per column and fills the store column by column
func buildStore(rows [][]string, opts Options) (*dataset.Store, error) {
	if len(rows) < 2 {
		return nil, core.NewInvalidDataError("file must have at least a header row and one data row")
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
		if headers[i] == "" {
			return nil, core.NewInvalidDataError("header %d is empty", i+1)
		}
	}

	columns := make([][]string, len(headers))
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) != len(headers) {
			return nil, core.NewInvalidDataError("row %d has %d fields, header has %d", i+1, len(rows[i]), len(headers))
		}
		for j, cell := range rows[i] {
			columns[j] = append(columns[j], strings.TrimSpace(cell))
		}
	}

	store := dataset.NewStore()
	for j, header := range headers {
		var err error
		switch kind := InferKind(columns[j], opts); kind {
		case dataset.Numerical:
			err = store.AddNumerical(header, parseFloats(columns[j]))
		case dataset.Binary:
			err = store.AddBinary(header, parseFlags(columns[j]))
		case dataset.Categorical:
			err = store.AddCategorical(header, columns[j])
		}
		if err != nil {
			return nil, err
		}
	}

	log.Printf("[DataReader] Built store (%d columns, %d rows)", len(headers), len(rows)-1)
	return store, nil
}

// InferKind applies the column typing rule: every field numeric means
// Numerical, every field a boolean token means Binary, anything else is
// Categorical.
func InferKind(fields []string, opts Options) dataset.Kind {
	if len(fields) == 0 {
		return dataset.Categorical
	}
	if opts.ZeroOneAsBinary && all(fields, func(s string) bool { return s == "0" || s == "1" }) {
		return dataset.Binary
	}
	if all(fields, isNumber) {
		return dataset.Numerical
	}
	if all(fields, isBoolToken) {
		return dataset.Binary
	}
	return dataset.Categorical
}

func all(fields []string, pred func(string) bool) bool {
	for _, f := range fields {
		if !pred(f) {
			return false
		}
	}
	return true
}

// isNumber accepts finite numbers only; "NaN" and "Inf" are missing-value
// markers, not measurements.
func isNumber(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isBoolToken(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "0", "1":
		return true
	}
	return false
}

func parseFloats(fields []string) []float64 {
	out := make([]float64, len(fields))
	for i, f := range fields {
		out[i], _ = strconv.ParseFloat(f, 64)
	}
	return out
}

func parseFlags(fields []string) []bool {
	out := make([]bool, len(fields))
	for i, f := range fields {
		switch strings.ToLower(f) {
		case "true", "1":
			out[i] = true
		}
	}
	return out
}
