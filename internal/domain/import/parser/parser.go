// Package parser decodes uploaded spreadsheet files (XLSX, legacy XLS, CSV)
// into an ordered sequence of raw rows. The first row of the sheet is
// treated as the header row; everything after it is data, in file order.
package parser

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"
)

// Format error codes
const (
	FormatEmpty      = "empty"
	FormatUnreadable = "unreadable"
	FormatTooLarge   = "too_large"
)

// FormatError is a fatal file-level failure: the upload is missing, empty,
// or cannot be parsed as any supported spreadsheet format. It aborts the
// whole import before any row is touched.
type FormatError struct {
	Code    string
	Message string
}

func (e *FormatError) Error() string { return e.Message }

// NewFormatError builds a FormatError with the given code and message.
func NewFormatError(code, message string) *FormatError {
	return &FormatError{Code: code, Message: message}
}

func errEmpty() *FormatError {
	return NewFormatError(FormatEmpty, "file contains no data rows")
}

func errUnreadable() *FormatError {
	return NewFormatError(FormatUnreadable, "file could not be read as a spreadsheet or CSV")
}

// Workbook is the decoded upload: the original header labels in column
// order plus every data row, aligned to the headers and kept in file order.
// Rows may be shorter than Headers when trailing cells are blank.
type Workbook struct {
	Headers []string
	Rows    [][]string
}

// RowMap renders data row i as an original-header -> cell-value map,
// the shape the preview endpoint returns.
func (w *Workbook) RowMap(i int) map[string]string {
	m := make(map[string]string, len(w.Headers))
	row := w.Rows[i]
	for col, header := range w.Headers {
		value := ""
		if col < len(row) {
			value = strings.TrimSpace(row[col])
		}
		m[header] = value
	}
	return m
}

// Read decodes file content into a Workbook. The format is chosen by file
// extension first, then by content sniffing (ZIP magic for XLSX, OLE magic
// for legacy XLS, CSV otherwise).
func Read(data []byte, filename string) (*Workbook, error) {
	if len(data) == 0 {
		return nil, errEmpty()
	}

	switch detectFormat(data, filename) {
	case "xlsx":
		return readXLSX(data)
	case "xls":
		return readXLS(data)
	default:
		return readCSV(data)
	}
}

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

func detectFormat(data []byte, filename string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"):
		return "xlsx"
	case strings.HasSuffix(strings.ToLower(filename), ".xls"):
		return "xls"
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		return "csv"
	case bytes.HasPrefix(data, zipMagic):
		return "xlsx"
	case bytes.HasPrefix(data, oleMagic):
		return "xls"
	default:
		return "csv"
	}
}

func readCSV(data []byte) (*Workbook, error) {
	data = normalizeCSVBytes(data)
	if bytes.ContainsRune(data, 0) {
		// Binary content masquerading as text.
		return nil, errUnreadable()
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errUnreadable()
	}

	return buildWorkbook(records)
}

// buildWorkbook splits raw records into header + data rows and drops
// trailing all-blank rows. Interior blank rows are kept so that spreadsheet
// row numbers in error reports stay true to the file.
func buildWorkbook(records [][]string) (*Workbook, error) {
	for len(records) > 0 && isBlankRow(records[len(records)-1]) {
		records = records[:len(records)-1]
	}
	if len(records) < 2 {
		return nil, errEmpty()
	}
	return &Workbook{Headers: records[0], Rows: records[1:]}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeCSVBytes strips a UTF-8 BOM and transcodes Latin-1 exports.
func normalizeCSVBytes(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return data
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return []byte(string(runes))
}
