package parser

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// readXLSX decodes an XLSX workbook with excelize. Cells are read raw so
// date cells surface as spreadsheet serial numbers rather than whatever
// display format the sheet happens to use; the row converter understands
// serial dates.
func readXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errUnreadable()
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errEmpty()
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errUnreadable()
	}

	return buildWorkbook(rows)
}
