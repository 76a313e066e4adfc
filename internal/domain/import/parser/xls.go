package parser

import (
	"os"

	"github.com/shakinm/xlsReader/xls"
)

// readXLS decodes a legacy BIFF workbook. xlsReader only opens files from
// disk, so the bytes are staged in a temp file that is removed on every
// exit path.
func readXLS(data []byte) (*Workbook, error) {
	tmp, err := os.CreateTemp("", "import-*.xls")
	if err != nil {
		return nil, errUnreadable()
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, errUnreadable()
	}
	if err := tmp.Close(); err != nil {
		return nil, errUnreadable()
	}

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, errUnreadable()
	}

	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, errUnreadable()
	}

	var records [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, col := range row.GetCols() {
			cells = append(cells, col.GetString())
		}
		records = append(records, cells)
	}

	return buildWorkbook(records)
}
