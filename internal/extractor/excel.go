package extractor

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelReader flattens every sheet of a workbook: each non-empty cell is
// followed by a space and each row ends with a newline.
type ExcelReader struct{}

func (s *ExcelReader) Extract(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		// Streaming row iterator keeps wide sheets out of memory
		rows, err := f.Rows(sheet)
		if err != nil {
			continue
		}
		for rows.Next() {
			cols, err := rows.Columns()
			if err != nil {
				break
			}
			for _, cell := range cols {
				if cell == "" {
					continue
				}
				sb.WriteString(cell)
				sb.WriteByte(' ')
			}
			sb.WriteByte('\n')
		}
		rows.Close()
	}
	return sb.String(), nil
}
