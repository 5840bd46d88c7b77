package sources

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

// ExcelSource reads records from the first sheet of an xlsx workbook
// whose first row names the columns.
type ExcelSource struct {
	Path string
}

// NewExcelSource creates a source over an xlsx file path.
func NewExcelSource(path string) *ExcelSource {
	return &ExcelSource{Path: path}
}

// Records implements Source. The window is ignored; workbook contents are
// the full extract.
func (s *ExcelSource) Records(_ context.Context, _ Window) ([]types.Record, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, errors.WrapIO("open", s.Path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WrapParse("xlsx", s.Path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]types.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(types.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
