package sources

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

// CSVSource reads records from a local CSV file whose first row names the
// columns.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a source over a CSV file path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Records implements Source. The window is ignored; file contents are the
// full extract.
func (s *CSVSource) Records(_ context.Context, _ Window) ([]types.Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.WrapIO("open", s.Path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", s.Path, err)
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
