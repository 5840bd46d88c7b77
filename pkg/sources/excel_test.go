package sources

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tracksync/bridge/pkg/errors"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "extract.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelSourceRecords(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"patient_id", "name", "weight"},
		{"C1", "Jan", 42},
		{"C2", "Ada"},
	})

	records, err := NewExcelSource(path).Records(context.Background(), Window{})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "C1", records[0]["patient_id"])
	assert.Equal(t, "Jan", records[0]["name"])
	assert.Equal(t, "42", records[0]["weight"])

	assert.Equal(t, "Ada", records[1]["name"])
	_, present := records[1]["weight"] // short row, cell absent
	assert.False(t, present)
}

func TestExcelSourceHeaderOnly(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{{"patient_id"}})

	records, err := NewExcelSource(path).Records(context.Background(), Window{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExcelSourceMissingFile(t *testing.T) {
	_, err := NewExcelSource(filepath.Join(t.TempDir(), "absent.xlsx")).
		Records(context.Background(), Window{})

	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}
