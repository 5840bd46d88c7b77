package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extract.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSourceRecords(t *testing.T) {
	path := writeCSV(t, "patient_id,name,weight\nC1,Jan,42\nC2,Ada,\n")

	records, err := NewCSVSource(path).Records(context.Background(), Window{})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, types.Record{"patient_id": "C1", "name": "Jan", "weight": "42"}, records[0])
	assert.Equal(t, types.Record{"patient_id": "C2", "name": "Ada", "weight": ""}, records[1])
}

func TestCSVSourceShortRow(t *testing.T) {
	path := writeCSV(t, "a,b,c\n1,2\n")

	records, err := NewCSVSource(path).Records(context.Background(), Window{})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0]["b"])
	_, present := records[0]["c"]
	assert.False(t, present)
}

func TestCSVSourceEmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	records, err := NewCSVSource(path).Records(context.Background(), Window{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv")).
		Records(context.Background(), Window{})

	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}
