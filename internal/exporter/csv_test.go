package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "rxcli/internal/errors"
	"rxcli/pkg/contracts/domain"
)

func testTable() domain.ReportTable {
	return domain.ReportTable{
		Rows: []domain.SharedRow{
			{Prescriber: "김철수", Count: 5, Share: 50},
			{Prescriber: "이영희", Count: 3, Share: 30},
			{Prescriber: "기타", Count: 2, Share: 100.0 * 2 / 10},
		},
		TotalCount: 10,
	}
}

func TestSaveTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")

	require.NoError(t, SaveTable(testTable(), path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// BOM prefix so spreadsheet tools detect UTF-8.
	assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))

	lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "처방의사,조제건수,점유율(%)", lines[0])
	assert.Equal(t, "김철수,5,50", lines[1])
}

func TestSaveTableCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "result.csv")

	require.NoError(t, SaveTable(testTable(), path))
	assert.FileExists(t, path)

	// Saving again over an existing directory tree is not an error.
	require.NoError(t, SaveTable(testTable(), path))
}

func TestSaveTableRoundTrip(t *testing.T) {
	table := testTable()
	path := filepath.Join(t.TempDir(), "roundtrip.csv")
	require.NoError(t, SaveTable(table, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(table.Rows)+1)

	for i, row := range table.Rows {
		got, err := ParseRecord(records[i+1])
		require.NoError(t, err)
		// Re-parsing reproduces identical {identity, count, share} tuples.
		assert.Equal(t, row, got)
	}
}

func TestParseRecordShortRecord(t *testing.T) {
	tests := [][]string{
		nil,
		{},
		{"김철수"},
		{"김철수", "5"},
	}

	for _, record := range tests {
		_, err := ParseRecord(record)
		assert.Error(t, err)
	}
}

func TestSaveTableWorkbook(t *testing.T) {
	table := testTable()
	path := filepath.Join(t.TempDir(), "result.xlsx")

	require.NoError(t, SaveTable(table, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(workbookSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(table.Rows)+1)
	assert.Equal(t, "처방의사", rows[0][0])
	assert.Equal(t, "김철수", rows[1][0])
	assert.Equal(t, "5", rows[1][1])
}

func TestSaveTableIOError(t *testing.T) {
	// A path whose parent is a regular file cannot be created.
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := SaveTable(testTable(), filepath.Join(blocker, "out.csv"))

	var ioErr *apperrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "mkdir", ioErr.Op)
}
