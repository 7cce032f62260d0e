package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rxcli/internal/errors"
	"rxcli/pkg/contracts/domain"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"plain", "처방의사", "처방의사"},
		{"embedded newline", "처방\n의사", "처방의사"},
		{"carriage return and tab", "처방\r\t의사", "처방의사"},
		{"surrounding whitespace", "  조제일  ", "조제일"},
		{"internal spaces", "조 제 일", "조제일"},
		{"all of the above", " 처방\r\n 의사\t", "처방의사"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLabel(tt.label))
		})
	}
}

func TestNormalize(t *testing.T) {
	raw := domain.RawTable{
		Header: []string{"조제일", " 처방\n의사", "약품명"},
		Rows: [][]string{
			{"2025-01-02", "김철수", "아스피린"},
			{"2025-01-02", "이영희", "타이레놀"},
			{"합계", "", "120"},
		},
	}

	clean, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"조제일", "처방의사", "약품명"}, clean.Header)
	assert.Equal(t, 1, clean.PrescriberCol)
	assert.Equal(t, 0, clean.DateCol)
	// The grand-total marker row is excluded before aggregation.
	assert.Len(t, clean.Rows, 2)
}

func TestNormalizeMissingPrescriberColumn(t *testing.T) {
	raw := domain.RawTable{
		Header: []string{"조제일", "약품명"},
		Rows:   [][]string{{"2025-01-02", "아스피린"}},
	}

	_, err := Normalize(raw)

	var schemaErr *apperrors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, domain.ColumnPrescriber, schemaErr.Missing)
}

func TestNormalizeWithoutDateColumn(t *testing.T) {
	raw := domain.RawTable{
		Header: []string{"처방의사", "약품명"},
		Rows: [][]string{
			{"김철수", "아스피린"},
			{"합계", "120"}, // not a marker: no date column to match against
		},
	}

	clean, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, -1, clean.DateCol)
	// Absent date column disables marker filtering; this is not an error.
	assert.Len(t, clean.Rows, 2)
}

func TestNormalizeDropsRowsWithoutPrescriber(t *testing.T) {
	raw := domain.RawTable{
		Header: []string{"조제일", "처방의사"},
		Rows: [][]string{
			{"2025-01-02", "김철수"},
			{"2025-01-02", "  "},
			{"2025-01-03"}, // short row
		},
	}

	clean, err := Normalize(raw)
	require.NoError(t, err)
	assert.Len(t, clean.Rows, 1)
}
