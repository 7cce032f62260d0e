// Package ingest turns raw dispensing export bytes into a normalized table.
// It tolerates the two encodings pharmacy systems emit (UTF-8 with BOM and
// EUC-KR), skips the one-line metadata preamble, and locates the required
// columns after cleaning their labels.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	apperrors "rxcli/internal/errors"
	"rxcli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses delimited export bytes into a RawTable. The first physical
// row is unconditionally skipped as preamble; the second row becomes the
// header. Decode is attempted as UTF-8 first and retried once as EUC-KR;
// exhausting both returns an IngestError with a decode cause, any other
// parse problem an IngestError with a parse cause.
func ReadCSV(data []byte) (domain.RawTable, error) {
	text, err := decode(data)
	if err != nil {
		return domain.RawTable{}, apperrors.NewDecodeError(err)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = false

	records, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, apperrors.NewParseError(err)
	}
	if len(records) < 2 {
		return domain.RawTable{}, apperrors.NewParseError(
			fmt.Errorf("expected a preamble row and a header row, got %d rows", len(records)))
	}

	// records[0] is the export preamble; records[1] is the header.
	return domain.RawTable{
		Header: records[1],
		Rows:   records[2:],
	}, nil
}

// decode returns data as a UTF-8 string, stripping a leading BOM. Bytes
// that are not valid UTF-8 are retried exactly once as EUC-KR.
func decode(data []byte) (string, error) {
	trimmed := bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(trimmed) {
		return string(trimmed), nil
	}

	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("EUC-KR decode failed: %w", err)
	}
	// The EUC-KR decoder substitutes U+FFFD for bytes outside the
	// encoding instead of failing; treat any substitution as a failure so
	// corrupted input does not silently mangle identities.
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", fmt.Errorf("input is neither valid UTF-8 nor EUC-KR")
	}
	return string(decoded), nil
}
