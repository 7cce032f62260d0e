package domain

// Column labels expected in a dispensing export after header normalization.
const (
	// ColumnPrescriber is the grouping key column. Its absence after
	// normalization is a hard precondition failure for the pipeline.
	ColumnPrescriber = "처방의사"

	// ColumnDispenseDate may carry a trailing grand-total marker row.
	ColumnDispenseDate = "조제일"

	// GrandTotalMarker identifies the summary row some exports append.
	GrandTotalMarker = "합계"

	// OtherBucket is the identity of the synthetic row aggregating every
	// prescriber beyond the top N.
	OtherBucket = "기타"
)

// DefaultTopN is the number of prescribers kept before the remainder is
// collapsed into the OtherBucket row.
const DefaultTopN = 10

// RawTable holds a dispensing export exactly as read from source bytes:
// the header row plus untyped data rows. No invariants are enforced yet.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// CleanTable is a RawTable with normalized column labels, the grand-total
// row removed, and the prescriber column located.
type CleanTable struct {
	Header []string
	Rows   [][]string

	// PrescriberCol indexes the prescriber column in Header/Rows.
	PrescriberCol int
	// DateCol indexes the dispensing-date column, -1 when absent.
	DateCol int
}

// SharedRow is one aggregated prescriber with its dispensing count and
// percentage share of the total.
type SharedRow struct {
	Prescriber string  `json:"prescriber"`
	Count      int     `json:"count"`
	Share      float64 `json:"share"`
}

// ReportTable is the final ordered aggregation: at most DefaultTopN rows
// sorted by descending count plus an optional trailing OtherBucket row.
// It is computed once per ingested file and never mutated afterwards.
type ReportTable struct {
	Rows []SharedRow `json:"rows"`

	// TotalCount is the number of rows that survived normalization; row
	// counts always sum to it.
	TotalCount int `json:"total_count"`
}

// HasOther reports whether the table ends with the synthetic OtherBucket row.
func (t ReportTable) HasOther() bool {
	return len(t.Rows) > 0 && t.Rows[len(t.Rows)-1].Prescriber == OtherBucket
}

// AnalyzeOptions controls a single pipeline run.
type AnalyzeOptions struct {
	// TopN prescribers to keep before collapsing into OtherBucket.
	TopN int `json:"top_n" validate:"min=1,max=100"`
}

// DefaultAnalyzeOptions returns the options the original export workflow uses.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{TopN: DefaultTopN}
}
