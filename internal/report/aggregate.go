// Package report aggregates a normalized dispensing table into per-prescriber
// counts and percentage shares, and collapses the long tail into a single
// "기타" bucket.
package report

import (
	"sort"

	apperrors "rxcli/internal/errors"
	"rxcli/pkg/contracts/domain"
)

// Aggregate groups the clean table by prescriber identity and computes each
// group's percentage share of the surviving row count. The result is
// unordered; ordering is Collapse's concern. Zero surviving rows is an
// EmptyDatasetError rather than a division by zero.
func Aggregate(table domain.CleanTable) ([]domain.SharedRow, error) {
	total := len(table.Rows)
	if total == 0 {
		return nil, &apperrors.EmptyDatasetError{}
	}

	counts := make(map[string]int)
	for _, row := range table.Rows {
		counts[row[table.PrescriberCol]]++
	}

	rows := make([]domain.SharedRow, 0, len(counts))
	for prescriber, count := range counts {
		rows = append(rows, domain.SharedRow{
			Prescriber: prescriber,
			Count:      count,
			Share:      100 * float64(count) / float64(total),
		})
	}
	return rows, nil
}

// Collapse sorts the aggregated rows by descending count and keeps the topN
// highest; everything beyond is merged into one synthetic 기타 row carrying
// the excluded count and share sums, appended last. Ties on count break by
// prescriber identity ascending so output is reproducible across runs.
// The operation is total for any non-empty input and has no side effects.
func Collapse(rows []domain.SharedRow, topN int) domain.ReportTable {
	sorted := make([]domain.SharedRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Prescriber < sorted[j].Prescriber
	})

	total := 0
	for _, row := range sorted {
		total += row.Count
	}

	if len(sorted) <= topN {
		return domain.ReportTable{Rows: sorted, TotalCount: total}
	}

	kept := sorted[:topN:topN]
	other := domain.SharedRow{Prescriber: domain.OtherBucket}
	for _, row := range sorted[topN:] {
		other.Count += row.Count
		other.Share += row.Share
	}

	return domain.ReportTable{
		Rows:       append(kept, other),
		TotalCount: total,
	}
}
