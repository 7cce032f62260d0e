// Package render turns a finished report table into chart structures and,
// optionally, a paginated PDF document embedding their rasterized forms.
package render

import (
	"fmt"

	"rxcli/pkg/contracts/domain"
)

// Fixed captions used for both the chart structures and the document pages.
const (
	BarChartTitle = "Prescriber Share (%)"
	PieChartTitle = "Dispensing Count by Prescriber"
)

// donutHoleRate is the hole size as a fraction of the pie radius.
const donutHoleRate = 0.3

// Charts builds the two chart representations of a report table: a bar
// chart keyed by identity with percentage values on a fixed 0-100 axis, and
// a donut chart keyed by identity with raw counts. The operation is pure
// and total for any table.
func Charts(table domain.ReportTable) (domain.BarSpec, domain.PieSpec) {
	bar := domain.BarSpec{
		Title:   BarChartTitle,
		AxisMin: 0,
		AxisMax: 100,
		Bars:    make([]domain.BarValue, 0, len(table.Rows)),
	}
	pie := domain.PieSpec{
		Title:           PieChartTitle,
		InnerRadiusRate: donutHoleRate,
		Slices:          make([]domain.PieSlice, 0, len(table.Rows)),
	}

	for _, row := range table.Rows {
		bar.Bars = append(bar.Bars, domain.BarValue{
			Label:      row.Prescriber,
			Share:      row.Share,
			ValueLabel: fmt.Sprintf("%.1f%%", row.Share),
		})
		pie.Slices = append(pie.Slices, domain.PieSlice{
			Label: row.Prescriber,
			Count: row.Count,
			Share: row.Share,
			Hover: fmt.Sprintf("%s: %d건 (%.1f%%)", row.Prescriber, row.Count, row.Share),
		})
	}

	return bar, pie
}
