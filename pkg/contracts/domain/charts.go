package domain

// BarSpec describes the share-by-prescriber bar chart: one bar per report
// row keyed by identity, value label formatted to one decimal place, and a
// fixed 0-100 percentage axis.
type BarSpec struct {
	Title   string     `json:"title"`
	AxisMin float64    `json:"axis_min"`
	AxisMax float64    `json:"axis_max"`
	Bars    []BarValue `json:"bars"`
}

// BarValue is a single bar.
type BarValue struct {
	Label      string  `json:"label"`
	Share      float64 `json:"share"`
	ValueLabel string  `json:"value_label"`
}

// PieSpec describes the count-by-prescriber donut chart. Hover carries the
// identity, raw count, and share at one decimal place.
type PieSpec struct {
	Title           string     `json:"title"`
	InnerRadiusRate float64    `json:"inner_radius_rate"`
	Slices          []PieSlice `json:"slices"`
}

// PieSlice is a single donut segment.
type PieSlice struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
	Hover string  `json:"hover"`
}
