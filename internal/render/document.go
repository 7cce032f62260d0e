package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-pdf/fpdf"
	chart "github.com/wcharczuk/go-chart/v2"

	apperrors "rxcli/internal/errors"
	"rxcli/pkg/contracts/domain"
)

// Renderer exports report charts as a two-page PDF document.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger.With(slog.String("component", "renderer"))}
}

// ExportDocument rasterizes the bar and pie charts and assembles them into
// a paginated PDF, one chart per page, each page captioned with the chart
// title. The export is staged; a failure aborts the remaining stages and
// surfaces a stage-tagged RenderError. Failures here are deterministic for
// a given input, so nothing is retried. All intermediate image buffers are
// scoped to this call.
func (r *Renderer) ExportDocument(ctx context.Context, bar domain.BarSpec, pie domain.PieSpec) ([]byte, error) {
	barPNG, err := rasterizeBar(bar)
	if err != nil {
		return nil, apperrors.NewRenderError(apperrors.StageRasterizeBar, err)
	}

	piePNG, err := rasterizePie(pie)
	if err != nil {
		return nil, apperrors.NewRenderError(apperrors.StageRasterizePie, err)
	}

	doc, err := assemble([]documentPage{
		{name: "bar", caption: bar.Title, png: barPNG},
		{name: "pie", caption: pie.Title, png: piePNG},
	})
	if err != nil {
		return nil, apperrors.NewRenderError(apperrors.StageAssemble, err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, apperrors.NewRenderError(apperrors.StageSerialize, err)
	}

	r.logger.InfoContext(ctx, "document exported",
		slog.Int("pages", 2),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// rasterizeBar renders the share bar chart to PNG with the fixed 0-100
// percentage axis and one-decimal value labels.
func rasterizeBar(spec domain.BarSpec) ([]byte, error) {
	if len(spec.Bars) == 0 {
		return nil, fmt.Errorf("no bars to render")
	}

	values := make([]chart.Value, len(spec.Bars))
	for i, bar := range spec.Bars {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %s", bar.Label, bar.ValueLabel),
			Value: bar.Share,
		}
	}

	bc := chart.BarChart{
		Title:    spec.Title,
		Width:    1024,
		Height:   512,
		BarWidth: 50,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: spec.AxisMin, Max: spec.AxisMax},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rasterizePie renders the count donut chart to PNG.
func rasterizePie(spec domain.PieSpec) ([]byte, error) {
	if len(spec.Slices) == 0 {
		return nil, fmt.Errorf("no slices to render")
	}

	values := make([]chart.Value, len(spec.Slices))
	for i, slice := range spec.Slices {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%d)", slice.Label, slice.Count),
			Value: float64(slice.Count),
		}
	}

	dc := chart.DonutChart{
		Title:  spec.Title,
		Width:  800,
		Height: 800,
		Values: values,
	}

	var buf bytes.Buffer
	if err := dc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type documentPage struct {
	name    string
	caption string
	png     []byte
}

// assemble composes the rasterized charts into an A4 portrait document,
// one chart per captioned page.
func assemble(pages []documentPage) (*fpdf.Fpdf, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Prescriber Dispensing Share Report", true)

	for _, page := range pages {
		doc.AddPage()
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 10, page.caption, "", 1, "C", false, 0, "")

		opts := fpdf.ImageOptions{ImageType: "PNG"}
		doc.RegisterImageOptionsReader(page.name, opts, bytes.NewReader(page.png))
		doc.ImageOptions(page.name, 15, 30, 180, 0, false, opts, 0, "")
	}

	if doc.Err() {
		return nil, doc.Error()
	}
	return doc, nil
}
