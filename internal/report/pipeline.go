package report

import (
	"context"
	"log/slog"

	"rxcli/internal/ingest"
	"rxcli/pkg/contracts/domain"
)

// Pipeline runs the full aggregation sequence: ingest, normalize, aggregate,
// collapse. It holds no state between invocations; every call starts from a
// freshly parsed table.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{logger: logger.With(slog.String("component", "pipeline"))}
}

// IngestAndAggregate processes one dispensing export. It halts at the first
// failing stage and returns a structured error; no partial table is ever
// produced. The input may be delimited text (UTF-8 with optional BOM, or
// EUC-KR) or an xlsx workbook.
func (p *Pipeline) IngestAndAggregate(ctx context.Context, data []byte, opts domain.AnalyzeOptions) (domain.ReportTable, error) {
	if opts.TopN <= 0 {
		opts = domain.DefaultAnalyzeOptions()
	}

	raw, err := ingest.Read(data)
	if err != nil {
		return domain.ReportTable{}, err
	}
	p.logger.DebugContext(ctx, "export ingested",
		slog.Int("columns", len(raw.Header)),
		slog.Int("rows", len(raw.Rows)))

	clean, err := ingest.Normalize(raw)
	if err != nil {
		return domain.ReportTable{}, err
	}

	rows, err := Aggregate(clean)
	if err != nil {
		return domain.ReportTable{}, err
	}

	table := Collapse(rows, opts.TopN)
	p.logger.InfoContext(ctx, "export aggregated",
		slog.Int("surviving_rows", table.TotalCount),
		slog.Int("distinct_prescribers", len(rows)),
		slog.Int("report_rows", len(table.Rows)),
		slog.Bool("has_other", table.HasOther()))

	return table, nil
}
