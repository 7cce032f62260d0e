package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"rxcli/internal/config"
	"rxcli/internal/exporter"
	"rxcli/internal/infrastructure"
	"rxcli/internal/render"
	"rxcli/internal/report"
	"rxcli/pkg/contracts"
	"rxcli/pkg/contracts/domain"
)

func main() {
	input := flag.String("in", "", "path to the dispensing export (.csv or .xlsx)")
	topN := flag.Int("top", domain.DefaultTopN, "prescribers to keep before collapsing the rest")
	outPath := flag.String("out", "", "save the share table to this path (.csv or .xlsx)")
	pdfPath := flag.String("pdf", "", "save the two-page chart report to this path")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString())
		return
	}

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: analyzer -in <export file> [-top N] [-out table.csv] [-pdf report.pdf]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *topN <= 0 {
		*topN = cfg.Report.TopN
	}

	if err := run(logger, *input, *topN, *outPath, *pdfPath); err != nil {
		logger.Error("Analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, input string, topN int, outPath, pdfPath string) error {
	ctx := context.Background()

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	pipeline := report.NewPipeline(logger)
	table, err := pipeline.IngestAndAggregate(ctx, data, domain.AnalyzeOptions{TopN: topN})
	if err != nil {
		return err
	}

	printTable(table)

	if outPath != "" {
		if err := exporter.SaveTable(table, outPath); err != nil {
			return err
		}
		fmt.Printf("\nShare table saved: %s\n", outPath)
	}

	if pdfPath != "" {
		bar, pie := render.Charts(table)
		doc, err := render.NewRenderer(logger).ExportDocument(ctx, bar, pie)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(pdfPath), 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
		if err := os.WriteFile(pdfPath, doc, 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Chart report saved: %s\n", pdfPath)
	}

	return nil
}

func printTable(table domain.ReportTable) {
	fmt.Printf("\n%-20s %10s %10s\n", "처방의사", "조제건수", "점유율(%)")
	fmt.Println("--------------------------------------------")
	for _, row := range table.Rows {
		fmt.Printf("%-20s %10d %9.1f%%\n", row.Prescriber, row.Count, row.Share)
	}
	fmt.Println("--------------------------------------------")
	fmt.Printf("%-20s %10d %9.1f%%\n", "합계", table.TotalCount, 100.0)
}
