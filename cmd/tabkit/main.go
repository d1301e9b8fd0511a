// Command tabkit analyzes a tabular data file and writes a report, or serves
// previously generated reports over HTTP.
//
//	tabkit [flags] <file>
//	tabkit serve
//
// Configuration comes from TABKIT_* environment variables (optionally via a
// .env file) with flags layered on top.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"tabkit"
	"tabkit/adapters/load"
	"tabkit/adapters/render"
	"tabkit/adapters/serve"
	"tabkit/internal"
	"tabkit/internal/analyze"
	"tabkit/internal/clean"
	"tabkit/internal/config"
)

func main() {
	// Missing .env is fine; the environment alone may carry everything.
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.LoadCLI()
	if err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "serve" {
		runServe(cfg, logger)
		return
	}
	runAnalyze(cfg, logger)
}

func runServe(cfg *config.CLI, logger *internal.Logger) {
	logger.Info("serving reports from %s on %s", cfg.OutputDir, cfg.ServeAddr)
	if err := serve.New(cfg.OutputDir).ListenAndServe(cfg.ServeAddr); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}

func runAnalyze(cfg *config.CLI, logger *internal.Logger) {
	var (
		out      = flag.String("out", "", "output path (default <output dir>/<input>.<format>)")
		format   = flag.String("format", "html", "report format: html, md or json")
		title    = flag.String("title", cfg.Title, "report title")
		cleanRun = flag.Bool("clean", false, "run the cleaning pipeline before analysis")
		fill     = flag.String("fill", "", "missing value strategy: mean, median, mode, drop, ffill or bfill")
		rfm      = flag.String("rfm", "", "recency,frequency,monetary column names for segmentation")
		segments = flag.Int("segments", analyze.DefaultSegments, "number of RFM score levels")
		sheet    = flag.String("sheet", "", "Excel worksheet name")
		dsn      = flag.String("dsn", os.Getenv("TABKIT_DSN"), "Postgres connection string for -query")
		query    = flag.String("query", "", "SQL query to analyze instead of a file")
	)
	flag.Parse()

	var (
		analyzer *tabkit.Analyzer
		input    string
		err      error
	)
	switch {
	case *query != "":
		input = "query"
		analyzer, err = openQuery(*dsn, *query, cfg)
	case flag.NArg() == 1:
		input = flag.Arg(0)
		analyzer, err = openInput(input, *sheet, cfg)
	default:
		fmt.Fprintln(os.Stderr, "usage: tabkit [flags] <file>  |  tabkit -query <sql> -dsn <conn>  |  tabkit serve")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("load %s: %v", input, err)
		os.Exit(1)
	}
	logger.Info("loaded %s: %d rows, %d columns",
		input, analyzer.Dataset().RowCount(), analyzer.Dataset().ColumnCount())

	if *cleanRun {
		opts := clean.PipelineOptions{
			StandardizeColumns: true,
			TrimWhitespace:     true,
			RemoveDuplicates:   true,
			FillMissing:        clean.FillStrategy(*fill),
		}
		if err := analyzer.Clean(opts); err != nil {
			logger.Error("clean: %v", err)
			os.Exit(1)
		}
	}

	report, err := analyzer.BuildReport(*title, cfg.SampleRows)
	if err != nil {
		logger.Error("analyze: %v", err)
		os.Exit(1)
	}

	if *rfm != "" {
		cols := strings.Split(*rfm, ",")
		if len(cols) != 3 {
			logger.Error("-rfm needs exactly three column names, got %q", *rfm)
			os.Exit(2)
		}
		scores, err := analyzer.SegmentRFM(
			strings.TrimSpace(cols[0]), strings.TrimSpace(cols[1]), strings.TrimSpace(cols[2]), *segments)
		if err != nil {
			logger.Error("segment: %v", err)
			os.Exit(1)
		}
		report.Segments = scores
		if chart := render.SegmentChart("Customer Segments", scores); chart != nil {
			report.Charts = append(report.Charts, chart)
		}
	}

	path := *out
	if path == "" {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		path = filepath.Join(cfg.OutputDir, base+"."+*format)
	}

	switch *format {
	case "html":
		err = analyzer.SaveHTML(report, path)
	case "md", "markdown":
		err = analyzer.SaveMarkdown(report, path)
	case "json":
		err = analyzer.SaveJSON(report, path)
	default:
		logger.Error("unknown format %q", *format)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("write report: %v", err)
		os.Exit(1)
	}
	logger.Info("report written to %s", path)
}

func openQuery(dsn, query string, cfg *config.CLI) (*tabkit.Analyzer, error) {
	if dsn == "" {
		return nil, fmt.Errorf("-query requires -dsn or TABKIT_DSN")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer db.Close()
	return tabkit.OpenSQL(context.Background(), db, query, cfg.Options)
}

func openInput(input, sheet string, cfg *config.CLI) (*tabkit.Analyzer, error) {
	lopts := load.Options{Sheet: sheet}
	if strings.ContainsAny(input, "*?[") {
		return tabkit.OpenGlob(context.Background(), input, lopts, cfg.Options)
	}
	return tabkit.Open(input, lopts, cfg.Options)
}
