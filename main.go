package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gsc-exporter/config"
	"gsc-exporter/gsc"
	"gsc-exporter/models"
	"gsc-exporter/services"
	"gsc-exporter/storage"
	"gsc-exporter/utils"
)

func main() {
	// ================== Flags ====================
	useCache := flag.Bool("use-cache", false, "Reuse cached results from a previous run if present")
	allMonths := flag.Bool("all-months", false, "Process each complete calendar month going back MONTHS months")
	last7 := flag.Bool("last-7-days", false, "Set the date range to the last 7 days")
	last28 := flag.Bool("last-28-days", false, "Set the date range to the last 28 days")
	lastQuarter := flag.Bool("last-quarter", false, "Set the date range to the last complete civil quarter")
	startDate := flag.String("start-date", "", "Start date in YYYY-MM-DD format (requires -end-date)")
	endDate := flag.String("end-date", "", "End date in YYYY-MM-DD format (requires -start-date)")
	positions := flag.Bool("positions", false, "Also aggregate the query position distribution per window")
	workers := flag.Int("workers", 0, "Concurrent properties (0 = MAX_CONCURRENCY from the environment)")
	flag.Parse()

	// ================== Bootstrap ====================
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Search Console Monthly Aggregation Pipeline")

	ctx := context.Background()

	// ================== Search Console client ====================
	creds := gsc.NewFileCredentials(cfg.ClientSecretFile, cfg.TokenFile, logger)
	client, err := gsc.NewClient(ctx, creds, cfg.RateLimitDelay, logger)
	if err != nil {
		logger.Error("Cannot create Search Console client: %v", err)
		os.Exit(1)
	}
	fetcher := gsc.NewFetcher(client, cfg.MaxRetries, logger)

	// ================== Properties ====================
	siteArg := flag.Arg(0)
	var rawSites []string
	if siteArg != "" {
		rawSites = []string{siteArg}
	} else {
		rawSites, err = client.ListSites(ctx)
		if err != nil {
			logger.Error("Cannot list account properties: %v", err)
			os.Exit(1)
		}
		if len(rawSites) == 0 {
			logger.Warn("No properties found in your account")
			os.Exit(0)
		}
	}

	props, parseErrs := services.ParseProperties(rawSites, services.SuffixHeuristicResolver{})
	for _, perr := range parseErrs {
		logger.Warn("Skipping property: %v", perr)
	}
	if len(props) == 0 {
		logger.Error("No usable properties to process")
		os.Exit(1)
	}

	// ================== Date windows ====================
	// For a single site the reference date is its latest day with
	// data; probing every property of an account would be wasteful,
	// so account-wide runs reference today.
	ref := time.Now()
	if siteArg != "" {
		ref = client.LatestAvailableDate(ctx, props[0].Raw)
	}

	windows, err := buildWindows(ref, cfg.Months, *allMonths, *last7, *last28, *lastQuarter, *startDate, *endDate)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	// ================== Pipeline ====================
	cache, err := storage.NewDiskCache(cfg.CacheDir, logger)
	if err != nil {
		logger.Error("Cannot initialise cache: %v", err)
		os.Exit(1)
	}

	workerCount := cfg.MaxConcurrency
	if *workers > 0 {
		workerCount = *workers
	}

	pipeline := services.NewPipeline(fetcher, cache, services.PipelineOptions{
		UseCache:            *useCache,
		Workers:             workerCount,
		RowLimit:            cfg.RowLimit,
		IncludeUniqueCounts: true,
		IncludePositions:    *positions,
	}, logger)

	records := pipeline.Run(ctx, props, windows)
	if len(records) == 0 {
		logger.Warn("No performance data found for any property in the requested range")
		os.Exit(0)
	}

	// ================== Reports ====================
	csvWriter := storage.NewCSVWriter(logger)
	reporter := services.NewReporter()

	for _, w := range windows {
		var windowRecords []models.MonthlyRecord
		for _, rec := range records {
			if rec.Month == w.Label {
				windowRecords = append(windowRecords, rec)
			}
		}
		if len(windowRecords) == 0 {
			continue
		}

		dir, prefix, title := outputNames(cfg.OutputDir, props, siteArg, w)

		if err := csvWriter.WriteRecords(filepath.Join(dir, prefix+".csv"), windowRecords); err != nil {
			logger.Error("Failed to write CSV: %v", err)
			continue
		}

		html, err := reporter.RenderHTML(title, w, props, windowRecords)
		if err != nil {
			logger.Error("Failed to render HTML report: %v", err)
			continue
		}
		htmlPath := filepath.Join(dir, prefix+".html")
		if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
			logger.Error("Failed to write HTML report: %v", err)
			continue
		}
		logger.Info("Report written to: %s", htmlPath)
	}

	// ================== Optional PostgreSQL sink ====================
	if cfg.DatabaseURL != "" {
		pgWriter, err := storage.NewPostgresWriter(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Cannot connect to PostgreSQL: %v", err)
			os.Exit(1)
		}
		if err := pgWriter.CreateTable(); err != nil {
			logger.Error("Failed to create DB table: %v", err)
			os.Exit(1)
		}

		var sink storage.RecordStore = pgWriter
		defer sink.Close()
		if err := sink.SaveRecords(records); err != nil {
			logger.Error("Failed to store records in PostgreSQL: %v", err)
			os.Exit(1)
		}
	}

	reporter.PrintSummary(records)
}

// buildWindows turns the date-range flags into the window list. The
// default is the last complete calendar month.
func buildWindows(ref time.Time, months int, allMonths, last7, last28, lastQuarter bool, startDate, endDate string) ([]models.DateWindow, error) {
	switch {
	case allMonths:
		return services.MonthlyWindows(ref, months), nil
	case startDate != "" || endDate != "":
		if startDate == "" || endDate == "" {
			return nil, fmt.Errorf("-start-date and -end-date must be used together")
		}
		w, err := services.CustomWindow(startDate, endDate)
		if err != nil {
			return nil, err
		}
		return []models.DateWindow{w}, nil
	case last7:
		return []models.DateWindow{services.LastNDays(ref, 7)}, nil
	case last28:
		return []models.DateWindow{services.LastNDays(ref, 28)}, nil
	case lastQuarter:
		return []models.DateWindow{services.LastQuarter(ref)}, nil
	default:
		return []models.DateWindow{services.LastMonth(ref)}, nil
	}
}

// outputNames derives the report directory, file prefix and title.
func outputNames(outputDir string, props []models.Property, siteArg string, w models.DateWindow) (dir, prefix, title string) {
	if siteArg != "" {
		p := props[0]
		dir = filepath.Join(outputDir, p.DirName())
		prefix = fmt.Sprintf("monthly-summary-report-%s-%s", p.FileSlug(), w.FileSlug())
		title = fmt.Sprintf("Google Organic Monthly Summary for %s", p.Raw)
		return dir, prefix, title
	}
	dir = filepath.Join(outputDir, "account")
	prefix = fmt.Sprintf("monthly-summary-report-account-wide-%s", w.FileSlug())
	title = "Google Organic Monthly Summary Report"
	return dir, prefix, title
}
