package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"itscare/internal/config"
	"itscare/internal/database"
	"itscare/internal/export"
	"itscare/internal/listing"
	"itscare/internal/logging"
	"itscare/internal/service"
)

// itscare-export writes the booking ledger to CSV or an Excel
// settlement workbook without going through the HTTP API.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "config file path")
	month := flag.String("month", time.Now().Format("2006-01"), "target month (YYYY-MM)")
	format := flag.String("format", "csv", "output format: csv, summary or xlsx")
	by := flag.String("by", "contractor", "summary grouping: contractor or engineer")
	out := flag.String("out", "", "output file; empty writes csv formats to stdout")
	flag.Parse()

	if !config.ValidMonth(*month) {
		return fmt.Errorf("invalid month %q; expected YYYY-MM", *month)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	bookings := service.NewBookingService(db, nil, nil, nil, cfg.Commission.Policy(), logger)
	ctx := context.Background()

	switch *format {
	case "csv":
		return writeTo(*out, func(w io.Writer) error {
			return bookings.ExportCSV(ctx, w)
		})
	case "summary":
		grouping := service.GroupByContractor
		if *by == string(service.GroupByEngineer) {
			grouping = service.GroupByEngineer
		}
		return writeTo(*out, func(w io.Writer) error {
			return bookings.ExportGroupSummaryCSV(ctx, w, *month, grouping)
		})
	case "xlsx":
		all, err := bookings.ListBookings(ctx, listing.Criteria{})
		if err != nil {
			return err
		}
		monthly, err := bookings.MonthlySummary(ctx, *month)
		if err != nil {
			return err
		}
		path, err := export.SaveMonthly(cfg.Exports.Path, all, *monthly, cfg.Commission.Policy())
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func writeTo(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
