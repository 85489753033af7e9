package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhukovvlad/tedawards-go/cmd/internal/config"
	db "github.com/zhukovvlad/tedawards-go/cmd/internal/db/sqlc"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/portal/ted"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/server"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/services/analytics"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/services/archive"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/services/loader"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/services/rates"
	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"

	_ "github.com/lib/pq"
)

const dbDriver = "postgres"

const usage = `Usage: tedawards <command> [flags]

Commands:
  download      download TED daily packages for a range of years
  import        import downloaded packages into the database
  update-rates  fetch ECB exchange rates and Eurostat HICP
  refresh-view  ensure and refresh the awards_adjusted view
  serve         run the read-only analytics API
`

func main() {
	logger := logging.GetLogger()

	if err := godotenv.Load(); err != nil {
		logger.Debugf("no .env file loaded: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg := config.GetConfig()

	conn, err := sql.Open(dbDriver, cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("error connecting to database: %v", err)
	}
	defer conn.Close()

	if err = conn.Ping(); err != nil {
		logger.Fatalf("error pinging database: %v", err)
	}
	logger.Info("Database connection established")

	store := db.NewStore(conn)
	loaderSvc := loader.NewService(store, logger)
	importer := archive.NewService(store, loaderSvc, logger, cfg.Portal.Workers)
	portal := ted.New(cfg.Portal.DataDir, cfg.Portal.MaxIssue, cfg.Portal.DownloadRPS, importer, logger)

	ctx := context.Background()

	switch command {
	case "download":
		startYear, endYear := parseYearRange(args)
		for year := startYear; year <= endYear; year++ {
			if err := portal.DownloadYear(ctx, year); err != nil {
				logger.Fatalf("download year %d: %v", year, err)
			}
		}
	case "import":
		startYear, endYear := parseYearRange(args)
		for year := startYear; year <= endYear; year++ {
			if err := portal.ImportYear(ctx, year); err != nil {
				logger.Fatalf("import year %d: %v", year, err)
			}
		}
	case "update-rates":
		startYear, endYear := parseYearRange(args)
		ratesSvc := rates.NewService(store, logger)
		if err := ratesSvc.Update(ctx, startYear, endYear); err != nil {
			logger.Fatalf("update rates: %v", err)
		}
	case "refresh-view":
		analyticsSvc := analytics.NewService(conn, logger)
		if err := analyticsSvc.Refresh(ctx); err != nil {
			logger.Fatalf("refresh view: %v", err)
		}
	case "serve":
		srv := server.NewServer(store, logger, cfg)
		if err := srv.Run(); err != nil {
			logger.Fatalf("error starting server: %v", err)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// parseYearRange читает флаги -start-year/-end-year.
// По умолчанию оба равны текущему году.
func parseYearRange(args []string) (int, int) {
	currentYear := time.Now().Year()

	fs := flag.NewFlagSet("years", flag.ExitOnError)
	startYear := fs.Int("start-year", currentYear, "first year to process")
	endYear := fs.Int("end-year", currentYear, "last year to process")
	_ = fs.Parse(args)

	if *endYear < *startYear {
		logging.GetLogger().Fatalf("end-year %d is before start-year %d", *endYear, *startYear)
	}
	return *startYear, *endYear
}
