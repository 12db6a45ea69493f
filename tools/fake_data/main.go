package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/config"
	"github.com/patrickwarner/adinsights/internal/db"
	"github.com/patrickwarner/adinsights/internal/observability"
)

var (
	outPath    = flag.String("out", "data/ads_performance.csv", "CSV file to write (empty to skip)")
	days       = flag.Int("days", 90, "number of days to generate")
	endDate    = flag.String("end", time.Now().UTC().Format(time.DateOnly), "last generated day (YYYY-MM-DD)")
	fill       = flag.Float64("fill", 0.7, "share of keyword/day combinations with delivery")
	withATC    = flag.Bool("atc", true, "include the add_to_cart column")
	seed       = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	toPostgres = flag.Bool("postgres", false, "also copy the rows into POSTGRES_DSN")
	skipReload = flag.Bool("skip-reload", false, "skip automatic reload after data insertion")
)

func main() {
	flag.Parse()

	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	end, err := time.Parse(time.DateOnly, *endDate)
	if err != nil {
		logger.Fatal("invalid -end", zap.String("end", *endDate), zap.Error(err))
	}
	if *days <= 0 {
		logger.Fatal("-days must be positive", zap.Int("days", *days))
	}

	r := rand.New(rand.NewSource(*seed))
	ds := generate(r, genOptions{
		start:   end.AddDate(0, 0, 1-*days),
		days:    *days,
		fill:    *fill,
		withATC: *withATC,
	})
	logger.Info("generated performance rows",
		zap.Int("rows", ds.Len()),
		zap.Int64("seed", *seed),
		zap.Bool("add_to_cart", ds.HasAddToCart))

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Fatal("create csv", zap.Error(err))
		}
		if err := writeCSV(f, ds); err != nil {
			_ = f.Close()
			logger.Fatal("write csv", zap.Error(err))
		}
		if err := f.Close(); err != nil {
			logger.Fatal("close csv", zap.Error(err))
		}
		fmt.Printf("wrote %d rows to %s\n", ds.Len(), *outPath)
	}

	if *toPostgres {
		pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.CopyPerformance(context.Background(), ds); err != nil {
			logger.Fatal("copy rows", zap.Error(err))
		}
		fmt.Println("fake data inserted")
	}

	if !*skipReload {
		if err := callReloadEndpoint(&cfg); err != nil {
			logger.Error("reload endpoint failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Warning: failed to reload server data: %v\n", err)
		} else {
			fmt.Println("server data reloaded")
		}
	}
}

func callReloadEndpoint(cfg *config.Config) error {
	reloadURL := fmt.Sprintf("http://localhost:%s/reload", cfg.Port)
	req, err := http.NewRequest("POST", reloadURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
