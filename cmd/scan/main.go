package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"comicshelf/internal/covers"
	"comicshelf/internal/index"
	"comicshelf/internal/scanner"
	"comicshelf/pkg/utils"
)

func main() {
	configPath := flag.String("config", "comicshelf.toml", "path to an optional TOML config file")
	timeout := flag.Duration("timeout", 10*time.Minute, "abort the scan after this long")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := scan(ctx, cfg, logger)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Printf("added %d, skipped %d\n", len(res.Added), res.Skipped)
	for _, rec := range res.Added {
		fmt.Printf("  + %s (%d pages) %s\n", rec.Title, rec.PageCount, rec.ID)
	}
}

// scan runs one reconciliation pass. It refuses to run while a server holds
// the index, since both would write the same snapshot.
func scan(ctx context.Context, cfg utils.Config, logger *slog.Logger) (scanner.Result, error) {
	lock, err := index.Lock(cfg.IndexPath)
	if err != nil {
		return scanner.Result{}, err
	}
	defer lock.Unlock()

	store, closeStore, err := index.NewStore(cfg)
	if err != nil {
		return scanner.Result{}, err
	}
	defer closeStore()

	ix := index.New(store, logger)
	if err := ix.Load(ctx); err != nil {
		return scanner.Result{}, err
	}

	sc := scanner.New(cfg.ComicsDir, ix, covers.NewExtractor(cfg.CoversDir, cfg.CoverURLPrefix, cfg.CoverWidth), logger)
	return sc.Reconcile(ctx)
}
