package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"comicshelf/internal/index"
	"comicshelf/pkg/models"
	"comicshelf/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "comicshelf.toml", "path to an optional TOML config file")
		out        = flag.String("out", "data/comics.csv", "output CSV path, - for stdout")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// read-only: no lock, and a missing snapshot is not initialized
	store, closeStore, err := index.NewStore(cfg)
	if err != nil {
		log.Fatalf("open index failed: %v", err)
	}
	defer closeStore()

	records, _, err := store.Load(ctx)
	if err != nil {
		log.Fatalf("load index failed: %v", err)
	}

	if *out == "-" {
		if err := writeComics(os.Stdout, records); err != nil {
			log.Fatalf("export comics failed: %v", err)
		}
		return
	}

	if err := exportComics(*out, records); err != nil {
		log.Fatalf("export comics failed: %v", err)
	}
	log.Printf("exported %d comics to %s", len(records), *out)
}

func exportComics(outPath string, records []models.ComicRecord) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeComics(f, records); err != nil {
		return err
	}
	return f.Close()
}

func writeComics(w io.Writer, records []models.ComicRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "fileName", "title", "cover", "pageCount", "addedAt", "tags"}); err != nil {
		return err
	}

	for _, rec := range records {
		if err := cw.Write([]string{
			rec.ID,
			rec.FileName,
			rec.Title,
			rec.Cover,
			strconv.Itoa(rec.PageCount),
			rec.AddedAt.UTC().Format(time.RFC3339),
			strings.Join(rec.Tags, ";"),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
