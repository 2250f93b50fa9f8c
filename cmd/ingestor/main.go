package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/samirrijal/transitcat/internal/adapters/document"
	"github.com/samirrijal/transitcat/internal/adapters/postgres"
	"github.com/samirrijal/transitcat/internal/bootstrap"
	"github.com/samirrijal/transitcat/internal/core/snapshot"
	"github.com/samirrijal/transitcat/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: ingestor <document.json|document.yaml|http(s)://...>")
	}
	_ = godotenv.Load()

	cfg, err := config.Load("transitcat-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	location := os.Args[1]

	data, err := fetch(ctx, location)
	if err != nil {
		log.Fatalf("read %s: %v", location, err)
	}

	req, err := document.Decode(bytes.NewReader(data), document.FormatFromPath(location))
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	doc, err := req.Network()
	if err != nil {
		log.Fatalf("network: %v", err)
	}

	// Reject anything the servers would refuse to load.
	opts, err := bootstrap.Options(cfg)
	if err != nil {
		log.Fatalf("options: %v", err)
	}
	snap, err := snapshot.Build(ctx, doc, opts)
	if err != nil {
		log.Fatalf("validate: %v", err)
	}
	summary := snap.Summary()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	start := time.Now()
	if err := postgres.NewNetworkRepo(db).Save(ctx, doc); err != nil {
		log.Fatalf("save: %v", err)
	}

	log.Printf("imported %d stops and %d routes from %s in %s",
		summary.Stops, summary.Routes, location, time.Since(start).Round(time.Millisecond))
}

// fetch reads a local file or downloads a remote document.
func fetch(ctx context.Context, location string) ([]byte, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return os.ReadFile(location)
	}

	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 64<<20))
}
