// Command catalog-export fetches the full product catalog from the
// remote API and writes it to a CSV file, for offline reporting without
// running the dashboard server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/storefront-kit/catalog-dashboard/internal/export"
	"github.com/storefront-kit/catalog-dashboard/internal/remote"
)

func main() {
	var (
		baseURL  string
		outDir   string
		timeout  time.Duration
		compress bool
	)

	flag.StringVar(&baseURL, "api-base-url", "https://api.escuelajs.co/api/v1", "product catalog API base URL")
	flag.StringVar(&outDir, "out-dir", ".", "directory to write the export file into")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout for catalog API calls")
	flag.BoolVar(&compress, "gzip", false, "gzip-compress the export (adds .gz suffix)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, baseURL, outDir, timeout, compress); err != nil {
		slog.Error("export failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, baseURL, outDir string, timeout time.Duration, compress bool) error {
	client := remote.NewClient(remote.ClientConfig{BaseURL: baseURL, Timeout: timeout})

	slog.Info("fetching catalog", "base_url", baseURL)
	products, err := client.List(ctx)
	if err != nil {
		return err
	}
	slog.Info("catalog fetched", "products", len(products))

	name := export.Filename(export.ScopeCatalog, time.Now())
	if compress {
		name += ".gz"
	}
	path := filepath.Join(outDir, name)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if compress {
		err = export.WriteCSVGzip(f, products)
	} else {
		err = export.WriteCSV(f, products)
	}
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	slog.Info("export written", "path", path, "products", len(products))
	return nil
}
