package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/pokedex/internal/bootstrap"
	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/service"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		Output:      os.Stderr,
		ServiceName: "pokedex-crawl",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	maxPages := flag.Int("pages", 0, "Maximum number of pages to fetch (0 = until exhausted)")
	query := flag.String("query", "", "Search query applied to the printed items")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	catalog, err := bootstrap.BuildCatalog(cfg.Catalog)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize catalog")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	cache := service.NewListCache(catalog, cfg.Catalog.PageSize, appLogger)
	pages, err := crawl(ctx, cache, *maxPages)
	if err != nil && !errors.Is(err, context.Canceled) {
		appLogger.WithError(err).WithField(logger.FieldPageIndex, cache.Cursor().PageIndex).
			Error("Crawl stopped on error, printing items fetched so far")
	}

	cache.SetSearchQuery(*query)
	enc := json.NewEncoder(os.Stdout)
	items := cache.FilteredItems()
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			appLogger.WithError(err).Fatal("Failed to write item")
		}
	}

	appLogger.WithFields(logger.Fields{
		"pages":    pages,
		"total":    len(cache.Items()),
		"matched":  len(items),
		"has_more": cache.Cursor().HasMore,
	}).Info("Crawl completed")
}

// crawl loads pages until the listing is exhausted, maxPages is reached or
// ctx is canceled. It returns the number of pages loaded.
func crawl(ctx context.Context, cache *service.ListCache, maxPages int) (int, error) {
	pages := 0
	for cache.Cursor().HasMore && (maxPages <= 0 || pages < maxPages) {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		before := cache.Cursor().PageIndex
		if err := cache.LoadNextPage(ctx); err != nil {
			return pages, err
		}
		if cache.Cursor().PageIndex > before {
			pages++
		}
	}
	return pages, nil
}
