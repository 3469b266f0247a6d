package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quotedesk/cache"
	"quotedesk/collections"
	"quotedesk/config"
	"quotedesk/handlers"
	"quotedesk/logging"
	"quotedesk/services"
)

func main() {
	cfg, err := config.Load(os.Getenv("QUOTEDESK_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	exchangeRate, taxRate, markup, err := cfg.Pricing.Rates()
	if err != nil {
		logger.Fatal("invalid pricing config", zap.Error(err))
	}

	app := pocketbase.New()
	app.RootCmd.AddCommand(importCatalogCmd(app, logger))

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := collections.Setup(app, logger); err != nil {
			return fmt.Errorf("setup collections: %w", err)
		}
		if err := collections.Seed(app, logger); err != nil {
			logger.Warn("seed data failed", zap.Error(err))
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		catalog := services.NewCatalogRepository(app, cfg.Catalog.DefaultPageSize, cfg.Catalog.MaxPageSize)
		deps := &handlers.Deps{
			Catalog:       catalog,
			Searcher:      catalog,
			Drafts:        services.NewDraftBook(),
			Store:         services.NewQuotationStore(app, logger),
			Defaults:      services.PriceParams{ExchangeRate: exchangeRate, TaxRate: taxRate},
			DefaultMarkup: markup,
			Logger:        logger,
		}

		if cfg.Redis.Addr != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			client, err := cache.NewRedisClient(ctx, cfg.Redis)
			cancel()
			if err != nil {
				logger.Warn("catalog cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			} else {
				searchCache := cache.NewSearchCache(client, catalog, cfg.Redis.TTL, logger)
				deps.Searcher = searchCache
				deps.Invalidator = searchCache
				app.OnTerminate().BindFunc(func(te *core.TerminateEvent) error {
					_ = client.Close()
					return te.Next()
				})
				logger.Info("catalog cache enabled", zap.String("addr", cfg.Redis.Addr))
			}
		}

		handlers.Register(se, deps)
		return se.Next()
	})

	if err := app.Start(); err != nil {
		logger.Fatal("pocketbase exited", zap.Error(err))
	}
}

// importCatalogCmd loads a price-list workbook into the catalog.
func importCatalogCmd(app *pocketbase.PocketBase, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "import-catalog <file.xlsx>",
		Short: "Import a price-list workbook into the product catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := collections.Setup(app, logger); err != nil {
				return fmt.Errorf("setup collections: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			parsed, err := services.ParseCatalogWorkbook(f)
			if err != nil {
				return err
			}
			for _, rowErr := range parsed.Errors {
				cmd.PrintErrf("row %d %s: %s\n", rowErr.Row, rowErr.Field, rowErr.Message)
			}

			result, err := services.ImportCatalog(cmd.Context(), app, logger, parsed.Entries)
			if err != nil {
				return err
			}
			for _, rowErr := range result.Errors {
				cmd.PrintErrf("row %d %s: %s\n", rowErr.Row, rowErr.Field, rowErr.Message)
			}
			cmd.Printf("imported %d of %d rows, %d skipped while parsing\n",
				result.Imported, parsed.TotalRows, len(parsed.Errors))
			return nil
		},
	}
}
