package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/burpeebet/foodsearch/config"
	"github.com/burpeebet/foodsearch/internal/infrastructure/offapi"
	"github.com/burpeebet/foodsearch/internal/infrastructure/sqlstore"
	"github.com/burpeebet/foodsearch/internal/ingest"
)

// --- import ---

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Ingest the full Open Food Facts TSV dump into the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		source, _ := cmd.Flags().GetString("source")
		if source == "" {
			source = cfg.Ingest.SourcePath
		}

		store, err := sqlstore.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening food store: %w", err)
		}
		defer store.Close()

		engine := ingest.NewEngine(store, ingest.Config{
			BatchSize:  cfg.Ingest.BatchSize,
			MinQuality: cfg.Ingest.MinQuality,
		})

		summary, err := engine.Run(cmd.Context(), source)
		if err != nil {
			return err
		}

		fmt.Printf("Processed %d rows, kept %d, inserted %d (%d skipped, %d batch errors) in %s\n",
			summary.Processed, summary.Kept, summary.Inserted,
			summary.Skipped, summary.BatchErrors, summary.Duration)
		return nil
	},
}

// --- extract ---

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Ingest only the top-scoring foods from the TSV dump",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		source, _ := cmd.Flags().GetString("source")
		if source == "" {
			source = cfg.Ingest.SourcePath
		}
		top, _ := cmd.Flags().GetInt("top")
		if top <= 0 {
			return fmt.Errorf("--top must be positive, got %d", top)
		}

		store, err := sqlstore.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening food store: %w", err)
		}
		defer store.Close()

		engine := ingest.NewEngine(store, ingest.Config{
			BatchSize:  cfg.Ingest.BatchSize,
			MinQuality: cfg.Ingest.MinQuality,
			TopN:       top,
		})

		summary, err := engine.Run(cmd.Context(), source)
		if err != nil {
			return err
		}

		fmt.Printf("Processed %d rows, kept top %d, inserted %d (%d skipped, %d batch errors) in %s\n",
			summary.Processed, summary.Kept, summary.Inserted,
			summary.Skipped, summary.BatchErrors, summary.Duration)
		return nil
	},
}

// --- seed ---

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the cache from the live Open Food Facts API",
	Long: `Seed the cache from the live Open Food Facts API.

Pulls common whole foods, globally popular products, and per-category
selections. Requests are rate limited, so a full run takes several
minutes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := sqlstore.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening food store: %w", err)
		}
		defer store.Close()

		provider := offapi.NewClient(cfg.OFF.BaseURL, cfg.OFF.SearchURL, cfg.OFF.UserAgent, cfg.OFF.Timeout)
		seeder := ingest.NewSeeder(store, provider, cfg.Ingest.SeedDelay)

		summary, err := seeder.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Seeded %d foods (%d empty queries, %d errors) in %s\n",
			summary.Added, summary.Skipped, summary.Errors, summary.Duration)
		return nil
	},
}

func init() {
	importCmd.Flags().String("source", "", "path to the TSV dump (defaults to config)")
	extractCmd.Flags().String("source", "", "path to the TSV dump (defaults to config)")
	extractCmd.Flags().Int("top", 5000, "number of top-scoring foods to keep")
}
