package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/bakecake/internal/adapters/catalogfile"
	"github.com/aretw0/bakecake/internal/adapters/postgres"
	"github.com/aretw0/bakecake/internal/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database catalog from the YAML menu",
	Long: `Reads the catalog file (BAKECAKE_CATALOG) and upserts its categories and
options into the configured Postgres database. Safe to re-run after menu
edits.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		if cfg.DatabaseDSN == "" {
			fmt.Println("BAKECAKE_DATABASE_DSN is required for seeding")
			os.Exit(1)
		}

		catalog, err := catalogfile.Load(cfg.CatalogPath)
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}
		categories, err := catalog.Categories(cmd.Context())
		if err != nil {
			fmt.Printf("Error reading catalog: %v\n", err)
			os.Exit(1)
		}

		db, err := postgres.Open(cfg.DatabaseDSN)
		if err != nil {
			fmt.Printf("Error connecting to database: %v\n", err)
			os.Exit(1)
		}
		if err := postgres.SeedCatalog(cmd.Context(), db, categories); err != nil {
			fmt.Printf("Error seeding catalog: %v\n", err)
			os.Exit(1)
		}

		options := 0
		for _, cat := range categories {
			options += len(cat.Options)
		}
		fmt.Printf("Seeded %d categories and %d options\n", len(categories), options)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
