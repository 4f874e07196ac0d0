package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "foodcache",
	Short:   "Manage the persisted food cache",
	Version: version,
	Long: `Manage the persisted food cache.

Examples:
  foodcache import --source ./en.openfoodfacts.org.products.csv
  foodcache extract --source ./en.openfoodfacts.org.products.csv --top 5000
  foodcache seed`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(seedCmd)
}
