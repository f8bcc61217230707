package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shopfront",
	Short: "Shopfront - a small e-commerce backend",
	Long: `Shopfront serves the product catalog, session carts, user accounts and
orders of a small web shop as JSON endpoints.

Run it as a server with "shopfront run", or use the maintenance commands to
create the schema, migrate older databases and inspect the tables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
