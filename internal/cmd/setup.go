package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dropFirst bool
	skipData  bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the database schema and sample catalog",
	Long: `Creates the users, products, orders and order_items tables and
populates the catalog with a handful of sample products.

Sample products use fixed ids, so running setup again does not duplicate them.`,
	RunE: setupDatabase,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop existing tables before creating")
	setupCmd.Flags().BoolVar(&skipData, "schema-only", false, "Create schema only, skip sample products")
}

func setupDatabase(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 Setting up database...")

	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	if dropFirst {
		fmt.Println("🗑️  Dropping existing tables...")
		if err := db.DropSchema(ctx); err != nil {
			return err
		}
	}

	fmt.Println("📋 Creating schema...")
	if err := db.SetupSchema(ctx); err != nil {
		return err
	}

	if !skipData {
		fmt.Println("📦 Creating sample products...")
		n, err := db.SeedProducts(ctx)
		if err != nil {
			return fmt.Errorf("failed to populate sample data: %w", err)
		}
		fmt.Printf("   %d product(s) inserted\n", n)
	}

	fmt.Println("✅ Database setup complete!")
	return nil
}
