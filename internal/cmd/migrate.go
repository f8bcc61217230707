package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade a database created by an older version",
	Long: `Adds the columns newer versions rely on to databases created before
they existed: products.tags and users.registration_key. Safe to run
repeatedly.`,
	RunE: migrateDatabase,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrateDatabase(cmd *cobra.Command, args []string) error {
	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	upgrades := []struct {
		column string
		ensure func(context.Context) (bool, error)
	}{
		{"products.tags", db.EnsureTagsColumn},
		{"users.registration_key", db.EnsureRegistrationKeyColumn},
	}

	for _, u := range upgrades {
		added, err := u.ensure(ctx)
		if err != nil {
			return err
		}
		if added {
			fmt.Printf("✅ Added %s\n", u.column)
		} else {
			fmt.Printf("👍 %s already exists, nothing to do\n", u.column)
		}
	}
	return nil
}
