package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/matthieukhl/shopfront/internal/auth"
	"github.com/matthieukhl/shopfront/internal/database"
	"github.com/spf13/cobra"
)

var skipUsers bool

var checkCmd = &cobra.Command{
	Use:   "check-db",
	Short: "Show table structures and registered users",
	Long: `Prints the column layout of every application table and the list of
registered users. Useful to verify that setup or migrate ran against the
database you expect.`,
	RunE: checkDatabase,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&skipUsers, "no-users", false, "Do not list registered users")
}

func checkDatabase(cmd *cobra.Command, args []string) error {
	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	for _, table := range database.Tables {
		cols, err := db.DescribeTable(ctx, table)
		if err != nil {
			return err
		}

		fmt.Printf("\n📋 %s\n", table)
		fmt.Println(strings.Repeat("─", 80))
		if len(cols) == 0 {
			fmt.Println("   ⚠️  table does not exist")
			continue
		}
		for _, c := range cols {
			fmt.Printf("   %-20s %-32s null=%-3s key=%-3s %s\n", c.Field, c.Type, c.Null, c.Key, c.Extra)
		}
	}

	if skipUsers {
		return nil
	}

	users, err := auth.NewRepository(db).List(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n👥 %d user(s)\n", len(users))
	fmt.Println(strings.Repeat("─", 80))
	for _, u := range users {
		fmt.Printf("   #%-5d %-20s %s\n", u.ID, u.Username, u.Email)
	}
	return nil
}
