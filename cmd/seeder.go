package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/frahmantamala/ldc-construction/internal/core/seed"
	"github.com/frahmantamala/ldc-construction/pkg/logger"
	"github.com/spf13/cobra"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the reference hierarchy and demo users",
	Long: `Create the US branch, zones 01 to 05, regions 01.12 and 02.05 with one
construction group each, a demo user per role and a few volunteers.
Running it again leaves existing rows alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		lg := logger.LoggerWrapper()

		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			return err
		}

		res, err := seed.Run(context.Background(), gdb, seed.Options{
			Password:   seedPassword,
			BCryptCost: cfg.Security.BCryptCost,
		})
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}

		emails := make([]string, 0, len(res.Users))
		for email := range res.Users {
			emails = append(emails, email)
		}
		sort.Strings(emails)
		for _, email := range emails {
			fmt.Println("seeded user:", email)
		}
		lg.Info("seed complete",
			"branch_id", res.BranchID,
			"zones", len(res.Zones),
			"regions", len(res.Regions),
			"construction_groups", len(res.CGs),
			"users", len(res.Users))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", seed.DefaultPassword, "password assigned to newly created demo users")
}
