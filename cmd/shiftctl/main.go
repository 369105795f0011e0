package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-board-api/internal/app"
	"github.com/arnavshah/shift-board-api/internal/config"
	"github.com/arnavshah/shift-board-api/internal/logging"
	"github.com/arnavshah/shift-board-api/pkg/auth"
	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/seed"
)

var (
	cfg    *config.Config
	logger *zap.Logger
	ctx    = context.Background()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftctl",
		Short: "Shift board operator CLI",
		Long:  `Operator tooling for the shift board: integration keys, seed data and recruitment checks.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err = logging.New(cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(keygenCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(recruitmentsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen <name>",
		Short: "Generate an HMAC integration key for the sync endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := auth.New(cfg.JWTSecret, cfg.APIMasterSecret).GenerateHMACKey(args[0])
			fmt.Printf("Generated Key for %s:\n%s\n", args[0], key)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load locations, duty codes, requirements and staff from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.LoadFromPath(args[0])
			if err != nil {
				return err
			}

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}

			sum, err := seed.Apply(ctx, a.Store, f, logger)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Seed applied\n\n")
			fmt.Printf("Locations:    %d\n", sum.Locations)
			fmt.Printf("Duty codes:   %d\n", sum.DutyCodes)
			fmt.Printf("Requirements: %d\n", sum.Requirements)
			fmt.Printf("Staff:        %d\n\n", sum.Staff)
			return nil
		},
	}
}

func recruitmentsCmd() *cobra.Command {
	var staffID string
	cmd := &cobra.Command{
		Use:   "recruitments",
		Short: "List open recruitments for the configured window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}

			list, err := a.Service.Recruitments(ctx, models.Identity{StaffID: staffID})
			if err != nil {
				return err
			}

			if len(list) == 0 {
				fmt.Println("No open recruitments")
				return nil
			}
			for _, r := range list {
				fmt.Printf("%s  %-10s %-12s %s %s-%s  short %d (%d/%d)\n",
					r.Date, r.Urgency, r.LocationName, r.DutyCode, r.StartTime, r.EndTime,
					r.Shortage, r.Assigned, r.Required)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&staffID, "staff", "", "Staff id used to mark entered recruitments")
	return cmd
}
