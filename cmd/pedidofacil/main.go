package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/internal/config"
	"github.com/pedidofacil/pedidofacil/internal/logger"
	"github.com/pedidofacil/pedidofacil/internal/migration"
	"github.com/pedidofacil/pedidofacil/internal/seed"
	"github.com/pedidofacil/pedidofacil/internal/server"
	"github.com/pedidofacil/pedidofacil/internal/transfer"
	"github.com/pedidofacil/pedidofacil/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	root := &cobra.Command{
		Use:          "pedidofacil",
		Short:        "Order and invoice management backend",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd(), seedCmd(), exportCmd(), importCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				config.Module,
				logger.Module,
				fx.Provide(registerSnowflake),
				db.Module,
				migration.Module,
				server.Module,
			)
			app.Run()
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, orders and invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, settings, log, err := openStandalone()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if err := seed.EnsureDemoData(conn, settings); err != nil {
				return err
			}
			log.Info("demo data loaded")
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export users, orders and invoices as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, log, err := openStandalone()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := transfer.Export(context.Background(), conn, w); err != nil {
				return err
			}
			if output != "" {
				log.Info("snapshot written", zap.String("path", output))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snapshot to a file instead of stdout")
	return cmd
}

func importCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON snapshot of users, orders and invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("an input file is required")
			}

			conn, _, log, err := openStandalone()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := transfer.Import(context.Background(), conn, f); err != nil {
				return err
			}
			log.Info("snapshot imported", zap.String("path", input))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "snapshot file to import")
	return cmd
}

// openStandalone wires config, logging and the database for one-shot
// commands that do not need the fx application lifecycle.
func openStandalone() (*gorm.DB, config.Settings, *zap.Logger, error) {
	cfg := config.Load()
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, config.Settings{}, nil, err
	}
	log, err := logger.NewFromConfig(cfg)
	if err != nil {
		return nil, config.Settings{}, nil, err
	}
	conn, err := db.Open(cfg, log)
	if err != nil {
		return nil, config.Settings{}, nil, err
	}
	return conn, settings, log, nil
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
