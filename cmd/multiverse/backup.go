package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/multiverse/internal/app"
	"github.com/MrSnakeDoc/multiverse/internal/sources/backup"
	"github.com/MrSnakeDoc/multiverse/internal/utils"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write favorites and comments as a YAML backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			storage, err := app.OpenStorage(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer utils.CloseLogged(storage, "storage", log)

			favs, cs, err := app.OpenStores(ctx, cfg, storage, log)
			if err != nil {
				return err
			}
			doc := backup.Capture(ctx, favs, cs, time.Now())

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer utils.CloseLogged(f, output, log)
				out = f
			}
			return backup.Write(out, doc)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Destination file, - for stdout")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace favorites and comments with a YAML backup (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			doc, err := backup.NewLoader(args[0]).Load()
			if err != nil {
				return err
			}
			snap, err := backup.NewMapper().Map(doc)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			storage, err := app.OpenStorage(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer utils.CloseLogged(storage, "storage", log)

			favs, cs, err := app.OpenStores(ctx, cfg, storage, log)
			if err != nil {
				return err
			}
			stats, err := backup.Restore(ctx, snap, favs, cs)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d favorites and %d comments\n", stats.Favorites, stats.Comments)
			return err
		},
	}
}
