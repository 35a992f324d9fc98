package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/projectsanctuary/sanctuary/config"
	"github.com/projectsanctuary/sanctuary/internal/bootstrap"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "sanctuaryctl",
		Short:         "Manage the Sanctuary data on this device",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(signInCmd())
	rootCmd.AddCommand(signOutCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openApp wires the device the same way the daemon does and restores the
// persisted session. The caller closes the app.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := app.Restore(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}
