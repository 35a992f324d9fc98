package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/projectsanctuary/sanctuary/internal/transfer"
)

func exportCmd() *cobra.Command {
	var (
		format          string
		outDir          string
		includeArchived bool
		includeNotes    bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of the active collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := transfer.ParseFormat(format)
			if err != nil {
				return err
			}
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			opts := transfer.Options{
				Format:          f,
				IncludeArchived: includeArchived,
				IncludeNotes:    includeNotes,
				Now:             time.Now().UTC(),
			}
			if role, err := app.Profiles.Role(ctx); err == nil {
				opts.UserRole = role
			}
			payload, err := transfer.Export(app.Projects.List(), opts)
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, payload.Filename)
			if err := os.WriteFile(path, payload.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d projects to %s\n", len(app.Projects.List()), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Format (json, csv, markdown, xlsx)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().BoolVar(&includeArchived, "include-archived", true, "Include archived projects")
	cmd.Flags().BoolVar(&includeNotes, "include-notes", true, "Include notes")

	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Append the projects of a JSON backup to the active collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			items, err := transfer.Import(data, time.Now().UTC())
			if err != nil {
				return err
			}

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Projects.Import(ctx, items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d projects (%d failed) into %s\n", res.Imported, res.Failed, app.Projects.Backend())
			return nil
		},
	}
}
