package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active backend, session and project counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Sanctuary Status")
			fmt.Fprintln(out, strings.Repeat("=", 40))

			fmt.Fprintf(out, "  Backend:    %s\n", app.Projects.Backend())
			if s, ok := app.Gate.Current(); ok {
				fmt.Fprintf(out, "  Signed in:  %s %s\n", s.OwnerID, s.Email)
			} else {
				fmt.Fprintln(out, "  Signed in:  no")
			}
			migrated, err := app.Migration.Migrated(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  Migrated:   %t\n", migrated)
			if app.Gate.MigrationOffered() {
				fmt.Fprintln(out, "  Migration:  offered (run `sanctuaryctl migrate`)")
			}

			counts := map[domain.Status]int{}
			items := app.Projects.List()
			for _, p := range items {
				counts[p.Status]++
			}
			fmt.Fprintln(out, "\nProjects:")
			for _, st := range []domain.Status{domain.StatusActive, domain.StatusPaused, domain.StatusCompleted, domain.StatusArchived} {
				fmt.Fprintf(out, "  %-12s %d\n", string(st)+":", counts[st])
			}
			fmt.Fprintf(out, "  %-12s %d\n", "TOTAL:", len(items))
			return nil
		},
	}
}
