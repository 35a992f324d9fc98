package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func signInCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "sign-in [id-token]",
		Short: "Sign this device in with a Firebase ID token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				token = args[0]
			}
			if token == "" {
				token = os.Getenv("SANCTUARY_ID_TOKEN")
			}
			if token == "" {
				return errors.New("an ID token is required (--token or SANCTUARY_ID_TOKEN)")
			}
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			s, err := app.Gate.SignIn(ctx, token)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in as %s (backend %s)\n", s.OwnerID, app.Projects.Backend())
			if app.Gate.MigrationOffered() {
				fmt.Fprintln(out, "Local projects found. Run `sanctuaryctl migrate` to move them to your account.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "Firebase ID token")
	return cmd
}

func signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-out",
		Short: "Forget the session on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Gate.SignOut(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var skip bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move local data to the signed-in account, or decline with --skip",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			if skip {
				if err := app.Gate.SkipMigration(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "Migration skipped. Local data stays on this device.")
				return nil
			}

			res, err := app.Gate.AcceptMigration(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Migrated %d projects, %d mood entries, streak: %t\n", res.Projects, res.Moods, res.Streak)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skip, "skip", false, "Decline the migration")
	return cmd
}
