package cli

import (
	"time"

	"github.com/jrsteele09/go-task-client/auth"
	"github.com/jrsteele09/go-task-client/token"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	current, err := auth.Restore(app.store, log)
	if err != nil {
		return err
	}
	if !current.Established() {
		app.printer.Info("not signed in")
		return nil
	}

	app.printer.Print("%s (%s)", app.printer.Bold(current.DisplayName), current.SubjectID)
	app.printer.Print("role: %s", current.Role)

	destination, err := app.table.DefaultDestination(current.Role)
	if err == nil {
		app.printer.Print("workspace: %s", destination)
	}

	// Claims are read for display only; the server is the one verifying them.
	claims, err := token.Inspect(current.AccessToken)
	if err != nil {
		app.printer.Print("access credential: opaque")
		return nil
	}
	if !claims.ExpiresAt.IsZero() {
		if token.Expired(current.AccessToken, time.Now()) {
			app.printer.Print("access credential: expired %s %s", claims.ExpiresAt.Format(time.RFC3339),
				app.printer.Dim("(renewed on next request)"))
		} else {
			app.printer.Print("access credential: valid until %s", claims.ExpiresAt.Format(time.RFC3339))
		}
	}
	return nil
}
