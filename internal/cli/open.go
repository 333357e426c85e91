package cli

import (
	"github.com/jrsteele09/go-task-client/auth"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Resolve a destination for the current session",
	Long: `Resolve a destination path against the current session's role.

Shows whether the destination is reachable, or where the client would be
redirected instead.

Examples:
  taskctl open /task
  taskctl open /admin/users`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	resolution, _, err := auth.Bootstrap(app.store, app.table, args[0], log)
	if err != nil {
		return err
	}
	if resolution.Allow {
		app.printer.Success("%s is reachable", args[0])
		return nil
	}
	app.printer.Warning("%s redirects to %s", args[0], resolution.RedirectTo)
	return nil
}
