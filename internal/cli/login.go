package cli

import (
	"bufio"
	"strings"

	"github.com/jrsteele09/go-task-client/auth"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	Long: `Sign in against the backend and persist the session locally.

Examples:
  taskctl login -u jane -p secret
  taskctl login -u jane            # password read from stdin`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("username", "u", "", "username")
	loginCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	reader := bufio.NewReader(cmd.InOrStdin())
	if username == "" {
		app.printer.Print("username:")
		if username, err = readLine(reader); err != nil {
			return err
		}
	}
	if password == "" {
		app.printer.Print("password:")
		if password, err = readLine(reader); err != nil {
			return err
		}
	}

	established, err := app.auth.Login(cmd.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			app.printer.Error("invalid credentials")
			return err
		}
		return err
	}

	destination, err := app.table.DefaultDestination(established.Role)
	if err != nil {
		return err
	}
	app.printer.Success("signed in as %s (%s)", app.printer.Bold(established.DisplayName), established.Role)
	app.printer.Info("workspace: %s", destination)
	return nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "[readLine]")
	}
	return strings.TrimSpace(line), nil
}
