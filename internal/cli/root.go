// Package cli contains all taskctl commands.
package cli

import (
	"os"

	"github.com/jrsteele09/go-task-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	serverURL       string
	credentialsFile string
	verbose         bool
	noColor         bool
	cfg             *config.Config
	log             zerolog.Logger
	version         = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Task manager client",
	Long: `taskctl is the command line client for the task manager backend.

It signs in against the backend, keeps the session alive by renewing the
access credential transparently, and exposes the task and user endpoints.

Example usage:
  taskctl login -u jane          # Sign in and persist the session
  taskctl task list              # List tasks
  taskctl task done 42           # Mark task 42 as completed
  taskctl user list              # List users (admin roles only)
  taskctl whoami                 # Show the current session`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .taskctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL")
	rootCmd.PersistentFlags().StringVar(&credentialsFile, "credentials", "", "credentials file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}
	if credentialsFile != "" {
		cfg.Session.CredentialsFile = credentialsFile
	}
	if noColor {
		cfg.Output.Colors = false
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return nil
}
