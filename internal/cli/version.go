package cli

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewFigure(cfg.AppName, "cybermedium", true)
		banner.Print()
		fmt.Printf("\ntaskctl %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
