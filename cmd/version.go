package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display mart-engine version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mart-engine version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
