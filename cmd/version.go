package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of authfetch",
		Long:  `All software has versions. This is authfetch's.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("authfetch version %s\n", rootCmd.Version)
		},
	}
}
