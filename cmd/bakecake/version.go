package main

import (
	"fmt"

	"github.com/aretw0/bakecake"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bakecake",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bakecake version %s\n", bakecake.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
