package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bakecake",
	Short: "Bakecake is a conversational cake ordering bot",
	Long: `Bakecake runs a custom cake bakery's order-taking dialogue: consent and
contact capture, category-by-category cake composition, order review and
order history. Configuration comes from the environment (see .env.example).`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
