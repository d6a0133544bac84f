package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List all orders",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := buildApp(false)
		if err != nil {
			fmt.Printf("Error initializing bakecake: %v\n", err)
			os.Exit(1)
		}
		defer app.close()

		orders, err := app.bot.Ledger().List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing orders: %v\n", err)
			os.Exit(1)
		}
		if len(orders) == 0 {
			fmt.Println("No orders yet.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCUSTOMER\tSTATUS\tCAKES\tTOTAL\tCREATED")
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
				o.ID,
				o.CustomerID,
				o.Status.Label(),
				len(o.Cakes),
				o.Total,
				o.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
}
