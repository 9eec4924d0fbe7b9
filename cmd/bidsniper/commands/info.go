package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <auction-file | item price [item price ...]>",
	Short: "Loads a batch of auctions and shows them in the order they would be sniped.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, auctions, err := setupBatch(cmd, args)
		if err != nil {
			return err
		}
		defer a.Close()

		remaining, err := a.sniper.Prepare(cmd.Context(), auctions)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		renderAuctions(out, auctions, time.Now())
		fmt.Fprintf(out, "%d auctions remaining, %d items wanted\n", len(remaining), a.sniper.Quantity())
		for i, next := range remaining {
			fmt.Fprintf(out, "%d. %s %s\n", i+1, next.ID, next.Title)
		}
		return nil
	},
}
