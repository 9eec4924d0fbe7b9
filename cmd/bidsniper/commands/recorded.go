package commands

import (
	"bidsniper/lib/snapstore"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recordedCmd)
}

var recordedCmd = &cobra.Command{
	Use:   "recorded <item> [item ...]",
	Short: "Shows what the snapshot db recorded about auctions.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), flags, "")
		if err != nil {
			return err
		}
		if cfg.Db == "" {
			return fmt.Errorf("no snapshot db is configured, set it with --db or in %s", configName)
		}
		database, err := snapstore.Open(cfg.Db)
		if err != nil {
			return err
		}
		defer database.Close()
		store := snapstore.NewStore(database)

		out := cmd.OutOrStdout()
		for _, id := range args {
			history, err := store.Pull(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(history.Snapshots) == 0 && len(history.Bids) == 0 {
				fmt.Fprintf(out, "nothing recorded for %s\n", id)
				continue
			}
			fmt.Fprintf(out, "%s %s\n", history.AuctionID, history.Title)

			t := newTable(out)
			t.AppendHeader(table.Row{"Time", "Price", "Quantity", "Bids", "Reserve", "Remain", "Winning", "Won", "Error"})
			for _, s := range history.Snapshots {
				t.AppendRow(table.Row{
					s.Time.Format(time.DateTime),
					fmt.Sprintf("%s %.2f", s.Currency, s.Price),
					s.Quantity,
					s.Bids,
					s.Reserve,
					time.Duration(s.Remain) * time.Second,
					s.Winning,
					s.Won,
					s.Error,
				})
			}
			t.Render()

			if len(history.Bids) == 0 {
				continue
			}
			t = newTable(out)
			t.AppendHeader(table.Row{"Time", "Bid", "Quantity", "Result"})
			for _, b := range history.Bids {
				t.AppendRow(table.Row{b.Time.Format(time.DateTime), b.BidPrice, b.Quantity, b.Result})
			}
			t.Render()
		}
		return nil
	},
}
