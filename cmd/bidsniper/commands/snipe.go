package commands

import (
	"bidsniper/lib/notify"
	"bidsniper/services/sniper"
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(snipeCmd)
}

func notification(summary sniper.Summary) notify.Summary {
	out := notify.Summary{
		Finished: summary.Finished,
		Wanted:   summary.Wanted,
		Won:      summary.Won,
	}
	for _, r := range summary.Results {
		out.Results = append(out.Results, notify.Result{
			Auction:  r.Auction.ID,
			Title:    r.Auction.Title,
			BidPrice: r.Auction.BidPriceText,
			Won:      r.Won,
			Error:    errorText(r.Auction),
		})
	}
	return out
}

func (a *app) notify(ctx context.Context, summary sniper.Summary) {
	if !a.notifier.Enabled() {
		return
	}
	// the run context may be cancelled already, the summary is still sent
	err := a.notifier.Notify(context.WithoutCancel(ctx), notification(summary))
	if err != nil {
		slog.Error("failed to send summary", "err", err)
		return
	}
	slog.Info("summary sent")
}

var snipeCmd = &cobra.Command{
	Use:   "snipe <auction-file | item price [item price ...]>",
	Short: "Snipes a batch of auctions until the wanted quantity is won.",
	Long: `Snipes a batch of auctions until the wanted quantity is won.

An auction file holds one auction per line, an item number followed by an
optional bid price. A line without a price keeps the previous price. Lines
starting with a letter are configuration, "key = value", using the names of
the config file. Everything after a # is a comment.

The command fails when nothing was won.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, auctions, err := setupBatch(cmd, args)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		summary, err := a.sniper.Run(ctx, auctions)
		if err != nil {
			slog.Error("batch stopped", "err", err)
		}
		if len(summary.Results) > 0 {
			renderResults(cmd.OutOrStdout(), summary)
		}
		a.notify(ctx, summary)

		if err != nil {
			return err
		}
		if summary.Won == 0 {
			return errNothingWon
		}
		return nil
	},
}
