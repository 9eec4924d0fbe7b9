package commands

import (
	"bidsniper/lib/auction"
	"bidsniper/lib/htmlutil"
	"bidsniper/lib/scrapers/ebay/history"
	"bidsniper/lib/scrapers/ebay/outcome"
	"bidsniper/lib/scrapers/ebay/watching"
	"bidsniper/lib/telemetry"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

func readPage(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) < 2 || args[1] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[1])
}

func printKind(out io.Writer, info htmlutil.PageInfo, kind auction.Kind, ok bool) {
	fmt.Fprintf(out, "page name: %q page id: %q src id: %q\n", info.PageName, info.PageID, info.SrcID)
	if !ok {
		fmt.Fprintln(out, "unrecognized page")
		if suggestion, score := outcome.Suggest(info.PageName); suggestion != "" {
			fmt.Fprintf(out, "closest known page: %s (%.2f)\n", suggestion, score)
		}
		return
	}
	if kind == auction.KindNone {
		fmt.Fprintln(out, "result: success")
		return
	}
	fmt.Fprintf(out, "result: %s\n", kind)
}

// parsePage runs one of the page parsers on a saved page and prints what
// it made of it.
func parsePage(ctx context.Context, out io.Writer, parser string, page []byte) error {
	switch parser {
	case "page":
		info, ok := htmlutil.ReadPageInfo(page)
		if !ok {
			return fmt.Errorf("page carries no page identity")
		}
		fmt.Fprintf(out, "page name: %q page id: %q src id: %q\n", info.PageName, info.PageID, info.SrcID)
	case "history":
		a := auction.New("", "")
		err := history.Parse(ctx, page, time.Now(), a, history.Options{Debug: true})
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
		}
		encoded, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(encoded))
	case "bid":
		info, _ := htmlutil.ReadPageInfo(page)
		kind, ok := outcome.ClassifyBid(info)
		printKind(out, info, kind, ok)
	case "prebid":
		token, ok := outcome.ParseBidToken(page)
		if ok {
			fmt.Fprintf(out, "bid token: %s\n", token)
			return nil
		}
		info, _ := htmlutil.ReadPageInfo(page)
		kind, ok := outcome.ClassifyBidError(info)
		printKind(out, info, kind, ok)
	case "login":
		info, _ := htmlutil.ReadPageInfo(page)
		kind, ok := outcome.ClassifyLogin(info)
		printKind(out, info, kind, ok)
	case "watching":
		items, err := watching.Parse(ctx, page)
		if err != nil {
			return err
		}
		renderWatching(out, items)
	default:
		return fmt.Errorf("unknown parser %q", parser)
	}
	return nil
}

var parseCmd = &cobra.Command{
	Use:       "parse <page|history|bid|prebid|login|watching> [file]",
	Short:     "Runs a page parser on a saved page, reading stdin when no file is given.",
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"page", "history", "bid", "prebid", "login", "watching"},
	RunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(true)
		page, err := readPage(cmd, args)
		if err != nil {
			return err
		}
		return parsePage(cmd.Context(), cmd.OutOrStdout(), args[0], page)
	},
}
