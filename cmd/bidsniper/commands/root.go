package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "bidsniper",
	Short: "bidsniper places bids in the last seconds of online auctions.",
	Long: `bidsniper watches a batch of auctions and bids on them one at a time,
moments before each one ends, until the wanted quantity is won.

Auctions are given either as an auction file or as pairs of item number and
bid price on the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

type flagValues struct {
	config      string
	username    string
	seconds     string
	quantity    int
	proxy       string
	noBid       bool
	noReduce    bool
	debug       bool
	delay       int
	db          string
	diagnostics string
}

var flags flagValues

func bindFlags(fs *pflag.FlagSet, f *flagValues) {
	fs.StringVarP(&f.config, "config", "c", "", "An extra config file, applied after the default ones.")
	fs.StringVarP(&f.username, "username", "u", "", "The user to sign in as.")
	fs.StringVarP(&f.seconds, "seconds", "s", "", "Seconds before the end of the auction to bid, or \"now\".")
	fs.IntVarP(&f.quantity, "quantity", "q", 1, "The number of items to win.")
	fs.StringVarP(&f.proxy, "proxy", "p", "", "The http proxy to use.")
	fs.BoolVarP(&f.noBid, "no-bid", "n", false, "Do everything except placing the bid.")
	fs.BoolVarP(&f.noReduce, "no-reduce", "r", false, "Do not lower the quantity by items already won.")
	fs.BoolVarP(&f.debug, "debug", "d", false, "Log debug messages and dump every http exchange.")
	fs.IntVarP(&f.delay, "delay", "D", 2, "Seconds to wait between loading auctions.")
	fs.StringVar(&f.db, "db", "", "A sqlite database to record snapshots and bids in.")
	fs.StringVar(&f.diagnostics, "diagnostics", "", "The directory unrecognized pages are saved to.")
}

func init() {
	bindFlags(rootCmd.PersistentFlags(), &flags)
}

// errNothingWon makes the process exit with a failure when a batch ends
// without winning anything.
var errNothingWon = fmt.Errorf("no items were won")

// ExecuteContext runs the command line and reports whether it succeeded,
// errors are printed to stderr.
func ExecuteContext(ctx context.Context) bool {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	return true
}
