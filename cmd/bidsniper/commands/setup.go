package commands

import (
	"bidsniper/lib/auction"
	"bidsniper/lib/auctionfile"
	"bidsniper/lib/notify"
	"bidsniper/lib/restyutil"
	"bidsniper/lib/scrapers/ebay/core"
	"bidsniper/lib/snapstore"
	"bidsniper/lib/telemetry"
	"bidsniper/services/sniper"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

// app holds everything a command needs to talk to the site.
type app struct {
	cfg      Config
	session  *core.Session
	sniper   *sniper.Sniper
	notifier notify.Notifier
	database *sql.DB
}

func newApp(cfg Config) (*app, error) {
	telemetry.InitSlog(cfg.Debug)

	if cfg.Username == "" {
		return nil, fmt.Errorf("a username is required, set it with -u, in %s or in BIDSNIPER_USERNAME", configName)
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("a password is required, set it in %s or in BIDSNIPER_PASSWORD", configName)
	}

	diagnostics, err := restyutil.NewFilesystemOutput(cfg.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("failed to create diagnostics directory: %w", err)
	}
	slog.Debug("diagnostics directory", "path", diagnostics.Dir())

	var dump restyutil.InstrumentOutput
	if cfg.Debug {
		dump = diagnostics
	}
	client, err := core.NewClient(core.ClientOptions{
		Proxy:  cfg.Proxy,
		Output: dump,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	reporter := core.NewFileReporter(diagnostics)
	session := core.NewSession(core.SessionOptions{
		Fetcher: client,
		Hosts:   cfg.Hosts,
		Credentials: core.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Reporter: reporter,
	})

	a := &app{
		cfg:      cfg,
		session:  session,
		notifier: notify.NewNotifier(cfg.Smtp),
	}

	params := sniper.Params{
		Session:  session,
		Reporter: reporter,
		Options: sniper.Options{
			BidTime:        cfg.Seconds.Duration(),
			Quantity:       cfg.Quantity,
			DisableBidding: !*cfg.Bid,
			Reduce:         *cfg.Reduce,
			Delay:          time.Duration(*cfg.Delay) * time.Second,
			Debug:          cfg.Debug,
		},
	}
	if cfg.Db != "" {
		a.database, err = snapstore.Open(cfg.Db)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot db: %w", err)
		}
		params.Recorder = snapstore.NewStore(a.database)
	}
	a.sniper = sniper.NewSniper(params)

	return a, nil
}

func (a *app) Close() {
	if a.database == nil {
		return
	}
	err := a.database.Close()
	if err != nil {
		slog.Warn("failed to close snapshot db", "err", err)
	}
}

// readAuctions turns the arguments of a command into auctions. A single
// argument is an auction file, otherwise the arguments are pairs of item
// number and bid price. The auction file is returned so its config lines
// can be applied.
func readAuctions(args []string) ([]*auction.Auction, string, error) {
	if len(args) == 1 {
		auctions, err := auctionfile.ReadFile(args[0])
		if err != nil {
			return nil, "", err
		}
		return auctions, args[0], nil
	}
	if len(args)%2 != 0 {
		return nil, "", fmt.Errorf("auctions must be given as pairs of item number and bid price")
	}
	auctions := make([]*auction.Auction, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		a := auction.New(args[i], args[i+1])
		if a.BidPriceText == "" {
			return nil, "", fmt.Errorf("invalid bid price %q for auction %s", args[i+1], args[i])
		}
		auctions = append(auctions, a)
	}
	return auctions, "", nil
}

// setupBatch reads the auctions and config of a batch command and builds
// the app to run it with.
func setupBatch(cmd *cobra.Command, args []string) (*app, []*auction.Auction, error) {
	auctions, auctionFile, err := readAuctions(args)
	if err != nil {
		return nil, nil, err
	}
	if len(auctions) == 0 {
		return nil, nil, fmt.Errorf("no auctions to snipe")
	}
	cfg, err := loadConfig(cmd.Flags(), flags, auctionFile)
	if err != nil {
		return nil, nil, err
	}
	a, err := newApp(cfg)
	if err != nil {
		return nil, nil, err
	}
	return a, auctions, nil
}
