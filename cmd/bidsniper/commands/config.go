package commands

import (
	"bidsniper/lib/auctionfile"
	"bidsniper/lib/configutil"
	"bidsniper/lib/notify"
	"bidsniper/lib/scrapers/ebay/core"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const configName = "bidsniper.json5"

const (
	minLeadTime     = 5
	defaultLeadTime = 10
)

// LeadTime is how many seconds before the end of an auction the bid is
// sent, zero bids at once.
type LeadTime int

func ParseLeadTime(text string) (LeadTime, error) {
	text = strings.TrimSpace(text)
	if text == "now" {
		return 0, nil
	}
	seconds, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("seconds accepts integer values greater than %d or \"now\", got %q", minLeadTime-1, text)
	}
	return LeadTime(seconds), nil
}

func (l *LeadTime) UnmarshalJSON(data []byte) error {
	parsed, err := ParseLeadTime(strings.Trim(string(data), `"'`))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l LeadTime) Duration() time.Duration {
	return time.Duration(l) * time.Second
}

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`

	Seconds  *LeadTime `json:"seconds"`
	Quantity int       `json:"quantity"`
	Bid      *bool     `json:"bid"`
	Reduce   *bool     `json:"reduce"`
	// Delay is in seconds.
	Delay *int `json:"delay"`

	Proxy string     `json:"proxy"`
	Hosts core.Hosts `json:"hosts"`

	Diagnostics string `json:"diagnostics"`
	Db          string `json:"db"`
	Debug       bool   `json:"debug"`

	Smtp notify.SmtpConfig `json:"smtp"`
}

func ptr[T any](v T) *T {
	return &v
}

func defaultConfig() Config {
	diagnostics := filepath.Join("<dev_state>", "diagnostics")
	home, err := os.UserHomeDir()
	if err == nil {
		diagnostics = filepath.Join(home, ".bidsniper")
	}
	return Config{
		Seconds:     ptr(LeadTime(defaultLeadTime)),
		Quantity:    1,
		Bid:         ptr(true),
		Reduce:      ptr(true),
		Delay:       ptr(2),
		Hosts:       core.DefaultHosts(),
		Diagnostics: diagnostics,
	}
}

// parseBool accepts the spellings allowed in an auction file, an empty
// value means true.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "1", "y", "yes", "on", "true", "enabled":
		return true, nil
	case "0", "n", "no", "off", "false", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean value", value)
}

// applyEntries applies the configuration lines of an auction file.
func (c *Config) applyEntries(entries map[string]string) error {
	for key, value := range entries {
		var err error
		switch strings.ToLower(key) {
		case "username":
			c.Username = value
		case "password":
			c.Password = value
		case "seconds":
			var seconds LeadTime
			seconds, err = ParseLeadTime(value)
			c.Seconds = &seconds
		case "quantity":
			c.Quantity, err = strconv.Atoi(value)
		case "bid":
			var bid bool
			bid, err = parseBool(value)
			c.Bid = &bid
		case "reduce":
			var reduce bool
			reduce, err = parseBool(value)
			c.Reduce = &reduce
		case "delay":
			var delay int
			delay, err = strconv.Atoi(value)
			c.Delay = &delay
		case "debug":
			c.Debug, err = parseBool(value)
		case "proxy":
			c.Proxy = value
		case "logdir":
			c.Diagnostics = value
		case "historyhost":
			c.Hosts.History = value
		case "prebidhost":
			c.Hosts.PreBid = value
		case "bidhost":
			c.Hosts.Bid = value
		case "loginhost":
			c.Hosts.Login = value
		case "myebayhost":
			c.Hosts.MyEbay = value
		default:
			err = fmt.Errorf("unknown option")
		}
		if err != nil {
			return fmt.Errorf("option %q: %w", key, err)
		}
	}
	return nil
}

// applyEnv reads credentials from the environment, a .env file in the
// working directory is loaded first when there is one.
func (c *Config) applyEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "err", err)
	}
	if username := os.Getenv("BIDSNIPER_USERNAME"); username != "" {
		c.Username = username
	}
	if password := os.Getenv("BIDSNIPER_PASSWORD"); password != "" {
		c.Password = password
	}
	if proxy := os.Getenv("BIDSNIPER_PROXY"); proxy != "" {
		c.Proxy = proxy
	}
}

// applyFlags overrides c with every flag set on the command line.
func (c *Config) applyFlags(fs *pflag.FlagSet, flags flagValues) error {
	changed := fs.Changed
	if changed("username") {
		c.Username = flags.username
	}
	if changed("seconds") {
		seconds, err := ParseLeadTime(flags.seconds)
		if err != nil {
			return err
		}
		c.Seconds = &seconds
	}
	if changed("quantity") {
		c.Quantity = flags.quantity
	}
	if changed("proxy") {
		c.Proxy = flags.proxy
	}
	if changed("no-bid") {
		c.Bid = ptr(!flags.noBid)
	}
	if changed("no-reduce") {
		c.Reduce = ptr(!flags.noReduce)
	}
	if changed("delay") {
		c.Delay = ptr(flags.delay)
	}
	if changed("debug") {
		c.Debug = flags.debug
	}
	if changed("db") {
		c.Db = flags.db
	}
	if changed("diagnostics") {
		c.Diagnostics = flags.diagnostics
	}
	return nil
}

func (c *Config) validate() error {
	if c.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", c.Quantity)
	}
	if *c.Seconds != 0 && *c.Seconds < minLeadTime {
		slog.Warn("seconds too small, using the minimum", "seconds", int(*c.Seconds), "minimum", minLeadTime)
		*c.Seconds = minLeadTime
	}
	if *c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative, got %d", *c.Delay)
	}
	return nil
}

// configFiles lists the config files that apply, least important first.
func configFiles(extra, auctionFile string) []string {
	var files []string
	home, err := os.UserHomeDir()
	if err == nil {
		files = append(files, filepath.Join(home, configName))
	}
	if auctionFile != "" {
		local := filepath.Join(filepath.Dir(auctionFile), configName)
		if len(files) == 0 || !sameFile(files[0], local) {
			files = append(files, local)
		}
	}
	if extra != "" {
		files = append(files, extra)
	}
	return files
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// loadConfig resolves the configuration of a run. auctionFile may be
// empty when the auctions come from the command line.
func loadConfig(fs *pflag.FlagSet, flags flagValues, auctionFile string) (Config, error) {
	cfg := defaultConfig()

	files := configFiles(flags.config, auctionFile)
	read, err := configutil.ReadLayers(&cfg, files...)
	if err != nil {
		return Config{}, err
	}
	if flags.config != "" && !slices.Contains(read, flags.config) {
		return Config{}, fmt.Errorf("config file %s does not exist", flags.config)
	}

	if auctionFile != "" {
		entries, err := auctionfile.ReadEntries(auctionFile)
		if err != nil {
			return Config{}, err
		}
		err = cfg.applyEntries(entries)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", auctionFile, err)
		}
	}

	cfg.applyEnv()
	err = cfg.applyFlags(fs, flags)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}
