package devenv

// LiveTestConfig is read from <dev_state>/ebay_config.json5 by the tests
// that talk to the real site, they are skipped when it does not exist.
type LiveTestConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Auction is an item number whose bid history can be fetched.
	Auction string `json:"auction"`
}
