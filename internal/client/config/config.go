package config

import "time"

// Config holds runtime settings for the modelmart CLI.
//
// Fields:
//   - BrokerEndpointAddr: host:port of the broker gRPC endpoint.
//   - LedgerEndpointAddr: host:port of the ledger gRPC endpoint.
//   - LedgerDialect: "transfer" or "send_dfx".
//   - KeystorePath: wallet keystore file.
//   - JournalPath: sqlite payment journal file.
//   - FeeWalletPrincipal: principal that receives publishing fees.
//   - RequestTimeout: per-call broker deadline.
//   - TransferTimeout: ledger transfer deadline; past it the payment
//     status is unknown, not failed.
type Config struct {
	BrokerEndpointAddr string
	LedgerEndpointAddr string
	LedgerDialect      string
	KeystorePath       string
	JournalPath        string
	FeeWalletPrincipal string
	RequestTimeout     time.Duration
	TransferTimeout    time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BrokerEndpointAddr = "127.0.0.1:50051"
	c.LedgerEndpointAddr = "127.0.0.1:50052"
	c.LedgerDialect = "transfer"
	c.KeystorePath = "modelmart-wallet.json"
	c.JournalPath = "modelmart-journal.db"
	c.RequestTimeout = 10 * time.Second
	c.TransferTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
