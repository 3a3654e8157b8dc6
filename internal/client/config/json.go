package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/modelmart/modelmart/internal/flagx"
	"github.com/modelmart/modelmart/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// may be given as strings like "30s" or as integer nanoseconds.
type JsonConfig struct {
	BrokerEndpointAddr string         `json:"broker_endpoint_addr"`
	LedgerEndpointAddr string         `json:"ledger_endpoint_addr"`
	LedgerDialect      string         `json:"ledger_dialect"`
	KeystorePath       string         `json:"keystore_path"`
	JournalPath        string         `json:"journal_path"`
	FeeWalletPrincipal string         `json:"fee_wallet_principal"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	TransferTimeout    timex.Duration `json:"transfer_timeout"`
}

// parseJson overlays cfg with values loaded from the JSON file named by
// the -c/-config flags. Empty JSON fields leave the current value alone.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BrokerEndpointAddr != "" {
		cfg.BrokerEndpointAddr = jc.BrokerEndpointAddr
	}
	if jc.LedgerEndpointAddr != "" {
		cfg.LedgerEndpointAddr = jc.LedgerEndpointAddr
	}
	if jc.LedgerDialect != "" {
		cfg.LedgerDialect = jc.LedgerDialect
	}
	if jc.KeystorePath != "" {
		cfg.KeystorePath = jc.KeystorePath
	}
	if jc.JournalPath != "" {
		cfg.JournalPath = jc.JournalPath
	}
	if jc.FeeWalletPrincipal != "" {
		cfg.FeeWalletPrincipal = jc.FeeWalletPrincipal
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.TransferTimeout.Duration != 0 {
		cfg.TransferTimeout = time.Duration(jc.TransferTimeout.Duration)
	}
}
