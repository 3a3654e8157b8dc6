package config

import (
	"flag"
	"os"

	"github.com/modelmart/modelmart/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   broker endpoint (host:port)
//	-l string   ledger endpoint (host:port)
//	-d string   ledger dialect (transfer|send_dfx)
//	-k string   wallet keystore path
//	-j string   payment journal path
//	-f string   fee wallet principal
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-l", "-d", "-k", "-j", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BrokerEndpointAddr, "b", cfg.BrokerEndpointAddr, "broker endpoint (host:port)")
	fs.StringVar(&cfg.LedgerEndpointAddr, "l", cfg.LedgerEndpointAddr, "ledger endpoint (host:port)")
	fs.StringVar(&cfg.LedgerDialect, "d", cfg.LedgerDialect, "ledger dialect (transfer|send_dfx)")
	fs.StringVar(&cfg.KeystorePath, "k", cfg.KeystorePath, "wallet keystore path")
	fs.StringVar(&cfg.JournalPath, "j", cfg.JournalPath, "payment journal path")
	fs.StringVar(&cfg.FeeWalletPrincipal, "f", cfg.FeeWalletPrincipal, "fee wallet principal")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
