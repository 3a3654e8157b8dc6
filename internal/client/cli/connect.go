package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/modelmart/modelmart/internal/client/wallet"
	"github.com/modelmart/modelmart/internal/common"
)

// getSimpleText and getPassphrase are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in
// tests.
var getSimpleText = GetSimpleText
var getPassphrase = GetPassphrase

// openWallet is the session connector: it unlocks the keystore, creating
// a fresh one on first run.
func (a *App) openWallet(ctx context.Context) (wallet.Identity, error) {
	passphrase, err := getPassphrase(os.Stdout)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(passphrase)

	id, err := wallet.OpenKeystore(a.config.KeystorePath, passphrase)
	if errors.Is(err, wallet.ErrKeystoreNotFound) {
		fmt.Printf("No keystore at %s, creating one.\n", a.config.KeystorePath)
		return wallet.CreateKeystore(a.config.KeystorePath, passphrase)
	}
	return id, err
}

// Connect opens the wallet session and runs the broker handshake so the
// paid operations have a token ready.
func (a *App) Connect(ctx context.Context) error {
	if err := a.session.Connect(ctx); err != nil {
		return err
	}

	principal, _ := a.session.Principal()
	fmt.Println("Connected as", principal)

	if err := a.broker.Handshake(ctx); err != nil {
		fmt.Println("Warning: broker handshake failed:", err)
	}
	return nil
}

func (a *App) Disconnect(ctx context.Context) {
	a.session.Disconnect()
	fmt.Println("Disconnected.")
}

func (a *App) Status(ctx context.Context) {
	if principal, ok := a.session.Principal(); ok {
		fmt.Println("Connected as", principal)
	} else {
		fmt.Println("Not connected.")
	}

	if err := a.broker.Ping(ctx); err != nil {
		fmt.Println("Broker: unreachable:", err)
	} else {
		fmt.Println("Broker: OK")
	}
}
