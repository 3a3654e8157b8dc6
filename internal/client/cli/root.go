package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

func (a *App) getStatus() string {
	if principal, ok := a.session.Principal(); ok {
		return fmt.Sprintf("(%s)", shortPrincipal(principal))
	}
	return ""
}

// shortPrincipal trims the middle of a long principal for the prompt.
func shortPrincipal(p string) string {
	if len(p) <= 16 {
		return p
	}
	return p[:8] + "…" + p[len(p)-6:]
}

func parseIndexArg(args []string, usage string) (uint64, bool) {
	if len(args) == 0 {
		fmt.Println("Usage:", usage)
		return 0, false
	}
	index, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Println("Bad listing index:", args[0])
		return 0, false
	}
	return index, true
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to modelmart CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("mm %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Wallet:  connect, disconnect, status")
			fmt.Println("Vendor:  publish, update <index>, delete <index>, mine")
			fmt.Println("Buyer:   market, get <index>, buy <index>, download <index>")
			fmt.Println("Other:   exit")

		case "connect":
			if err := a.Connect(ctx); err != nil {
				fmt.Println("Connect failed:", err)
			}
		case "disconnect":
			a.Disconnect(ctx)
		case "status":
			a.Status(ctx)

		case "publish":
			if err := a.publish(ctx); err != nil {
				fmt.Println("Publish failed:", err)
			}
		case "update":
			index, ok := parseIndexArg(args, "update <index>")
			if !ok {
				continue
			}
			if err := a.update(ctx, index); err != nil {
				fmt.Println("Update failed:", err)
			}
		case "delete":
			index, ok := parseIndexArg(args, "delete <index>")
			if !ok {
				continue
			}
			if err := a.delete(ctx, index); err != nil {
				fmt.Println("Delete failed:", err)
			}
		case "mine":
			a.mine(ctx)

		case "market":
			a.browse(ctx)
		case "get":
			index, ok := parseIndexArg(args, "get <index>")
			if !ok {
				continue
			}
			a.show(ctx, index)
		case "buy":
			index, ok := parseIndexArg(args, "buy <index>")
			if !ok {
				continue
			}
			if err := a.buy(ctx, index); err != nil {
				fmt.Println("Buy failed:", err)
			}
		case "download":
			index, ok := parseIndexArg(args, "download <index>")
			if !ok {
				continue
			}
			if err := a.download(ctx, index); err != nil {
				fmt.Println("Download failed:", err)
			}

		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
