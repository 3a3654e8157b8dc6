package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelmart/modelmart/internal/rpc"
)

func printListings(listings []rpc.Listing) {
	if len(listings) == 0 {
		fmt.Println("No listings.")
		return
	}
	for _, l := range listings {
		fmt.Printf("%4d  %-24s %-8s %10s ICP  %s\n", l.Index, l.Name, l.Category, l.Price, l.Description)
	}
}

func (a *App) browse(ctx context.Context) {
	listings, err := a.market.Listings(ctx)
	if err != nil {
		fmt.Println("Failed to list:", err)
		return
	}
	printListings(listings)
}

func (a *App) show(ctx context.Context, index uint64) {
	l, err := a.market.Get(ctx, index)
	if err != nil {
		fmt.Println("Failed to fetch listing:", err)
		return
	}

	fmt.Println("Name:       ", l.Name)
	fmt.Println("Description:", l.Description)
	fmt.Println("Category:   ", l.Category)
	fmt.Println("Price:      ", l.Price, "ICP")
	fmt.Println("Endpoint:   ", l.APIEndpoint)
	fmt.Println("Uploader:   ", l.Uploader)
	fmt.Println("Published:  ", time.Unix(l.CreatedAtUnix, 0).Format(time.RFC3339))

	if purchased, err := a.market.HasPurchased(ctx, index); err == nil && purchased {
		fmt.Println("You own this model.")
	}
}

func (a *App) buy(ctx context.Context, index uint64) error {
	l, err := a.market.Get(ctx, index)
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("Buy %q for %s ICP? (y/n)", l.Name, l.Price), os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := a.market.Buy(ctx, index); err != nil {
		return err
	}

	fmt.Println("Purchased listing", index)
	return nil
}

func (a *App) download(ctx context.Context, index uint64) error {
	url, err := a.market.Download(ctx, index)
	if err != nil {
		return err
	}
	fmt.Println("Download URL (expires shortly):")
	fmt.Println(" ", url)
	return nil
}
