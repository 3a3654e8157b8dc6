package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/modelmart/modelmart/internal/rpc"
)

// promptDraft collects the listing fields. Existing values (when
// updating) are kept on empty input.
func (a *App) promptDraft(base rpc.ListingDraft) (rpc.ListingDraft, error) {
	fields := []struct {
		label string
		dest  *string
	}{
		{"Model name", &base.Name},
		{"Description", &base.Description},
		{"Category (image/text/audio)", &base.Category},
		{"Price in ICP", &base.Price},
		{"API endpoint", &base.APIEndpoint},
		{"Image URL", &base.Image},
		{"Payout wallet principal", &base.WalletPrincipal},
	}

	for _, f := range fields {
		label := f.label
		if *f.dest != "" {
			label = fmt.Sprintf("%s [%s]", f.label, *f.dest)
		}
		v, err := getSimpleText(a.reader, label, os.Stdout)
		if err != nil {
			return base, err
		}
		if v != "" {
			*f.dest = v
		}
	}
	return base, nil
}

// confirmQuote shows the publishing cost and asks for consent before any
// funds move.
func (a *App) confirmQuote(draft rpc.ListingDraft) (bool, error) {
	quote, err := a.publisher.Quote(draft)
	if err != nil {
		return false, err
	}
	fmt.Printf("Payload: %d bytes, cost: %s ICP (+%d e8s ledger fee)\n",
		quote.SizeBytes, quote.PaymentICP(), quote.FeeE8s)

	answer, err := getSimpleText(a.reader, "Proceed with payment? (y/n)", os.Stdout)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func (a *App) publish(ctx context.Context) error {
	draft, err := a.promptDraft(rpc.ListingDraft{})
	if err != nil {
		return err
	}

	ok, err := a.confirmQuote(draft)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	if upload, err := getSimpleText(a.reader, "Attach a model artifact? (y/n)", os.Stdout); err == nil && strings.EqualFold(upload, "y") {
		key, url, err := a.broker.PresignUpload(ctx)
		if err != nil {
			return err
		}
		draft.ArtifactKey = key
		fmt.Println("Upload your artifact with:")
		fmt.Printf("  curl -X PUT --upload-file <model-file> '%s'\n", url)
	}

	index, err := a.publisher.Publish(ctx, draft)
	if err != nil {
		return err
	}

	fmt.Println("Published as listing", index)
	return nil
}

func (a *App) update(ctx context.Context, index uint64) error {
	current, err := a.market.Get(ctx, index)
	if err != nil {
		return err
	}

	draft, err := a.promptDraft(rpc.ListingDraft{
		Name:            current.Name,
		Description:     current.Description,
		Category:        current.Category,
		Price:           current.Price,
		APIEndpoint:     current.APIEndpoint,
		Image:           current.Image,
		WalletPrincipal: current.WalletPrincipal,
		ArtifactKey:     current.ArtifactKey,
	})
	if err != nil {
		return err
	}

	ok, err := a.confirmQuote(draft)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := a.publisher.Update(ctx, index, draft); err != nil {
		return err
	}

	fmt.Println("Listing", index, "updated.")
	return nil
}

func (a *App) delete(ctx context.Context, index uint64) error {
	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("Deleting listing %d costs its stored size in ICP. Proceed? (y/n)", index), os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := a.publisher.Delete(ctx, index); err != nil {
		return err
	}

	fmt.Println("Listing", index, "deleted.")
	return nil
}

func (a *App) mine(ctx context.Context) {
	listings, err := a.market.Mine(ctx)
	if err != nil {
		fmt.Println("Failed to list:", err)
		return
	}
	printListings(listings)
}
