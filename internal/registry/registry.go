package registry

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"art-auction/internal/auctionerrors"
	"art-auction/internal/fanout"
	model "art-auction/internal/models"
	"art-auction/internal/repository"
	"art-auction/utils"
)

// ArtworkCatalog supplies artwork existence checks when creating an auction.
// The catalog itself is an external collaborator; the registry only needs
// this one question answered.
type ArtworkCatalog interface {
	ArtworkExists(artworkID string) (bool, error)
}

// EventPublisher pushes auction events to the notification fan-out
type EventPublisher interface {
	Publish(ev fanout.Event)
}

// Registry owns auction records and their lifecycle transitions
type Registry struct {
	store   repository.AuctionStore
	catalog ArtworkCatalog
	events  EventPublisher
	nowFn   func() time.Time
}

// NewRegistry creates a new Registry instance
func NewRegistry(store repository.AuctionStore, catalog ArtworkCatalog, events EventPublisher) *Registry {
	return &Registry{
		store:   store,
		catalog: catalog,
		events:  events,
		nowFn:   time.Now,
	}
}

// CreateAuction validates and stores a new timed sale for an artwork.
// The auction starts in Pending even when startTime has already passed;
// the first status read advances it.
func (r *Registry) CreateAuction(artworkID, sellerID string, startPrice decimal.Decimal, startTime, endTime time.Time) (model.Auction, error) {
	if artworkID == "" || sellerID == "" {
		return model.Auction{}, fmt.Errorf("registry: %w - missing artworkID or sellerID", auctionerrors.ErrInvalidAuction)
	}
	if !endTime.After(startTime) {
		return model.Auction{}, fmt.Errorf("registry: %w - endTime must be after startTime", auctionerrors.ErrInvalidWindow)
	}
	if !startPrice.IsPositive() {
		return model.Auction{}, fmt.Errorf("registry: %w - startPrice must be positive", auctionerrors.ErrInvalidWindow)
	}

	exists, err := r.catalog.ArtworkExists(artworkID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("registry: failed to check artwork %s: %w", artworkID, err)
	}
	if !exists {
		return model.Auction{}, fmt.Errorf("registry: artwork %s: %w", artworkID, auctionerrors.ErrArtworkNotFound)
	}

	auction := model.Auction{
		AuctionID:  utils.GenerateID(),
		ArtworkID:  artworkID,
		SellerID:   sellerID,
		StartPrice: startPrice,
		StartTime:  startTime.UTC(),
		EndTime:    endTime.UTC(),
		Status:     model.StatusPending,
		CreatedAt:  r.nowFn().UTC(),
	}

	if err := r.store.CreateAuction(auction); err != nil {
		return model.Auction{}, fmt.Errorf("registry: failed to create auction for artwork %s: %w", artworkID, err)
	}

	return auction, nil
}

// GetAuction returns the auction with its status evaluated against the clock
func (r *Registry) GetAuction(auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("registry: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}

	auction, err := r.store.GetAuction(auctionID, r.nowFn())
	if err != nil {
		return model.Auction{}, fmt.Errorf("registry: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// GetStatus returns the auction's current lifecycle state
func (r *Registry) GetStatus(auctionID string) (model.AuctionStatus, error) {
	auction, err := r.GetAuction(auctionID)
	if err != nil {
		return "", err
	}
	return auction.Status, nil
}

// ListAuctions returns auctions filtered by status; empty status returns all
func (r *Registry) ListAuctions(status model.AuctionStatus) ([]model.Auction, error) {
	switch status {
	case "", model.StatusPending, model.StatusActive, model.StatusClosed:
	default:
		return nil, fmt.Errorf("registry: %w - unknown status %q", auctionerrors.ErrInvalidAuction, status)
	}

	auctions, err := r.store.ListAuctions(status, r.nowFn())
	if err != nil {
		return nil, fmt.Errorf("registry: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// TransitionIfDue idempotently advances one auction and publishes the close
// event for the call that first observes the Closed state.
func (r *Registry) TransitionIfDue(auctionID string, now time.Time) (model.TransitionOutcome, error) {
	out, err := r.store.TransitionIfDue(auctionID, now)
	if err != nil {
		return model.TransitionOutcome{}, fmt.Errorf("registry: failed to transition auction %s: %w", auctionID, err)
	}

	if out.ClosedNow {
		r.events.Publish(fanout.AuctionClosed(auctionID, out.WinningBid))

		fields := map[string]any{"auction_id": auctionID}
		if out.WinningBid != nil {
			fields["winning_bid_id"] = out.WinningBid.BidID
			fields["winning_amount"] = out.WinningBid.Amount.String()
			fields["winner_id"] = out.WinningBid.BidderID
		}
		utils.Info("auction closed", fields)
	}

	return out, nil
}

// SweepDue advances every auction that crossed a time threshold. Per-auction
// failures are logged and skipped so one bad record cannot stall the sweep.
// Returns the number of auctions closed by this sweep.
func (r *Registry) SweepDue(now time.Time) (int, error) {
	auctions, err := r.store.ListAuctions("", now)
	if err != nil {
		return 0, fmt.Errorf("registry: failed to list auctions for sweep: %w", err)
	}

	closed := 0
	for _, a := range auctions {
		out, err := r.TransitionIfDue(a.AuctionID, now)
		if err != nil {
			utils.Error("sweep: transition failed", map[string]any{
				"auction_id": a.AuctionID,
				"error":      err.Error(),
			})
			continue
		}
		if out.ClosedNow {
			closed++
		}
	}
	return closed, nil
}
