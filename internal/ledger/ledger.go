package ledger

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

// EventPublisher pushes bid events to the notification fan-out
type EventPublisher interface {
	Publish(ev fanout.Event)
}

// Ledger defines the business logic for the append-only bid record
type Ledger struct {
	store  repository.AuctionStore
	events EventPublisher
	nowFn  func() time.Time
}

// NewLedger creates a new Ledger instance
func NewLedger(store repository.AuctionStore, events EventPublisher) *Ledger {
	return &Ledger{
		store:  store,
		events: events,
		nowFn:  time.Now,
	}
}

// SubmitBid validates and records a bidder's bid for an auction. The window
// and floor checks run atomically with the append inside the store, so a bid
// timestamped at or after the close is always rejected. The accepted-bid
// event is published outside that critical section.
func (l *Ledger) SubmitBid(auctionID, bidderID string, amount decimal.Decimal) (model.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return model.Bid{}, fmt.Errorf("ledger: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return model.Bid{}, fmt.Errorf("ledger: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: l.nowFn().UTC(),
	}

	if err := l.store.AppendBid(bid); err != nil {
		return model.Bid{}, fmt.Errorf("ledger: failed to record bid for auction %s by bidder %s: %w", auctionID, bidderID, err)
	}

	l.events.Publish(fanout.BidAccepted(bid))
	utils.Info("bid accepted", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  bidderID,
		"amount":     amount.String(),
	})

	return bid, nil
}

// GetBidsForAuction returns all accepted bids for a specific auction
func (l *Ledger) GetBidsForAuction(auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("ledger: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := l.store.GetBidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("ledger: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetHighestBid returns the leading bid for an auction; for a closed auction
// this is the winning bid.
func (l *Ledger) GetHighestBid(auctionID string) (model.Bid, error) {
	if auctionID == "" {
		return model.Bid{}, fmt.Errorf("ledger: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	bid, err := l.store.GetHighestBid(auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("ledger: failed to get highest bid for auction %s: %w", auctionID, err)
	}
	return bid, nil
}

// GetAuctionsByBidder returns all auctions a bidder has placed bids on
func (l *Ledger) GetAuctionsByBidder(bidderID string) ([]model.Auction, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("ledger: %w - empty bidder ID", auctionerrors.ErrInvalidBid)
	}

	auctions, err := l.store.GetAuctionsByBidder(bidderID)
	if err != nil {
		return nil, fmt.Errorf("ledger: failed to get auctions for bidder %s: %w", bidderID, err)
	}
	return auctions, nil
}
