package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle state of an auction.
// Transitions are monotonic: Pending -> Active -> Closed.
type AuctionStatus string

const (
	StatusPending AuctionStatus = "pending"
	StatusActive  AuctionStatus = "active"
	StatusClosed  AuctionStatus = "closed"
)

// User represents a participant in the auction platform
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Artwork represents a piece listed by an artist
type Artwork struct {
	ArtworkID   string `json:"artwork_id"`
	ArtistID    string `json:"artist_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Medium      string `json:"medium"`
}

// Auction represents one artwork under timed sale
type Auction struct {
	AuctionID    string          `json:"auction_id"`
	ArtworkID    string          `json:"artwork_id"`
	SellerID     string          `json:"seller_id"`
	StartPrice   decimal.Decimal `json:"start_price"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	Status       AuctionStatus   `json:"status"`
	WinningBidID string          `json:"winning_bid_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Bid represents a user's bid on an auction
type Bid struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransitionOutcome reports what a clock-driven transition did to an auction.
// ClosedNow is true only for the call that first reports the close, so the
// caller can publish the close event exactly once.
type TransitionOutcome struct {
	Auction    Auction
	ClosedNow  bool
	WinningBid *Bid
}
