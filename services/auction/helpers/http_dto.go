package helpers

import (
	"time"

	"github.com/shopspring/decimal"

	model "art-auction/internal/models"
)

// Request/Response DTOs
type CreateAuctionRequest struct {
	ArtworkID  string          `json:"artwork_id" binding:"required"`
	SellerID   string          `json:"seller_id" binding:"required"`
	StartPrice decimal.Decimal `json:"start_price" binding:"required"`
	StartTime  time.Time       `json:"start_time" binding:"required"`
	EndTime    time.Time       `json:"end_time" binding:"required"`
}

type PlaceBidRequest struct {
	AuctionID string          `json:"auction_id" binding:"required"`
	BidderID  string          `json:"bidder_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

type AuctionResponse struct {
	AuctionID    string `json:"auction_id"`
	ArtworkID    string `json:"artwork_id"`
	SellerID     string `json:"seller_id"`
	StartPrice   string `json:"start_price"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Status       string `json:"status"`
	WinningBidID string `json:"winning_bid_id,omitempty"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

// NewAuctionResponse converts an auction record to its API shape
func NewAuctionResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:    a.AuctionID,
		ArtworkID:    a.ArtworkID,
		SellerID:     a.SellerID,
		StartPrice:   a.StartPrice.String(),
		StartTime:    a.StartTime.UTC().Format(time.RFC3339),
		EndTime:      a.EndTime.UTC().Format(time.RFC3339),
		Status:       string(a.Status),
		WinningBidID: a.WinningBidID,
	}
}

// NewAuctionResponses converts a slice of auction records
func NewAuctionResponses(auctions []model.Auction) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, NewAuctionResponse(a))
	}
	return out
}

// NewBidResponse converts a bid record to its API shape
func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount.String(),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewBidResponses converts a slice of bid records
func NewBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, NewBidResponse(b))
	}
	return out
}
