package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrArtworkNotFound    = errors.New("artwork not found")
	ErrNoBids             = errors.New("no bids found for auction")
	ErrBidderNoBids       = errors.New("bidder has not placed any bids")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// business logic errors
var (
	ErrInvalidBid       = errors.New("invalid bid")
	ErrInvalidAuction   = errors.New("invalid auction details")
	ErrBidTooLow        = errors.New("bid amount too low")
	ErrInvalidWindow    = errors.New("invalid auction window")
	ErrAuctionNotActive = errors.New("auction not active")
)
