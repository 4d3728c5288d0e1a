package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"art-auction/internal/auctionerrors"
	model "art-auction/internal/models"
)

// AuctionStore defines storage for auctions and their bid ledgers. The
// contract requires per-auction atomic read-modify-write: status evaluation,
// ledger append and highest-bid update for one auction are a single
// serialized operation. Implementations backed by external storage report
// transient failures as auctionerrors.ErrStorageUnavailable.
type AuctionStore interface {
	CreateAuction(auction model.Auction) error
	GetAuction(auctionID string, now time.Time) (model.Auction, error)
	ListAuctions(status model.AuctionStatus, now time.Time) ([]model.Auction, error)
	TransitionIfDue(auctionID string, now time.Time) (model.TransitionOutcome, error)
	AppendBid(bid model.Bid) error
	GetBidsByAuction(auctionID string) ([]model.Bid, error)
	GetHighestBid(auctionID string) (model.Bid, error)
	GetAuctionsByBidder(bidderID string) ([]model.Auction, error)
}

// auctionState holds one auction's record together with its bid ledger.
// Every mutation and status read goes through its mutex, so concurrent bids
// and clock-driven closings for the same auction are mutually exclusive
// while unrelated auctions proceed in parallel.
type auctionState struct {
	mu             sync.Mutex
	auction        model.Auction
	bids           []model.Bid
	highest        *model.Bid
	closeAnnounced bool
}

// advanceLocked moves the auction forward against now. Transitions are
// monotonic; an auction whose whole window elapsed while Pending passes
// through Active to Closed in the same call. Caller must hold mu.
func (s *auctionState) advanceLocked(now time.Time) {
	if s.auction.Status == model.StatusPending && !now.Before(s.auction.StartTime) {
		s.auction.Status = model.StatusActive
	}
	if s.auction.Status == model.StatusActive && !now.Before(s.auction.EndTime) {
		s.auction.Status = model.StatusClosed
		if s.highest != nil {
			s.auction.WinningBidID = s.highest.BidID
		}
	}
}

// appendBid validates and appends a bid as one serialized operation: lazy
// status advance, window check, floor check, append, highest-pointer update.
// A bid timestamped at or after the end of the window is rejected here even
// if no sweep has run yet.
func (s *auctionState) appendBid(bid model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.advanceLocked(bid.CreatedAt)

	if s.auction.Status != model.StatusActive {
		return fmt.Errorf("append bid for auction %s: status is %s: %w",
			bid.AuctionID, s.auction.Status, auctionerrors.ErrAuctionNotActive)
	}

	floor := s.auction.StartPrice
	if s.highest != nil {
		floor = s.highest.Amount
	}
	if !bid.Amount.GreaterThan(floor) {
		return fmt.Errorf("append bid for auction %s: amount %s does not exceed %s: %w",
			bid.AuctionID, bid.Amount, floor, auctionerrors.ErrBidTooLow)
	}

	s.bids = append(s.bids, bid)
	leader := bid
	s.highest = &leader

	return nil
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[string]*auctionState

	bidderMu       sync.Mutex
	bidderAuctions map[string][]string // key: bidderID -> value: auctionIDs the bidder has bid on
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions:       make(map[string]*auctionState),
		bidderAuctions: make(map[string][]string),
	}
}

// CreateAuction stores a new auction record
func (r *MemoryStore) CreateAuction(auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.AuctionID]; ok {
		return fmt.Errorf("create auction %s: auction already exists", auction.AuctionID)
	}
	r.auctions[auction.AuctionID] = &auctionState{auction: auction}
	return nil
}

func (r *MemoryStore) state(auctionID string) (*auctionState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return st, nil
}

// GetAuction returns the auction with its status advanced against now
func (r *MemoryStore) GetAuction(auctionID string, now time.Time) (model.Auction, error) {
	st, err := r.state(auctionID)
	if err != nil {
		return model.Auction{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.advanceLocked(now)
	return st.auction, nil
}

// ListAuctions returns auctions with status advanced against now, optionally
// filtered by status. An empty status returns all auctions.
func (r *MemoryStore) ListAuctions(status model.AuctionStatus, now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	states := make([]*auctionState, 0, len(r.auctions))
	for _, st := range r.auctions {
		states = append(states, st)
	}
	r.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(states))
	for _, st := range states {
		st.mu.Lock()
		st.advanceLocked(now)
		a := st.auction
		st.mu.Unlock()

		if status == "" || a.Status == status {
			auctions = append(auctions, a)
		}
	}

	sort.Slice(auctions, func(i, j int) bool {
		if !auctions[i].StartTime.Equal(auctions[j].StartTime) {
			return auctions[i].StartTime.Before(auctions[j].StartTime)
		}
		return auctions[i].AuctionID < auctions[j].AuctionID
	})
	return auctions, nil
}

// TransitionIfDue advances the auction against now. ClosedNow is reported
// exactly once per auction, on the first call that observes the Closed
// state, regardless of whether this call or a lazy bid-path advance
// performed the transition.
func (r *MemoryStore) TransitionIfDue(auctionID string, now time.Time) (model.TransitionOutcome, error) {
	st, err := r.state(auctionID)
	if err != nil {
		return model.TransitionOutcome{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.advanceLocked(now)
	out := model.TransitionOutcome{Auction: st.auction}
	if st.auction.Status == model.StatusClosed && !st.closeAnnounced {
		st.closeAnnounced = true
		out.ClosedNow = true
		if st.highest != nil {
			winner := *st.highest
			out.WinningBid = &winner
		}
	}
	return out, nil
}

// AppendBid records a bid after validating it against the auction's window
// and current floor, all under the auction's lock.
func (r *MemoryStore) AppendBid(bid model.Bid) error {
	st, err := r.state(bid.AuctionID)
	if err != nil {
		return err
	}

	if err := st.appendBid(bid); err != nil {
		return err
	}

	// Index update happens outside the auction lock; the index is a
	// convenience view, not part of the ledger's atomicity contract.
	r.noteBidder(bid.BidderID, bid.AuctionID)
	return nil
}

func (r *MemoryStore) noteBidder(bidderID, auctionID string) {
	r.bidderMu.Lock()
	defer r.bidderMu.Unlock()

	for _, id := range r.bidderAuctions[bidderID] {
		if id == auctionID {
			return
		}
	}
	r.bidderAuctions[bidderID] = append(r.bidderAuctions[bidderID], auctionID)
}

// GetBidsByAuction returns all accepted bids for an auction in acceptance order
func (r *MemoryStore) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	st, err := r.state(auctionID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return append([]model.Bid(nil), st.bids...), nil
}

// GetHighestBid returns the current leading bid for an auction
func (r *MemoryStore) GetHighestBid(auctionID string) (model.Bid, error) {
	st, err := r.state(auctionID)
	if err != nil {
		return model.Bid{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.highest == nil {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return *st.highest, nil
}

// GetAuctionsByBidder returns all auctions a bidder has placed bids on
func (r *MemoryStore) GetAuctionsByBidder(bidderID string) ([]model.Auction, error) {
	r.bidderMu.Lock()
	auctionIDs := append([]string(nil), r.bidderAuctions[bidderID]...)
	r.bidderMu.Unlock()

	if len(auctionIDs) == 0 {
		return nil, fmt.Errorf("get auctions for bidder %s: %w", bidderID, auctionerrors.ErrBidderNoBids)
	}

	auctions := make([]model.Auction, 0, len(auctionIDs))
	for _, id := range auctionIDs {
		st, err := r.state(id)
		if err != nil {
			continue
		}
		st.mu.Lock()
		auctions = append(auctions, st.auction)
		st.mu.Unlock()
	}
	return auctions, nil
}
