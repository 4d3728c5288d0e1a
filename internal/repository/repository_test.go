package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"art-auction/internal/auctionerrors"
	model "art-auction/internal/models"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Helper to create a new Auction starting at baseTime
func newAuction(auctionID string, startPrice int64, window time.Duration) model.Auction {
	return model.Auction{
		AuctionID:  auctionID,
		ArtworkID:  fmt.Sprintf("artwork-%s", auctionID),
		SellerID:   "seller1",
		StartPrice: decimal.NewFromInt(startPrice),
		StartTime:  baseTime,
		EndTime:    baseTime.Add(window),
		Status:     model.StatusPending,
		CreatedAt:  baseTime.Add(-time.Hour),
	}
}

// Helper to create a new Bid
func newBid(bidID, auctionID, bidderID string, amount int64, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     bidID,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    decimal.NewFromInt(amount),
		CreatedAt: createdAt,
	}
}

func seededStore(t *testing.T, auctions ...model.Auction) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	for _, a := range auctions {
		require.NoError(t, store.CreateAuction(a))
	}
	return store
}

// Test CreateAuction
func TestMemoryStore_CreateAuction(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	auction := newAuction("auction1", 100, 10*time.Minute)

	require.NoError(t, store.CreateAuction(auction))

	got, err := store.GetAuction("auction1", baseTime.Add(-time.Minute))
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, got.Status)
	require.True(t, got.StartPrice.Equal(decimal.NewFromInt(100)))

	// duplicate IDs are refused
	require.Error(t, store.CreateAuction(auction))

	_, err = store.GetAuction("missing", baseTime)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

// Test status evaluation against the clock
func TestMemoryStore_StatusAdvances(t *testing.T) {
	t.Parallel()

	store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))

	tests := []struct {
		name       string
		now        time.Time
		wantStatus model.AuctionStatus
	}{
		{name: "before_start", now: baseTime.Add(-time.Second), wantStatus: model.StatusPending},
		{name: "at_start", now: baseTime, wantStatus: model.StatusActive},
		{name: "mid_window", now: baseTime.Add(5 * time.Minute), wantStatus: model.StatusActive},
		{name: "just_before_end", now: baseTime.Add(10*time.Minute - time.Nanosecond), wantStatus: model.StatusActive},
		{name: "at_end", now: baseTime.Add(10 * time.Minute), wantStatus: model.StatusClosed},
		{name: "after_end", now: baseTime.Add(time.Hour), wantStatus: model.StatusClosed},
	}

	// cases are ordered in time; statuses must only move forward
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.GetAuction("auction1", tc.now)
			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, got.Status)
		})
	}
}

// Test that transitions never reverse once an auction is closed
func TestMemoryStore_TransitionsAreMonotonic(t *testing.T) {
	t.Parallel()

	store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))

	_, err := store.TransitionIfDue("auction1", baseTime.Add(time.Hour))
	require.NoError(t, err)

	// reading with an earlier clock must not move the auction back
	got, err := store.GetAuction("auction1", baseTime.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, model.StatusClosed, got.Status)

	// and a stale bid timestamp cannot reopen the window
	err = store.AppendBid(newBid("late", "auction1", "user1", 500, baseTime.Add(time.Minute)))
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotActive)
}

// Test AppendBid
func TestMemoryStore_AppendBid(t *testing.T) {
	t.Parallel()

	active := baseTime.Add(time.Minute)

	tests := []struct {
		name      string
		seed      []model.Bid
		bid       model.Bid
		wantError error
	}{
		{
			name: "first_bid_above_start_price",
			bid:  newBid("b1", "auction1", "user1", 120, active),
		},
		{
			name:      "first_bid_below_start_price",
			bid:       newBid("b1", "auction1", "user1", 80, active),
			wantError: auctionerrors.ErrBidTooLow,
		},
		{
			name:      "first_bid_equal_to_start_price",
			bid:       newBid("b1", "auction1", "user1", 100, active),
			wantError: auctionerrors.ErrBidTooLow,
		},
		{
			name: "overbid_accepted",
			seed: []model.Bid{newBid("b1", "auction1", "user1", 120, active)},
			bid:  newBid("b2", "auction1", "user2", 150, active.Add(time.Second)),
		},
		{
			name:      "equal_to_highest_rejected",
			seed:      []model.Bid{newBid("b1", "auction1", "user1", 120, active)},
			bid:       newBid("b2", "auction1", "user2", 120, active.Add(time.Second)),
			wantError: auctionerrors.ErrBidTooLow,
		},
		{
			name:      "below_highest_rejected",
			seed:      []model.Bid{newBid("b1", "auction1", "user1", 120, active)},
			bid:       newBid("b2", "auction1", "user2", 110, active.Add(time.Second)),
			wantError: auctionerrors.ErrBidTooLow,
		},
		{
			name: "self_rebid_allowed",
			seed: []model.Bid{newBid("b1", "auction1", "user1", 120, active)},
			bid:  newBid("b2", "auction1", "user1", 130, active.Add(time.Second)),
		},
		{
			name:      "before_window_rejected",
			bid:       newBid("b1", "auction1", "user1", 120, baseTime.Add(-time.Second)),
			wantError: auctionerrors.ErrAuctionNotActive,
		},
		{
			name:      "at_closing_instant_rejected",
			bid:       newBid("b1", "auction1", "user1", 120, baseTime.Add(10*time.Minute)),
			wantError: auctionerrors.ErrAuctionNotActive,
		},
		{
			name:      "after_window_rejected",
			bid:       newBid("b1", "auction1", "user1", 120, baseTime.Add(11*time.Minute)),
			wantError: auctionerrors.ErrAuctionNotActive,
		},
		{
			name:      "unknown_auction",
			bid:       newBid("b1", "missing", "user1", 120, active),
			wantError: auctionerrors.ErrAuctionNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))
			for _, b := range tc.seed {
				require.NoError(t, store.AppendBid(b))
			}

			err := store.AppendBid(tc.bid)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}
			require.NoError(t, err)

			highest, err := store.GetHighestBid("auction1")
			require.NoError(t, err)
			require.Equal(t, tc.bid.BidID, highest.BidID)
		})
	}
}

// Test the highest-bid pointer stays consistent with the ledger
func TestMemoryStore_HighestBidTracksLedger(t *testing.T) {
	t.Parallel()

	store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))

	_, err := store.GetHighestBid("auction1")
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)

	_, err = store.GetBidsByAuction("auction1")
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)

	active := baseTime.Add(time.Minute)
	for i, amount := range []int64{110, 125, 300} {
		bid := newBid(fmt.Sprintf("b%d", i), "auction1", "user1", amount, active.Add(time.Duration(i)*time.Second))
		require.NoError(t, store.AppendBid(bid))

		highest, err := store.GetHighestBid("auction1")
		require.NoError(t, err)
		require.True(t, highest.Amount.Equal(bid.Amount))

		bids, err := store.GetBidsByAuction("auction1")
		require.NoError(t, err)
		require.Len(t, bids, i+1)
	}
}

// Test accepted amounts are strictly increasing under concurrent submission
func TestMemoryStore_ConcurrentBidsStrictlyIncrease(t *testing.T) {
	t.Parallel()

	store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))
	active := baseTime.Add(time.Minute)

	const bidders = 50
	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bid := newBid(fmt.Sprintf("b%d", i), "auction1", fmt.Sprintf("user%d", i), int64(101+i), active)
			err := store.AppendBid(bid)
			if err != nil {
				// rejections must always be BidTooLow here, never a partial write
				if !errors.Is(err, auctionerrors.ErrBidTooLow) {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	bids, err := store.GetBidsByAuction("auction1")
	require.NoError(t, err)
	require.NotEmpty(t, bids)

	for i := 1; i < len(bids); i++ {
		require.True(t, bids[i].Amount.GreaterThan(bids[i-1].Amount),
			"accepted bids must strictly increase: %s then %s", bids[i-1].Amount, bids[i].Amount)
	}

	highest, err := store.GetHighestBid("auction1")
	require.NoError(t, err)
	require.True(t, highest.Amount.Equal(bids[len(bids)-1].Amount))
}

// Test two racing bids of 130 and 140 never end with 130 leading and never
// both accepted at the same floor
func TestMemoryStore_ConcurrentRace130vs140(t *testing.T) {
	t.Parallel()

	active := baseTime.Add(time.Minute)

	for round := 0; round < 100; round++ {
		store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))

		var wg sync.WaitGroup
		results := make([]error, 2)
		amounts := []int64{130, 140}
		for i, amount := range amounts {
			wg.Add(1)
			go func(i int, amount int64) {
				defer wg.Done()
				results[i] = store.AppendBid(newBid(fmt.Sprintf("bid-%d", amount), "auction1", fmt.Sprintf("user%d", i+1), amount, active))
			}(i, amount)
		}
		wg.Wait()

		// 140 must always be accepted; 130 is accepted only when it won the
		// serialization order, in which case the ledger is 130 then 140
		require.NoError(t, results[1], "140 must never be rejected")

		highest, err := store.GetHighestBid("auction1")
		require.NoError(t, err)
		require.True(t, highest.Amount.Equal(decimal.NewFromInt(140)), "highest must be 140, got %s", highest.Amount)

		bids, err := store.GetBidsByAuction("auction1")
		require.NoError(t, err)
		if results[0] != nil {
			require.ErrorIs(t, results[0], auctionerrors.ErrBidTooLow)
			require.Len(t, bids, 1)
		} else {
			require.Len(t, bids, 2)
			require.True(t, bids[0].Amount.Equal(decimal.NewFromInt(130)))
		}
	}
}

// Test the closing boundary: bids timestamped at or after the end instant are
// rejected even while the sweep races them
func TestMemoryStore_ClosingBoundary(t *testing.T) {
	t.Parallel()

	end := baseTime.Add(10 * time.Minute)

	for round := 0; round < 50; round++ {
		store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))
		require.NoError(t, store.AppendBid(newBid("early", "auction1", "user1", 150, baseTime.Add(time.Minute))))

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			_, err := store.TransitionIfDue("auction1", end)
			require.NoError(t, err)
		}()

		var bidErr error
		go func() {
			defer wg.Done()
			bidErr = store.AppendBid(newBid("boundary", "auction1", "user2", 500, end))
		}()

		wg.Wait()

		require.ErrorIs(t, bidErr, auctionerrors.ErrAuctionNotActive)

		got, err := store.GetAuction("auction1", end)
		require.NoError(t, err)
		require.Equal(t, model.StatusClosed, got.Status)
		require.Equal(t, "early", got.WinningBidID)
	}
}

// Test TransitionIfDue reports a close exactly once
func TestMemoryStore_TransitionIfDueAnnouncesOnce(t *testing.T) {
	t.Parallel()

	store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))
	require.NoError(t, store.AppendBid(newBid("b1", "auction1", "user1", 150, baseTime.Add(time.Minute))))

	// before the end: no close
	out, err := store.TransitionIfDue("auction1", baseTime.Add(5*time.Minute))
	require.NoError(t, err)
	require.False(t, out.ClosedNow)
	require.Equal(t, model.StatusActive, out.Auction.Status)

	const sweepers = 20
	var wg sync.WaitGroup
	announced := make(chan model.TransitionOutcome, sweepers)
	for i := 0; i < sweepers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := store.TransitionIfDue("auction1", baseTime.Add(11*time.Minute))
			require.NoError(t, err)
			if out.ClosedNow {
				announced <- out
			}
		}()
	}
	wg.Wait()
	close(announced)

	outs := make([]model.TransitionOutcome, 0, 1)
	for o := range announced {
		outs = append(outs, o)
	}
	require.Len(t, outs, 1, "close must be announced exactly once")
	require.NotNil(t, outs[0].WinningBid)
	require.Equal(t, "b1", outs[0].WinningBid.BidID)
}

// Test a close observed lazily by the bid path is still announced by the sweep
func TestMemoryStore_LazyCloseStillAnnounced(t *testing.T) {
	t.Parallel()

	store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))
	require.NoError(t, store.AppendBid(newBid("b1", "auction1", "user1", 150, baseTime.Add(time.Minute))))

	// the bid path closes the auction before any sweep has run
	err := store.AppendBid(newBid("late", "auction1", "user2", 200, baseTime.Add(15*time.Minute)))
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotActive)

	out, err := store.TransitionIfDue("auction1", baseTime.Add(16*time.Minute))
	require.NoError(t, err)
	require.True(t, out.ClosedNow, "sweep must still announce the lazy close")
	require.NotNil(t, out.WinningBid)
	require.Equal(t, "b1", out.WinningBid.BidID)
}

// Test an auction closing without bids
func TestMemoryStore_CloseWithoutBids(t *testing.T) {
	t.Parallel()

	store := seededStore(t, newAuction("auction1", 100, 10*time.Minute))

	out, err := store.TransitionIfDue("auction1", baseTime.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, out.ClosedNow)
	require.Nil(t, out.WinningBid)
	require.Empty(t, out.Auction.WinningBidID)
}

// Test ListAuctions filtering and ordering
func TestMemoryStore_ListAuctions(t *testing.T) {
	t.Parallel()

	early := newAuction("auction1", 100, 5*time.Minute)
	late := newAuction("auction2", 100, 30*time.Minute)
	late.StartTime = baseTime.Add(20 * time.Minute)
	late.EndTime = baseTime.Add(50 * time.Minute)

	store := seededStore(t, early, late)
	now := baseTime.Add(10 * time.Minute) // auction1 closed, auction2 pending

	all, err := store.ListAuctions("", now)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "auction1", all[0].AuctionID, "sorted by start time")

	closed, err := store.ListAuctions(model.StatusClosed, now)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	require.Equal(t, "auction1", closed[0].AuctionID)

	pending, err := store.ListAuctions(model.StatusPending, now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "auction2", pending[0].AuctionID)

	active, err := store.ListAuctions(model.StatusActive, now)
	require.NoError(t, err)
	require.Empty(t, active)
}

// Test GetAuctionsByBidder
func TestMemoryStore_GetAuctionsByBidder(t *testing.T) {
	t.Parallel()

	store := seededStore(t,
		newAuction("auction1", 100, 10*time.Minute),
		newAuction("auction2", 50, 10*time.Minute),
	)
	active := baseTime.Add(time.Minute)

	_, err := store.GetAuctionsByBidder("user1")
	require.ErrorIs(t, err, auctionerrors.ErrBidderNoBids)

	require.NoError(t, store.AppendBid(newBid("b1", "auction1", "user1", 150, active)))
	require.NoError(t, store.AppendBid(newBid("b2", "auction2", "user1", 60, active)))
	require.NoError(t, store.AppendBid(newBid("b3", "auction1", "user1", 200, active.Add(time.Second))))

	auctions, err := store.GetAuctionsByBidder("user1")
	require.NoError(t, err)
	require.Len(t, auctions, 2, "re-bids on the same auction are not double counted")
}
