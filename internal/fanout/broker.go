package fanout

import (
	"sync"

	model "art-auction/internal/models"
	"art-auction/utils"
)

// EventKind identifies the kind of auction event being broadcast
type EventKind string

const (
	EventBidAccepted   EventKind = "bid_accepted"
	EventAuctionClosed EventKind = "auction_closed"
)

// Event is one auction update pushed to subscribers. For bid_accepted, Bid is
// the newly accepted bid; for auction_closed, Bid is the winning bid and is
// absent when the auction closed without bids.
type Event struct {
	Kind      EventKind  `json:"kind"`
	AuctionID string     `json:"auction_id"`
	Bid       *model.Bid `json:"bid,omitempty"`
}

// BidAccepted builds the event for a newly accepted bid
func BidAccepted(bid model.Bid) Event {
	b := bid
	return Event{Kind: EventBidAccepted, AuctionID: bid.AuctionID, Bid: &b}
}

// AuctionClosed builds the event for a closed auction; winning may be nil
func AuctionClosed(auctionID string, winning *model.Bid) Event {
	return Event{Kind: EventAuctionClosed, AuctionID: auctionID, Bid: winning}
}

// Subscription is one observer's event feed for a single auction. C is closed
// on Unsubscribe; the subscriber must drain it until closed.
type Subscription struct {
	C         chan Event
	auctionID string
}

// Broker distributes auction events to per-auction subscriber sets. Delivery
// is best-effort and at-most-once: a subscriber whose buffer is full misses
// the event, so a slow consumer never stalls publishing.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
}

// NewBroker creates a broker whose subscriptions buffer up to buffer events
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers an observer for one auction's events
func (b *Broker) Subscribe(auctionID string) *Subscription {
	sub := &Subscription{
		C:         make(chan Event, b.buffer),
		auctionID: auctionID,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[auctionID] == nil {
		b.subs[auctionID] = make(map[*Subscription]struct{})
	}
	b.subs[auctionID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscription and closes its channel. Safe to call
// at most once per subscription.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[sub.auctionID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.auctionID)
	}
	close(sub.C)
}

// Publish delivers the event to every subscriber of its auction without
// blocking. Events are dropped for subscribers whose buffers are full.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[ev.AuctionID] {
		select {
		case sub.C <- ev:
		default:
			utils.Warn("fanout: dropping event for slow subscriber", map[string]any{
				"auction_id": ev.AuctionID,
				"kind":       string(ev.Kind),
			})
		}
	}
}

// SubscriberCount reports how many observers follow an auction
func (b *Broker) SubscriberCount(auctionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[auctionID])
}
