package auctionengine

import (
	"sort"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
)

// AuctionRecord is the engine's private state for one admitted auction.
// Only the engine goroutine touches it.
type AuctionRecord struct {
	ID       string
	Seller   string
	Metadata auctiontypes.ItemMetadata
	Kind     auctiontypes.AuctionKind

	CurrentPrice  float64
	HighestBidder string
	FinalWinner   string

	Bidders map[string]struct{}
	Active  bool

	TotalRounds        int
	RoundsWithoutRaise int

	// sealed bids for blind auctions: one retained bid per sender, with
	// first-arrival order kept for tie-breaking
	sealedBids  map[string]float64
	sealedOrder []string
}

func newAuctionRecord(id, seller string, meta auctiontypes.ItemMetadata) *AuctionRecord {
	return &AuctionRecord{
		ID:           id,
		Seller:       seller,
		Metadata:     meta,
		Kind:         meta.Kind,
		CurrentPrice: meta.StartingPrice,
		Bidders:      map[string]struct{}{},
		Active:       true,
		sealedBids:   map[string]float64{},
	}
}

// snapshotBidders freezes the bidder set for one round's fan-out.
// Registrations landing mid-round change the authoritative set only.
func (ai *AuctionRecord) snapshotBidders() []string {
	snapshot := make([]string, 0, len(ai.Bidders))
	for bidder := range ai.Bidders {
		snapshot = append(snapshot, bidder)
	}
	sort.Strings(snapshot)
	return snapshot
}

func (ai *AuctionRecord) stashSealedBid(sender string, bid float64) {
	if _, seen := ai.sealedBids[sender]; !seen {
		ai.sealedOrder = append(ai.sealedOrder, sender)
	}
	ai.sealedBids[sender] = bid
}

// bestSealedBid picks the strictly highest sealed bid; earlier arrivals win
// ties. Empty winner means nobody bid.
func (ai *AuctionRecord) bestSealedBid() (string, float64) {
	winner, best := "", -1.0
	for _, sender := range ai.sealedOrder {
		if bid := ai.sealedBids[sender]; bid > best {
			winner, best = sender, bid
		}
	}
	return winner, best
}
