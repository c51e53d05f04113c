// Package negotiator implements the short-lived bidding unit a buyer
// spawns for one auction. A negotiator claims its composite identity,
// registers with the engine, plays its strategy against the round protocol,
// and tears itself down after its terminal decision.
package negotiator

import (
	"os"

	"code.cloudfoundry.org/lager/v3"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
	"github.com/m-rau5/mas-book-auction/strategies"
)

// Snapshot is the buyer state frozen at spawn time. Budget here is the
// buyer's remaining budget at that instant; the buyer itself settles wins.
type Snapshot struct {
	AuctionID  string
	Metadata   auctiontypes.ItemMetadata
	BuyerName  string
	StartPrice float64
	Budget     float64
}

type Negotiator struct {
	logger   lager.Logger
	registry *communication.Registry
	strategy strategies.Strategy

	snapshot Snapshot
	name     string
	mailbox  *communication.Mailbox

	lastOwnBid     float64
	dutchThreshold float64
}

// New claims the negotiator's identity immediately, so a second spawn for
// the same (buyer, auction) pair fails here instead of racing later.
func New(logger lager.Logger, registry *communication.Registry, snapshot Snapshot, strategy strategies.Strategy) (*Negotiator, error) {
	name := communication.BidderName(snapshot.BuyerName, snapshot.AuctionID)
	mailbox, err := registry.Claim(name)
	if err != nil {
		return nil, err
	}

	return &Negotiator{
		logger:     logger.Session("negotiator", lager.Data{"name": name}),
		registry:   registry,
		strategy:   strategy,
		snapshot:   snapshot,
		name:       name,
		mailbox:    mailbox,
		lastOwnBid: -1,
	}, nil
}

func (n *Negotiator) Name() string { return n.name }

func (n *Negotiator) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	defer n.registry.Release(n.name)

	n.registry.Send(communication.EngineName, communication.Message{
		Intent:  communication.Register,
		Sender:  n.name,
		Content: n.snapshot.AuctionID,
	})

	// the Dutch acceptance threshold is fixed once, off the start price
	if n.snapshot.Metadata.Kind == auctiontypes.Dutch {
		n.dutchThreshold = n.strategy.CalculateBid(n.snapshot.StartPrice, n.snapshot.Budget)
	}

	close(ready)
	n.logger.Info("bidding", lager.Data{
		"auction": n.snapshot.AuctionID,
		"kind":    n.snapshot.Metadata.Kind,
		"budget":  n.snapshot.Budget,
	})

	for {
		select {
		case msg := <-n.mailbox.Chan():
			if done := n.handle(msg); done {
				return nil
			}
		case <-signals:
			return nil
		}
	}
}

// handle reacts to one message; returning true is the terminal decision.
func (n *Negotiator) handle(msg communication.Message) bool {
	switch msg.Intent {
	case communication.Cancel:
		n.logger.Info("cancelled", lager.Data{"auction": n.snapshot.AuctionID})
		return true

	case communication.CallForProposal:
		offered, err := auctiontypes.ParsePrice(msg.Content)
		if err != nil {
			n.logger.Error("dropping-malformed-call", err)
			return false
		}

		switch n.snapshot.Metadata.Kind {
		case auctiontypes.Blind:
			return n.bidBlind(offered)
		case auctiontypes.Dutch:
			return n.bidDutch(offered)
		default:
			return n.bidEnglish(offered)
		}
	}
	return false
}

// bidBlind makes exactly one decision: seal a bid if the strategy produces
// a usable one, then terminate either way.
func (n *Negotiator) bidBlind(announcedPrice float64) bool {
	bid := n.strategy.CalculateBid(announcedPrice, n.snapshot.Budget)
	if bid > 0 && bid <= n.snapshot.Budget {
		n.propose(auctiontypes.FormatPrice(bid))
		n.logger.Info("sealed-bid-placed", lager.Data{"bid": bid})
	} else {
		n.logger.Info("skipped-blind-auction", lager.Data{"calculated": bid})
	}
	return true
}

// bidDutch accepts as soon as the falling price reaches the threshold
// fixed at spawn time; until then it just keeps waiting for a lower call.
func (n *Negotiator) bidDutch(offeredPrice float64) bool {
	if offeredPrice > n.dutchThreshold {
		return false
	}

	n.propose(auctiontypes.Acceptance{Price: offeredPrice, Threshold: n.dutchThreshold}.Encode())
	n.logger.Info("accepted", lager.Data{"price": offeredPrice, "threshold": n.dutchThreshold})
	return true
}

func (n *Negotiator) bidEnglish(offeredPrice float64) bool {
	// already leading; nothing to do
	if n.lastOwnBid == offeredPrice {
		return false
	}

	bid := n.strategy.CalculateBid(offeredPrice, n.snapshot.Budget)
	if bid > offeredPrice && bid <= n.snapshot.Budget {
		n.lastOwnBid = bid
		n.propose(auctiontypes.FormatPrice(bid))
		n.logger.Info("raised", lager.Data{"bid": bid, "over": offeredPrice})
		return false
	}

	// can't beat the price; leave for good
	n.registry.Send(communication.EngineName, communication.Message{
		Intent:  communication.Deregister,
		Sender:  n.name,
		Content: n.snapshot.AuctionID,
	})
	n.logger.Info("withdrew", lager.Data{"calculated": bid, "price": offeredPrice})
	return true
}

func (n *Negotiator) propose(content string) {
	n.registry.Send(communication.EngineName, communication.Message{
		Intent:  communication.Proposal,
		Sender:  n.name,
		Auction: n.snapshot.AuctionID,
		Content: content,
	})
}
