// Package auctionengine runs the negotiation state machine: it admits
// auction requests one at a time, drives the English, Dutch, and blind
// round protocols off a shared tick, and resolves winners. Everything else
// in the system talks to it through its mailbox.
package auctionengine

import (
	"fmt"
	"os"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"code.cloudfoundry.org/workpool"
	"github.com/google/uuid"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
)

type Engine struct {
	logger   lager.Logger
	registry *communication.Registry
	clock    clock.Clock
	config   Config

	workPool *workpool.WorkPool
	mailbox  *communication.Mailbox

	auctions map[string]*AuctionRecord
	active   *AuctionRecord

	// pending holds raw new-auction requests in admission order; at most
	// one record is active while anything waits here
	pending []communication.Message

	blindTimer clock.Timer
}

func New(logger lager.Logger, registry *communication.Registry, clk clock.Clock, config Config) (*Engine, error) {
	workPool, err := workpool.NewWorkPool(config.WorkPoolSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		logger:   logger.Session("auction-engine"),
		registry: registry,
		clock:    clk,
		config:   config,
		workPool: workPool,
		auctions: map[string]*AuctionRecord{},
	}, nil
}

func (e *Engine) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	mailbox, err := e.registry.Claim(communication.EngineName)
	if err != nil {
		return err
	}
	e.mailbox = mailbox
	defer e.registry.Release(communication.EngineName)
	defer e.workPool.Stop()

	ticker := e.clock.NewTicker(e.config.TickInterval)
	defer ticker.Stop()

	close(ready)
	e.logger.Info("started")

	for {
		var blindFire <-chan time.Time
		if e.blindTimer != nil {
			blindFire = e.blindTimer.C()
		}

		select {
		case msg := <-e.mailbox.Chan():
			e.handleMessage(msg)
		case <-ticker.C():
			e.onTick()
		case <-blindFire:
			e.runBlindRound()
		case <-signals:
			e.logger.Info("exited")
			return nil
		}
	}
}

func (e *Engine) handleMessage(msg communication.Message) {
	switch msg.Intent {
	case communication.NewAuction:
		if e.active != nil {
			e.pending = append(e.pending, msg)
			e.logger.Info("auction-queued", lager.Data{"seller": msg.Sender, "queued": len(e.pending)})
			return
		}
		e.startAuction(msg)

	case communication.Register:
		e.register(msg)

	case communication.Deregister:
		e.deregister(msg)

	case communication.Proposal:
		if msg.Human {
			e.applyHumanBid(msg)
			return
		}
		e.stashEarlyBlindBid(msg)
	}
}

func (e *Engine) register(msg communication.Message) {
	ai, found := e.auctions[msg.Content]
	if !found || !ai.Active {
		return
	}

	ai.Bidders[msg.Sender] = struct{}{}
	e.emitReputation(communication.BuyerOf(msg.Sender), auctiontypes.EventJoined)
	e.logger.Info("bidder-registered", lager.Data{"auction": ai.ID, "bidder": msg.Sender})
}

func (e *Engine) deregister(msg communication.Message) {
	ai, found := e.auctions[msg.Content]
	if !found {
		return
	}
	if _, present := ai.Bidders[msg.Sender]; !present {
		return
	}

	delete(ai.Bidders, msg.Sender)
	e.emitReputation(communication.BuyerOf(msg.Sender), auctiontypes.EventEarlyExit)
	e.logger.Info("bidder-left", lager.Data{
		"auction":   ai.ID,
		"bidder":    msg.Sender,
		"remaining": len(ai.Bidders),
	})
}

// applyHumanBid is the out-of-band path for bids placed on the human
// bidding surface. English and Dutch raises apply immediately; blind bids
// are sealed alongside the computed ones.
func (e *Engine) applyHumanBid(msg communication.Message) {
	ai, found := e.auctions[msg.Auction]
	if !found {
		ai = e.active
	}
	if ai == nil || !ai.Active {
		return
	}

	bid, err := auctiontypes.ParsePrice(msg.Content)
	if err != nil {
		e.logger.Error("dropping-malformed-bid", err, lager.Data{"sender": msg.Sender})
		return
	}

	if ai.Kind == auctiontypes.Blind {
		ai.stashSealedBid(msg.Sender, bid)
		e.logger.Info("sealed-human-bid", lager.Data{"auction": ai.ID, "sender": msg.Sender})
		return
	}

	if bid > ai.CurrentPrice {
		ai.CurrentPrice = bid
		ai.HighestBidder = msg.Sender
		ai.FinalWinner = msg.Sender
	}
}

// stashEarlyBlindBid retains computed bids that arrive before the blind
// call-for-proposals goes out. Only registered bidders are sealed here.
func (e *Engine) stashEarlyBlindBid(msg communication.Message) {
	ai := e.active
	if ai == nil || !ai.Active || ai.Kind != auctiontypes.Blind {
		return
	}
	if _, registered := ai.Bidders[msg.Sender]; !registered {
		return
	}

	bid, err := auctiontypes.ParsePrice(msg.Content)
	if err != nil {
		e.logger.Error("dropping-malformed-bid", err, lager.Data{"sender": msg.Sender})
		return
	}
	ai.stashSealedBid(msg.Sender, bid)
}

func (e *Engine) startAuction(msg communication.Message) bool {
	meta, err := auctiontypes.ParseItemMetadata(msg.Content)
	if err != nil {
		e.logger.Error("dropping-malformed-request", err, lager.Data{"seller": msg.Sender})
		return false
	}

	ai := newAuctionRecord(uuid.NewString(), msg.Sender, meta)
	e.auctions[ai.ID] = ai
	e.active = ai

	e.logger.Info("auction-started", lager.Data{
		"auction": ai.ID,
		"seller":  ai.Seller,
		"title":   meta.Title,
		"kind":    ai.Kind,
		"price":   ai.CurrentPrice,
	})

	announcement := auctiontypes.Announcement{AuctionID: ai.ID, Metadata: meta}.Encode()
	announce := communication.Message{
		Intent:  communication.Announce,
		Sender:  communication.EngineName,
		Auction: ai.ID,
		Content: announcement,
	}
	e.registry.Send(communication.RouterName, announce)
	e.registry.Send(communication.BidderObserver, announce)

	if ai.Kind == auctiontypes.Blind {
		e.blindTimer = e.clock.NewTimer(e.config.BlindAuctionDelay)
	}
	return true
}

// advanceQueue pops queued requests in FIFO order until one admits cleanly.
func (e *Engine) advanceQueue() {
	e.active = nil
	for len(e.pending) > 0 {
		next := e.pending[0]
		e.pending = e.pending[1:]
		if e.startAuction(next) {
			return
		}
	}
}

func (e *Engine) onTick() {
	ai := e.active
	if ai == nil || !ai.Active {
		return
	}
	if ai.Kind == auctiontypes.Blind {
		// blind auctions wait on their one-shot timer, not the tick
		return
	}

	ai.TotalRounds++

	if len(ai.Bidders) == 0 {
		e.closeWithoutBidders(ai)
		return
	}

	switch ai.Kind {
	case auctiontypes.English:
		e.runEnglishRound(ai)
	case auctiontypes.Dutch:
		e.runDutchRound(ai)
	}
}

func (e *Engine) closeWithoutBidders(ai *AuctionRecord) {
	ai.Active = false
	e.logger.Info("auction-abandoned", lager.Data{"auction": ai.ID})

	e.registry.Send(ai.Seller, communication.Message{
		Intent:  communication.Result,
		Sender:  communication.EngineName,
		Auction: ai.ID,
		Content: fmt.Sprintf("Auction %s closed: no more active bidders.", ai.ID),
	})
	e.advanceQueue()
}

// collectProposals is the blocking-with-deadline receive at the heart of
// every round: proposals go to the round handler, everything else takes the
// normal path (registrations land on the authoritative set, human bids
// apply out of band).
func (e *Engine) collectProposals(window time.Duration, handle func(communication.Message)) {
	timer := e.clock.NewTimer(window)
	defer timer.Stop()

	for {
		select {
		case msg := <-e.mailbox.Chan():
			if msg.Intent == communication.Proposal && !msg.Human {
				handle(msg)
				continue
			}
			e.handleMessage(msg)
		case <-timer.C():
			return
		}
	}
}

func (e *Engine) broadcastCall(ai *AuctionRecord, recipients []string) {
	content := auctiontypes.FormatPrice(ai.CurrentPrice)

	wg := &sync.WaitGroup{}
	wg.Add(len(recipients))
	for _, recipient := range recipients {
		recipient := recipient
		e.workPool.Submit(func() {
			defer wg.Done()
			e.registry.Send(recipient, communication.Message{
				Intent:  communication.CallForProposal,
				Sender:  communication.EngineName,
				Auction: ai.ID,
				Content: content,
			})
		})
	}
	wg.Wait()
}

func (e *Engine) emitReputation(buyer string, event auctiontypes.ReputationEvent) {
	e.registry.Send(communication.LedgerName, communication.Message{
		Intent:  communication.ReputationUpdate,
		Sender:  communication.EngineName,
		Content: auctiontypes.EncodeReputationUpdate(buyer, event),
	})
}
