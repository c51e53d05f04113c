package auctionengine

import (
	"code.cloudfoundry.org/lager/v3"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
)

func (e *Engine) runEnglishRound(ai *AuctionRecord) {
	snapshot := ai.snapshotBidders()

	recipients := make([]string, 0, len(snapshot))
	for _, bidder := range snapshot {
		// a sole remaining bidder that already leads gets no call
		if len(ai.Bidders) == 1 && bidder == ai.HighestBidder {
			continue
		}
		recipients = append(recipients, bidder)
	}
	e.broadcastCall(ai, recipients)

	gotRaise := false
	e.collectProposals(e.config.EnglishWindow, func(msg communication.Message) {
		offered, err := auctiontypes.ParsePrice(msg.Content)
		if err != nil {
			e.logger.Error("dropping-malformed-bid", err, lager.Data{"sender": msg.Sender})
			return
		}
		// last valid raise within the window wins; arrival order is the
		// only tie-break
		if offered > ai.CurrentPrice {
			ai.CurrentPrice = offered
			ai.HighestBidder = msg.Sender
			ai.FinalWinner = msg.Sender
			gotRaise = true
		}
	})

	if !gotRaise || len(ai.Bidders) == 1 || ai.TotalRounds >= e.config.MaxRounds {
		ai.RoundsWithoutRaise++
		if ai.RoundsWithoutRaise >= e.config.MaxQuietRounds {
			e.resolveEnglish(ai)
		}
		return
	}

	ai.RoundsWithoutRaise = 0
	ai.HighestBidder = ""
}

func (e *Engine) resolveEnglish(ai *AuctionRecord) {
	ai.Active = false

	// a sole registered bidder that never had to raise still takes the
	// item at the standing price
	if ai.FinalWinner == "" && len(ai.Bidders) == 1 {
		for bidder := range ai.Bidders {
			ai.FinalWinner = bidder
		}
	}

	e.finishAuction(ai, ai.TotalRounds >= e.config.MaxRounds)
}

func (e *Engine) runDutchRound(ai *AuctionRecord) {
	ai.CurrentPrice -= ai.CurrentPrice * e.config.DutchDecayRate
	if ai.CurrentPrice < e.config.DutchFloorPrice {
		ai.CurrentPrice = e.config.DutchFloorPrice
	}
	e.logger.Debug("dutch-price", lager.Data{"auction": ai.ID, "price": ai.CurrentPrice})

	e.broadcastCall(ai, ai.snapshotBidders())

	type acceptance struct {
		sender string
		auctiontypes.Acceptance
	}
	var acceptances []acceptance

	e.collectProposals(e.config.DutchWindow, func(msg communication.Message) {
		accepted, err := auctiontypes.ParseAcceptance(msg.Content)
		if err != nil {
			e.logger.Error("dropping-malformed-acceptance", err, lager.Data{"sender": msg.Sender})
			return
		}
		acceptances = append(acceptances, acceptance{sender: msg.Sender, Acceptance: accepted})
	})

	if len(acceptances) == 0 {
		return
	}

	// strictly highest threshold wins; earliest arrival keeps ties
	best := acceptances[0]
	for _, candidate := range acceptances[1:] {
		if candidate.Threshold > best.Threshold {
			best = candidate
		}
	}

	ai.Active = false
	ai.FinalWinner = best.sender

	// everyone else gets unwound by a blanket cancellation
	for bidder := range ai.Bidders {
		if bidder == best.sender {
			continue
		}
		e.registry.Send(bidder, communication.Message{
			Intent:  communication.Cancel,
			Sender:  communication.EngineName,
			Auction: ai.ID,
			Content: ai.ID,
		})
	}

	e.finishAuction(ai, false)
}

func (e *Engine) runBlindRound() {
	e.blindTimer.Stop()
	e.blindTimer = nil

	ai := e.active
	if ai == nil || !ai.Active || ai.Kind != auctiontypes.Blind {
		return
	}

	e.broadcastCall(ai, ai.snapshotBidders())

	e.collectProposals(e.config.BlindWindow, func(msg communication.Message) {
		bid, err := auctiontypes.ParsePrice(msg.Content)
		if err != nil {
			e.logger.Error("dropping-malformed-bid", err, lager.Data{"sender": msg.Sender})
			return
		}
		ai.stashSealedBid(msg.Sender, bid)
	})

	winner, bestBid := ai.bestSealedBid()
	ai.Active = false
	ai.FinalWinner = winner
	if winner != "" {
		ai.CurrentPrice = bestBid
	}

	e.finishAuction(ai, false)
}

// finishAuction is the common resolution tail: result summary to the
// seller and observer, settlement notice and reputation credit for the
// winner, then the next queued request.
func (e *Engine) finishAuction(ai *AuctionRecord, roundCapped bool) {
	winner := ""
	if ai.FinalWinner != "" {
		winner = communication.BuyerOf(ai.FinalWinner)
	}

	summary := auctiontypes.ResultSummary{
		AuctionID:   ai.ID,
		Winner:      winner,
		FinalPrice:  ai.CurrentPrice,
		BookInfo:    ai.Metadata.Encode(),
		RoundCapped: roundCapped,
	}
	content := summary.Encode()

	e.logger.Info("auction-closed", lager.Data{
		"auction": ai.ID,
		"winner":  summary.Winner,
		"price":   ai.CurrentPrice,
		"rounds":  ai.TotalRounds,
		"capped":  roundCapped,
	})

	e.registry.Send(ai.Seller, communication.Message{
		Intent:  communication.Result,
		Sender:  communication.EngineName,
		Auction: ai.ID,
		Content: content,
	})

	if winner != "" {
		e.emitReputation(winner, auctiontypes.EventWon)
		e.registry.Send(winner, communication.Message{
			Intent:  communication.Result,
			Sender:  communication.EngineName,
			Auction: ai.ID,
			Content: auctiontypes.EncodeWinNotice(ai.ID, ai.CurrentPrice),
		})
		e.registry.Send(communication.BidderObserver, communication.Message{
			Intent:  communication.Result,
			Sender:  communication.EngineName,
			Auction: ai.ID,
			Content: "Another buyer won this auction.",
		})
	}

	e.registry.Send(communication.SellerObserver, communication.Message{
		Intent:  communication.Result,
		Sender:  communication.EngineName,
		Auction: ai.ID,
		Content: content,
	})

	e.advanceQueue()
}
