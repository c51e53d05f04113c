// Package buyer implements the persistent bidding identity: it subscribes
// its interests, vets announcements against budget and reputation, spawns
// one negotiator per admitted auction, and settles wins against its budget.
package buyer

import (
	"math/rand"
	"os"
	"strconv"
	"strings"

	"code.cloudfoundry.org/lager/v3"
	"github.com/tedsuo/ifrit"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
	"github.com/m-rau5/mas-book-auction/negotiator"
	"github.com/m-rau5/mas-book-auction/strategies"
)

type Profile struct {
	Name     string
	Genres   []string
	Authors  []string
	Strategy strategies.Kind
	Budget   float64
}

type Buyer struct {
	logger   lager.Logger
	registry *communication.Registry
	profile  Profile
	random   *rand.Rand

	genres  map[string]struct{}
	authors map[string]struct{}
	budget  float64

	// candidates buffered between an announcement and the score response
	// that clears them as a batch
	candidates map[string]auctiontypes.Announcement

	negotiators []ifrit.Process
}

// New builds a buyer. The random source seeds each negotiator's strategy
// instance, so a seeded buyer replays identically.
func New(logger lager.Logger, registry *communication.Registry, profile Profile, random *rand.Rand) *Buyer {
	genres := map[string]struct{}{}
	for _, genre := range profile.Genres {
		genres[genre] = struct{}{}
	}
	authors := map[string]struct{}{}
	for _, author := range profile.Authors {
		authors[author] = struct{}{}
	}

	return &Buyer{
		logger:     logger.Session("buyer", lager.Data{"name": profile.Name}),
		registry:   registry,
		profile:    profile,
		random:     random,
		genres:     genres,
		authors:    authors,
		budget:     profile.Budget,
		candidates: map[string]auctiontypes.Announcement{},
	}
}

func (b *Buyer) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	mailbox, err := b.registry.Claim(b.profile.Name)
	if err != nil {
		return err
	}
	defer b.registry.Release(b.profile.Name)
	defer b.stopNegotiators()

	b.subscribe()

	close(ready)
	b.logger.Info("started", lager.Data{
		"strategy": b.profile.Strategy,
		"budget":   b.budget,
	})

	for {
		select {
		case msg := <-mailbox.Chan():
			b.handle(msg)
		case <-signals:
			b.logger.Info("exited")
			return nil
		}
	}
}

func (b *Buyer) subscribe() {
	interests := append([]string{}, b.profile.Genres...)
	interests = append(interests, b.profile.Authors...)

	b.registry.Send(communication.RouterName, communication.Message{
		Intent:  communication.Subscribe,
		Sender:  b.profile.Name,
		Content: strings.Join(interests, ","),
	})
}

func (b *Buyer) handle(msg communication.Message) {
	switch msg.Intent {
	case communication.Announce:
		b.evaluateAnnouncement(msg)
	case communication.ReputationResponse:
		b.clearCandidates(msg)
	case communication.Result:
		b.settleWin(msg)
	}
}

func (b *Buyer) evaluateAnnouncement(msg communication.Message) {
	announcement, err := auctiontypes.ParseAnnouncement(msg.Content)
	if err != nil {
		b.logger.Error("dropping-malformed-announcement", err)
		return
	}
	meta := announcement.Metadata

	_, genreMatch := b.genres[meta.Genre]
	_, authorMatch := b.authors[meta.Author]

	// a Dutch price only falls, so it skips the up-front budget gate
	budgetOK := meta.Kind == auctiontypes.Dutch || b.budget >= meta.StartingPrice

	if (!genreMatch && !authorMatch) || !budgetOK {
		b.logger.Info("skipped-auction", lager.Data{
			"auction":  announcement.AuctionID,
			"interest": genreMatch || authorMatch,
			"budget":   b.budget,
		})
		return
	}

	b.candidates[announcement.AuctionID] = announcement
	b.registry.Send(communication.LedgerName, communication.Message{
		Intent:  communication.ReputationQuery,
		Sender:  b.profile.Name,
		Content: b.profile.Name,
	})
}

// clearCandidates resolves every buffered candidate against one score
// snapshot, then empties the buffer. Announcements that pile up before the
// response all see the same score.
func (b *Buyer) clearCandidates(msg communication.Message) {
	score, err := strconv.Atoi(strings.TrimSpace(msg.Content))
	if err != nil {
		b.logger.Error("dropping-malformed-score", err, lager.Data{"content": msg.Content})
		return
	}

	for auctionID, announcement := range b.candidates {
		if score < announcement.Metadata.MinRating {
			b.logger.Info("reputation-too-low", lager.Data{
				"auction":  auctionID,
				"score":    score,
				"required": announcement.Metadata.MinRating,
			})
			continue
		}
		b.spawnNegotiator(announcement)
	}
	b.candidates = map[string]auctiontypes.Announcement{}
}

func (b *Buyer) spawnNegotiator(announcement auctiontypes.Announcement) {
	strategy, err := strategies.New(b.profile.Strategy, rand.New(rand.NewSource(b.random.Int63())))
	if err != nil {
		b.logger.Error("failed-to-build-strategy", err)
		return
	}

	neg, err := negotiator.New(b.logger, b.registry, negotiator.Snapshot{
		AuctionID:  announcement.AuctionID,
		Metadata:   announcement.Metadata,
		BuyerName:  b.profile.Name,
		StartPrice: announcement.Metadata.StartingPrice,
		Budget:     b.budget,
	}, strategy)
	if err != nil {
		// identity already claimed: a negotiator for this auction exists
		b.logger.Info("negotiator-exists", lager.Data{"auction": announcement.AuctionID})
		return
	}

	b.negotiators = append(b.negotiators, ifrit.Background(neg))
	b.logger.Info("joined-auction", lager.Data{"auction": announcement.AuctionID})
}

func (b *Buyer) settleWin(msg communication.Message) {
	spent, err := auctiontypes.ParseSettlementPrice(msg.Content)
	if err != nil {
		b.logger.Error("failed-to-parse-settlement", err, lager.Data{"content": msg.Content})
		return
	}

	b.budget -= spent
	b.logger.Info("won-auction", lager.Data{
		"auction":   msg.Auction,
		"spent":     spent,
		"remaining": b.budget,
	})
}

func (b *Buyer) stopNegotiators() {
	for _, process := range b.negotiators {
		process.Signal(os.Interrupt)
	}
}
