// Package reputation keeps the per-buyer participation history that gates
// auction entry. The ledger is an actor: it owns its records outright and
// everything reaches it as messages.
package reputation

import (
	"math"
	"os"
	"strconv"

	"code.cloudfoundry.org/lager/v3"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
)

const (
	joinedWeight    = 0.5
	wonWeight       = 2.0
	earlyExitWeight = 1.5

	minScore = 0
	maxScore = 5
)

type record struct {
	joined     int
	won        int
	earlyExits int
}

// score recomputes from live counters on every query; nothing is cached.
func (r *record) score() int {
	raw := float64(r.joined)*joinedWeight + float64(r.won)*wonWeight - float64(r.earlyExits)*earlyExitWeight
	clamped := math.Max(minScore, math.Min(maxScore, raw))
	return int(math.Round(clamped))
}

type Ledger struct {
	logger   lager.Logger
	registry *communication.Registry
	records  map[string]*record
}

func NewLedger(logger lager.Logger, registry *communication.Registry) *Ledger {
	return &Ledger{
		logger:   logger.Session("reputation-ledger"),
		registry: registry,
		records:  map[string]*record{},
	}
}

func (l *Ledger) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	mailbox, err := l.registry.Claim(communication.LedgerName)
	if err != nil {
		return err
	}
	defer l.registry.Release(communication.LedgerName)

	close(ready)
	l.logger.Info("started")

	for {
		select {
		case msg := <-mailbox.Chan():
			l.handle(msg)
		case <-signals:
			l.logger.Info("exited")
			return nil
		}
	}
}

func (l *Ledger) handle(msg communication.Message) {
	switch msg.Intent {
	case communication.ReputationUpdate:
		buyer, event, err := auctiontypes.ParseReputationUpdate(msg.Content)
		if err != nil {
			l.logger.Error("dropping-malformed-update", err, lager.Data{"content": msg.Content})
			return
		}
		l.apply(buyer, event)

	case communication.ReputationQuery:
		buyer := msg.Content
		if buyer == "" {
			buyer = msg.Sender
		}
		score := l.lookup(buyer).score()
		l.registry.Send(buyer, communication.Message{
			Intent:  communication.ReputationResponse,
			Sender:  communication.LedgerName,
			Content: strconv.Itoa(score),
		})
	}
}

// lookup creates zeroed records lazily; they are never deleted.
func (l *Ledger) lookup(buyer string) *record {
	rec, found := l.records[buyer]
	if !found {
		rec = &record{}
		l.records[buyer] = rec
	}
	return rec
}

func (l *Ledger) apply(buyer string, event auctiontypes.ReputationEvent) {
	rec := l.lookup(buyer)
	switch event {
	case auctiontypes.EventJoined:
		rec.joined++
	case auctiontypes.EventWon:
		rec.won++
	case auctiontypes.EventEarlyExit:
		rec.earlyExits++
	}

	l.logger.Info("updated", lager.Data{
		"buyer":       buyer,
		"event":       event,
		"score":       rec.score(),
		"joined":      rec.joined,
		"won":         rec.won,
		"early-exits": rec.earlyExits,
	})
}
