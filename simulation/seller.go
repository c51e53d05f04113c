// Package simulation is the in-process harness: it provides the seller and
// observer actors the end-to-end runs and cmd/auctionsim boot alongside the
// engine, router, ledger, and buyers.
package simulation

import (
	"os"
	"sync"

	"code.cloudfoundry.org/lager/v3"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
)

// Seller publishes its catalog to the engine at startup and collects the
// closing notices that come back. The engine serializes the catalog itself,
// so the seller fires everything at once.
type Seller struct {
	logger   lager.Logger
	registry *communication.Registry
	name     string
	catalog  []auctiontypes.ItemMetadata

	lock    sync.Mutex
	notices []string
	results []auctiontypes.ResultSummary
}

func NewSeller(logger lager.Logger, registry *communication.Registry, name string, catalog []auctiontypes.ItemMetadata) *Seller {
	return &Seller{
		logger:   logger.Session("seller", lager.Data{"name": name}),
		registry: registry,
		name:     name,
		catalog:  catalog,
	}
}

func (s *Seller) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	mailbox, err := s.registry.Claim(s.name)
	if err != nil {
		return err
	}
	defer s.registry.Release(s.name)

	for _, item := range s.catalog {
		s.registry.Send(communication.EngineName, communication.Message{
			Intent:  communication.NewAuction,
			Sender:  s.name,
			Content: item.Encode(),
		})
	}

	close(ready)
	s.logger.Info("published-catalog", lager.Data{"items": len(s.catalog)})

	for {
		select {
		case msg := <-mailbox.Chan():
			if msg.Intent == communication.Result {
				s.record(msg)
			}
		case <-signals:
			s.logger.Info("exited")
			return nil
		}
	}
}

func (s *Seller) record(msg communication.Message) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.notices = append(s.notices, msg.Content)
	summary, err := auctiontypes.ParseResultSummary(msg.Content)
	if err != nil {
		// abandoned auctions close with a plain notice, not a summary
		s.logger.Info("auction-closed-without-sale", lager.Data{"notice": msg.Content})
		return
	}

	s.results = append(s.results, summary)
	s.logger.Info("auction-settled", lager.Data{
		"auction": summary.AuctionID,
		"winner":  summary.Winner,
		"price":   summary.FinalPrice,
	})
}

// Results returns the parsed settlement summaries received so far.
func (s *Seller) Results() []auctiontypes.ResultSummary {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]auctiontypes.ResultSummary{}, s.results...)
}

// Notices returns every closing notice, settled or abandoned.
func (s *Seller) Notices() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string{}, s.notices...)
}
