package negotiator_test

import (
	"os"

	"github.com/tedsuo/ifrit"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
	"github.com/m-rau5/mas-book-auction/negotiator"
	"github.com/m-rau5/mas-book-auction/strategies"
	"github.com/m-rau5/mas-book-auction/util"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Negotiator", func() {
	var (
		registry *communication.Registry
		engine   *communication.Mailbox
		process  ifrit.Process
	)

	BeforeEach(func() {
		registry = communication.NewRegistry()

		var err error
		engine, err = registry.Claim(communication.EngineName)
		Ω(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		if process != nil {
			process.Signal(os.Interrupt)
			Eventually(process.Wait()).Should(Receive(BeNil()))
			process = nil
		}
	})

	spawn := func(kind auctiontypes.AuctionKind, strategyKind strategies.Kind, startPrice, budget float64) *negotiator.Negotiator {
		strategy, err := strategies.New(strategyKind, util.NewRand(1))
		Ω(err).ShouldNot(HaveOccurred())

		neg, err := negotiator.New(logger, registry, negotiator.Snapshot{
			AuctionID:  "auction-1",
			Metadata:   auctiontypes.ItemMetadata{Title: "X", Kind: kind, StartingPrice: startPrice},
			BuyerName:  "buyer1",
			StartPrice: startPrice,
			Budget:     budget,
		}, strategy)
		Ω(err).ShouldNot(HaveOccurred())

		process = ifrit.Invoke(neg)
		return neg
	}

	call := func(price string) {
		registry.Send(communication.BidderName("buyer1", "auction-1"), communication.Message{
			Intent:  communication.CallForProposal,
			Sender:  communication.EngineName,
			Auction: "auction-1",
			Content: price,
		})
	}

	It("registers with the engine as its first act", func() {
		spawn(auctiontypes.English, strategies.AlwaysFirst, 100, 500)

		var msg communication.Message
		Eventually(engine.Chan()).Should(Receive(&msg))
		Ω(msg.Intent).Should(Equal(communication.Register))
		Ω(msg.Sender).Should(Equal("buyer1-bidder-auction-1"))
		Ω(msg.Content).Should(Equal("auction-1"))
	})

	It("refuses a duplicate identity for the same (buyer, auction) pair", func() {
		spawn(auctiontypes.English, strategies.AlwaysFirst, 100, 500)

		strategy, err := strategies.New(strategies.Periodic, util.NewRand(2))
		Ω(err).ShouldNot(HaveOccurred())
		_, err = negotiator.New(logger, registry, negotiator.Snapshot{
			AuctionID: "auction-1",
			Metadata:  auctiontypes.ItemMetadata{Kind: auctiontypes.English},
			BuyerName: "buyer1",
		}, strategy)
		Ω(err).Should(HaveOccurred())
	})

	Describe("English auctions", func() {
		It("raises by the strategy's bid when it beats the called price", func() {
			spawn(auctiontypes.English, strategies.AlwaysFirst, 100, 500)
			Eventually(engine.Chan()).Should(Receive()) // register

			call("100")

			var msg communication.Message
			Eventually(engine.Chan()).Should(Receive(&msg))
			Ω(msg.Intent).Should(Equal(communication.Proposal))

			bid, err := auctiontypes.ParsePrice(msg.Content)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(bid).Should(Equal(300.0)) // half the gap to budget
		})

		It("sits out a call at its own last bid", func() {
			spawn(auctiontypes.English, strategies.AlwaysFirst, 100, 500)
			Eventually(engine.Chan()).Should(Receive()) // register

			call("100")
			Eventually(engine.Chan()).Should(Receive()) // the 300 raise

			call("300")
			Consistently(engine.Chan()).ShouldNot(Receive())
		})

		It("deregisters and terminates when it cannot beat the price", func() {
			spawn(auctiontypes.English, strategies.AlwaysFirst, 100, 500)
			Eventually(engine.Chan()).Should(Receive()) // register

			call("500") // bid caps at budget, not strictly greater

			var msg communication.Message
			Eventually(engine.Chan()).Should(Receive(&msg))
			Ω(msg.Intent).Should(Equal(communication.Deregister))
			Ω(msg.Content).Should(Equal("auction-1"))

			Eventually(process.Wait()).Should(Receive(BeNil()))
			process = nil
		})
	})

	Describe("Dutch auctions", func() {
		It("waits for the price to fall to its fixed threshold, then accepts once", func() {
			// threshold for AlwaysFirst at start 200, budget 500 is 350
			spawn(auctiontypes.Dutch, strategies.AlwaysFirst, 200, 500)
			Eventually(engine.Chan()).Should(Receive()) // register

			call("400")
			Consistently(engine.Chan()).ShouldNot(Receive())

			call("340")
			var msg communication.Message
			Eventually(engine.Chan()).Should(Receive(&msg))
			Ω(msg.Intent).Should(Equal(communication.Proposal))

			accepted, err := auctiontypes.ParseAcceptance(msg.Content)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(accepted.Price).Should(Equal(340.0))
			Ω(accepted.Threshold).Should(Equal(350.0))

			Eventually(process.Wait()).Should(Receive(BeNil()))
			process = nil
		})

		It("unwinds on the engine's blanket cancellation", func() {
			spawn(auctiontypes.Dutch, strategies.AlwaysFirst, 200, 500)
			Eventually(engine.Chan()).Should(Receive()) // register

			registry.Send(communication.BidderName("buyer1", "auction-1"), communication.Message{
				Intent:  communication.Cancel,
				Sender:  communication.EngineName,
				Content: "auction-1",
			})

			Eventually(process.Wait()).Should(Receive(BeNil()))
			process = nil
			Consistently(engine.Chan()).ShouldNot(Receive())
		})
	})

	Describe("blind auctions", func() {
		It("seals a single bid and terminates", func() {
			spawn(auctiontypes.Blind, strategies.AlwaysFirst, 100, 500)
			Eventually(engine.Chan()).Should(Receive()) // register

			call("100")

			var msg communication.Message
			Eventually(engine.Chan()).Should(Receive(&msg))
			Ω(msg.Intent).Should(Equal(communication.Proposal))

			bid, err := auctiontypes.ParsePrice(msg.Content)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(bid).Should(Equal(300.0))

			Eventually(process.Wait()).Should(Receive(BeNil()))
			process = nil
		})

		It("terminates even when the strategy sits the auction out", func() {
			// OneShot bids max(price+1, min(budget, price*1.3)); with the
			// price above budget the bid overshoots and gets skipped
			spawn(auctiontypes.Blind, strategies.OneShot, 600, 500)
			Eventually(engine.Chan()).Should(Receive()) // register

			call("600")

			Eventually(process.Wait()).Should(Receive(BeNil()))
			process = nil
			Consistently(engine.Chan()).ShouldNot(Receive())
		})

		It("releases its identity on termination", func() {
			spawn(auctiontypes.Blind, strategies.AlwaysFirst, 100, 500)
			Eventually(engine.Chan()).Should(Receive()) // register
			call("100")
			Eventually(engine.Chan()).Should(Receive()) // the sealed bid
			Eventually(process.Wait()).Should(Receive(BeNil()))
			process = nil

			_, err := registry.Claim(communication.BidderName("buyer1", "auction-1"))
			Ω(err).ShouldNot(HaveOccurred())
		})
	})
})
