package simulation_test

import (
	"os"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"

	"github.com/m-rau5/mas-book-auction/auctionengine"
	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/buyer"
	"github.com/m-rau5/mas-book-auction/communication"
	"github.com/m-rau5/mas-book-auction/notification"
	"github.com/m-rau5/mas-book-auction/reputation"
	"github.com/m-rau5/mas-book-auction/simulation"
	"github.com/m-rau5/mas-book-auction/simulation/visualization"
	"github.com/m-rau5/mas-book-auction/util"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Running a full marketplace", func() {
	var (
		registry *communication.Registry
		group    ifrit.Process

		seller         *simulation.Seller
		sellerRecorder *simulation.Recorder
		bidderRecorder *simulation.Recorder

		profiles []buyer.Profile
		started  time.Time
	)

	BeforeEach(func() {
		registry = communication.NewRegistry()

		engine, err := auctionengine.New(logger, registry, clock.NewClock(), testConfig())
		Ω(err).ShouldNot(HaveOccurred())

		seller = simulation.NewSeller(logger, registry, "seller-1", simulation.SampleCatalog())
		sellerRecorder = simulation.NewRecorder(logger, registry, communication.SellerObserver)
		bidderRecorder = simulation.NewRecorder(logger, registry, communication.BidderObserver)

		profiles = simulation.CanonicalBuyers()

		members := grouper.Members{
			{Name: "engine", Runner: engine},
			{Name: "router", Runner: notification.NewRouter(logger, registry)},
			{Name: "ledger", Runner: reputation.NewLedger(logger, registry)},
			{Name: "seller-observer", Runner: sellerRecorder},
			{Name: "bidder-observer", Runner: bidderRecorder},
		}
		for i, profile := range profiles {
			members = append(members, grouper.Member{
				Name:   profile.Name,
				Runner: buyer.New(logger, registry, profile, util.NewRand(int64(i+1))),
			})
		}
		// the seller goes last so every buyer is subscribed before the
		// catalog hits the engine
		members = append(members, grouper.Member{Name: "seller", Runner: seller})

		started = time.Now()
		group = ifrit.Invoke(grouper.NewOrdered(os.Interrupt, members))
	})

	AfterEach(func() {
		reports = append(reports, visualization.NewReport(
			bidderRecorder.Announcements(),
			sellerRecorder.Results(),
			time.Since(started),
		))

		group.Signal(os.Interrupt)
		Eventually(group.Wait(), 10*time.Second).Should(Receive())
	})

	It("settles the whole catalog", func() {
		Eventually(seller.Results, 30*time.Second).Should(HaveLen(3))

		roster := map[string]bool{}
		for _, profile := range profiles {
			roster[profile.Name] = true
		}

		byKind := map[auctiontypes.AuctionKind]auctiontypes.ResultSummary{}
		for _, result := range seller.Results() {
			Ω(result.HasWinner()).Should(BeTrue(), "auction %s found no buyer", result.AuctionID)
			Ω(roster).Should(HaveKey(result.Winner))

			meta, err := auctiontypes.ParseItemMetadata(result.BookInfo)
			Ω(err).ShouldNot(HaveOccurred())
			byKind[meta.Kind] = result
		}
		Ω(byKind).Should(HaveLen(3))

		// English bidding only moves up, Dutch only down
		Ω(byKind[auctiontypes.English].FinalPrice).Should(BeNumerically(">=", 120))
		Ω(byKind[auctiontypes.Dutch].FinalPrice).Should(BeNumerically("<", 200))
		Ω(byKind[auctiontypes.Dutch].FinalPrice).Should(BeNumerically(">=", 1))
		Ω(byKind[auctiontypes.Blind].FinalPrice).Should(BeNumerically(">", 0))
	})

	It("copies the settlement record to the observers", func() {
		Eventually(seller.Results, 30*time.Second).Should(HaveLen(3))

		Eventually(sellerRecorder.Results).Should(HaveLen(3))
		Eventually(bidderRecorder.Announcements).Should(HaveLen(3))

		seen := map[string]bool{}
		for _, announcement := range bidderRecorder.Announcements() {
			Ω(seen).ShouldNot(HaveKey(announcement.AuctionID))
			seen[announcement.AuctionID] = true
		}
	})
})
