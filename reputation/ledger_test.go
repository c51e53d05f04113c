package reputation_test

import (
	"os"
	"strconv"

	"github.com/tedsuo/ifrit"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
	"github.com/m-rau5/mas-book-auction/reputation"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ledger", func() {
	var (
		registry *communication.Registry
		process  ifrit.Process
		buyerBox *communication.Mailbox
	)

	update := func(buyer string, event auctiontypes.ReputationEvent) {
		registry.Send(communication.LedgerName, communication.Message{
			Intent:  communication.ReputationUpdate,
			Sender:  communication.EngineName,
			Content: auctiontypes.EncodeReputationUpdate(buyer, event),
		})
	}

	queryScore := func(buyer string) int {
		registry.Send(communication.LedgerName, communication.Message{
			Intent:  communication.ReputationQuery,
			Sender:  buyer,
			Content: buyer,
		})
		var response communication.Message
		Eventually(buyerBox.Chan()).Should(Receive(&response))
		Ω(response.Intent).Should(Equal(communication.ReputationResponse))
		score, err := strconv.Atoi(response.Content)
		Ω(err).ShouldNot(HaveOccurred())
		return score
	}

	BeforeEach(func() {
		registry = communication.NewRegistry()

		var err error
		buyerBox, err = registry.Claim("buyer1")
		Ω(err).ShouldNot(HaveOccurred())

		process = ifrit.Invoke(reputation.NewLedger(logger, registry))
	})

	AfterEach(func() {
		process.Signal(os.Interrupt)
		Eventually(process.Wait()).Should(Receive(BeNil()))
	})

	It("answers zero for a buyer it has never seen", func() {
		Ω(queryScore("buyer1")).Should(Equal(0))
	})

	It("scores joined=3, won=1 as round(3.5) = 4", func() {
		update("buyer1", auctiontypes.EventJoined)
		update("buyer1", auctiontypes.EventJoined)
		update("buyer1", auctiontypes.EventJoined)
		update("buyer1", auctiontypes.EventWon)

		Ω(queryScore("buyer1")).Should(Equal(4))
	})

	It("clamps the score to the top of the 0-5 band", func() {
		for i := 0; i < 6; i++ {
			update("buyer1", auctiontypes.EventWon)
		}
		Ω(queryScore("buyer1")).Should(Equal(5))
	})

	It("clamps the score at zero when early exits dominate", func() {
		update("buyer1", auctiontypes.EventJoined)
		for i := 0; i < 4; i++ {
			update("buyer1", auctiontypes.EventEarlyExit)
		}
		Ω(queryScore("buyer1")).Should(Equal(0))
	})

	It("drops malformed updates without affecting the record", func() {
		update("buyer1", auctiontypes.EventWon)
		registry.Send(communication.LedgerName, communication.Message{
			Intent:  communication.ReputationUpdate,
			Content: "buyer1;bamboozled",
		})
		Ω(queryScore("buyer1")).Should(Equal(2))
	})
})
