package visualization_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/simulation/visualization"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Report", func() {
	var report *visualization.Report

	BeforeEach(func() {
		announcements := []auctiontypes.Announcement{
			{AuctionID: "a1", Metadata: auctiontypes.ItemMetadata{Title: "One", StartingPrice: 100}},
			{AuctionID: "a2", Metadata: auctiontypes.ItemMetadata{Title: "Two", StartingPrice: 200}},
			{AuctionID: "a3", Metadata: auctiontypes.ItemMetadata{Title: "Three", StartingPrice: 50}},
		}
		results := []auctiontypes.ResultSummary{
			{AuctionID: "a1", Winner: "alpha", FinalPrice: 150},
			{AuctionID: "a2", Winner: "beta", FinalPrice: 100},
			{AuctionID: "a3", Winner: auctiontypes.NoWinner},
		}
		report = visualization.NewReport(announcements, results, 4*time.Second)
	})

	It("counts performed and sold auctions", func() {
		Ω(report.AuctionsPerformed()).Should(Equal(3))
		Ω(report.AuctionsSold()).Should(Equal(2))
		Ω(report.SellThroughRate()).Should(BeNumerically("~", 2.0/3.0, 0.001))
	})

	It("computes throughput from the run duration", func() {
		Ω(report.AuctionsPerSecond()).Should(BeNumerically("~", 0.75, 0.001))
	})

	It("resolves opening prices from the announcements", func() {
		price, found := report.StartPriceOf("a2")
		Ω(found).Should(BeTrue())
		Ω(price).Should(BeNumerically("~", 200, 0.001))

		_, found = report.StartPriceOf("unknown")
		Ω(found).Should(BeFalse())
	})

	It("computes hammer price stats over sold auctions only", func() {
		stat := report.HammerPriceStats()
		Ω(stat.Min).Should(BeNumerically("~", 100, 0.001))
		Ω(stat.Max).Should(BeNumerically("~", 150, 0.001))
		Ω(stat.Mean).Should(BeNumerically("~", 125, 0.001))
		Ω(stat.Total).Should(BeNumerically("~", 250, 0.001))
	})

	It("computes price movement relative to the opening price", func() {
		stat := report.PriceMovementStats()
		// a1 moved 1.5x up, a2 fell to 0.5x
		Ω(stat.Min).Should(BeNumerically("~", 0.5, 0.001))
		Ω(stat.Max).Should(BeNumerically("~", 1.5, 0.001))
		Ω(stat.Mean).Should(BeNumerically("~", 1.0, 0.001))
	})

	It("tallies winners", func() {
		Ω(report.WinnerCounts()).Should(Equal(map[string]int{"alpha": 1, "beta": 1}))
	})
})

var _ = Describe("SVGReport", func() {
	It("renders a report card to disk", func() {
		dir, err := os.MkdirTemp("", "report-card")
		Ω(err).ShouldNot(HaveOccurred())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "report.svg")
		svgReport, err := visualization.StartSVGReport(path, 1, 1)
		Ω(err).ShouldNot(HaveOccurred())

		svgReport.DrawHeader("test run")
		svgReport.DrawReportCard(0, 0, visualization.NewReport(
			[]auctiontypes.Announcement{
				{AuctionID: "a1", Metadata: auctiontypes.ItemMetadata{Title: "One", StartingPrice: 100}},
			},
			[]auctiontypes.ResultSummary{
				{AuctionID: "a1", Winner: "alpha", FinalPrice: 150},
			},
			time.Second,
		))
		Ω(svgReport.Done()).Should(Succeed())

		data, err := os.ReadFile(path)
		Ω(err).ShouldNot(HaveOccurred())
		Ω(string(data)).Should(ContainSubstring("<svg"))
		Ω(string(data)).Should(ContainSubstring("alpha"))
	})
})
