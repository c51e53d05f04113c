package main

import (
	"flag"
	"os"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
	"github.com/tedsuo/ifrit/sigmon"

	"github.com/m-rau5/mas-book-auction/auctionengine"
	"github.com/m-rau5/mas-book-auction/buyer"
	"github.com/m-rau5/mas-book-auction/communication"
	"github.com/m-rau5/mas-book-auction/notification"
	"github.com/m-rau5/mas-book-auction/reputation"
	"github.com/m-rau5/mas-book-auction/simulation"
	"github.com/m-rau5/mas-book-auction/simulation/visualization"
	"github.com/m-rau5/mas-book-auction/util"
)

var runFor = flag.Duration("runFor", 2*time.Minute, "how long to let the marketplace run")
var tick = flag.Duration("tick", 2*time.Second, "round interval for English and Dutch auctions")
var maxRounds = flag.Int("maxRounds", 5, "round cap for English auctions")
var seed = flag.Int64("seed", 0, "seed for buyer strategies; 0 seeds from the clock")
var reportPath = flag.String("reportPath", "report.svg", "where to write the SVG report card")
var disableSVGReport = flag.Bool("disableSVGReport", false, "skip writing the SVG report card")

func main() {
	flag.Parse()

	logger := lager.NewLogger("auction-sim")
	logger.RegisterSink(lager.NewWriterSink(os.Stdout, lager.INFO))

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	config := auctionengine.DefaultConfig()
	config.TickInterval = *tick
	config.MaxRounds = *maxRounds

	registry := communication.NewRegistry()

	engine, err := auctionengine.New(logger, registry, clock.NewClock(), config)
	if err != nil {
		logger.Fatal("failed-to-build-engine", err)
	}

	sellerRecorder := simulation.NewRecorder(logger, registry, communication.SellerObserver)
	bidderRecorder := simulation.NewRecorder(logger, registry, communication.BidderObserver)
	seller := simulation.NewSeller(logger, registry, "seller-1", simulation.SampleCatalog())

	members := grouper.Members{
		{Name: "engine", Runner: engine},
		{Name: "router", Runner: notification.NewRouter(logger, registry)},
		{Name: "ledger", Runner: reputation.NewLedger(logger, registry)},
		{Name: "seller-observer", Runner: sellerRecorder},
		{Name: "bidder-observer", Runner: bidderRecorder},
	}
	for i, profile := range simulation.CanonicalBuyers() {
		members = append(members, grouper.Member{
			Name:   profile.Name,
			Runner: buyer.New(logger, registry, profile, util.NewRand(*seed+int64(i))),
		})
	}
	// the seller publishes on startup, so it boots after the buyers have
	// subscribed their interests
	members = append(members, grouper.Member{Name: "seller", Runner: seller})

	monitor := ifrit.Invoke(sigmon.New(grouper.NewOrdered(os.Interrupt, members)))
	logger.Info("marketplace-open", lager.Data{"run-for": runFor.String(), "seed": *seed})

	started := time.Now()
	select {
	case err := <-monitor.Wait():
		if err != nil {
			logger.Fatal("marketplace-failed", err)
		}
	case <-time.After(*runFor):
		monitor.Signal(os.Interrupt)
		<-monitor.Wait()
	}
	logger.Info("marketplace-closed", lager.Data{"notices": len(seller.Notices())})

	report := visualization.NewReport(
		bidderRecorder.Announcements(),
		sellerRecorder.Results(),
		time.Since(started),
	)
	visualization.PrintReport(report)

	if *disableSVGReport {
		return
	}
	svgReport, err := visualization.StartSVGReport(*reportPath, 1, 1)
	if err != nil {
		logger.Fatal("failed-to-create-report", err)
	}
	svgReport.DrawHeader("book auction simulation")
	svgReport.DrawReportCard(0, 0, report)
	if err := svgReport.Done(); err != nil {
		logger.Fatal("failed-to-write-report", err)
	}
}
