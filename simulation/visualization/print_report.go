package visualization

import (
	"fmt"
	"sort"
	"strings"
)

const defaultStyle = "\x1b[0m"
const boldStyle = "\x1b[1m"
const redColor = "\x1b[91m"
const greenColor = "\x1b[32m"
const grayColor = "\x1b[90m"

const priceBarUnit = 10.0

func PrintReport(report *Report) {
	if report.AuctionsPerformed() == 0 {
		fmt.Println("Got no results!")
		return
	}

	fmt.Printf("Finished %d Auctions (%d sold, %d unsold) in %s\n",
		report.AuctionsPerformed(),
		report.AuctionsSold(),
		report.AuctionsPerformed()-report.AuctionsSold(),
		report.Duration,
	)
	fmt.Println()

	fmt.Println("Sales")
	for _, result := range report.Results {
		line := fmt.Sprintf("  %s %-28s", shortID(result.AuctionID), titleOf(result.BookInfo))
		if !result.HasWinner() {
			fmt.Printf("%s %sno sale%s\n", line, redColor, defaultStyle)
			continue
		}

		bar := ""
		if start, found := report.StartPriceOf(result.AuctionID); found {
			bar = priceBar(start, result.FinalPrice)
		}
		fmt.Printf("%s %s%-16s%s %8.2f %s\n", line, greenColor, result.Winner, defaultStyle, result.FinalPrice, bar)
	}
	fmt.Println()

	hammer := report.HammerPriceStats()
	fmt.Printf("%14s  Min: %8.2f | Max: %8.2f | Mean: %8.2f ± %.2f | Total: %8.2f\n",
		"Hammer Prices:", hammer.Min, hammer.Max, hammer.Mean, hammer.StdDev, hammer.Total)

	movement := report.PriceMovementStats()
	fmt.Printf("%14s  Min: %8.2f | Max: %8.2f | Mean: %8.2f ± %.2f\n",
		"Price Movement:", movement.Min, movement.Max, movement.Mean, movement.StdDev)

	fmt.Printf("%14s  %.2f auctions/sec, %.0f%% sell-through\n",
		"Throughput:", report.AuctionsPerSecond(), report.SellThroughRate()*100)
	fmt.Println()

	fmt.Println("Winners")
	counts := report.WinnerCounts()
	winners := make([]string, 0, len(counts))
	for winner := range counts {
		winners = append(winners, winner)
	}
	sort.Strings(winners)
	for _, winner := range winners {
		fmt.Printf("  %s%-16s%s %s\n", boldStyle, winner, defaultStyle, strings.Repeat("+", counts[winner]))
	}
}

// priceBar draws the opening price in gray and the hammer price over it in
// green, one glyph per priceBarUnit of currency.
func priceBar(start, final float64) string {
	startUnits := int(start / priceBarUnit)
	finalUnits := int(final / priceBarUnit)

	if finalUnits >= startUnits {
		return strings.Repeat(greenColor+"+"+defaultStyle, finalUnits)
	}
	return strings.Repeat(greenColor+"+"+defaultStyle, finalUnits) +
		strings.Repeat(grayColor+"-"+defaultStyle, startUnits-finalUnits)
}

func shortID(auctionID string) string {
	if len(auctionID) > 8 {
		return auctionID[:8]
	}
	return auctionID
}

func titleOf(bookInfo string) string {
	for _, part := range strings.Split(bookInfo, ";") {
		if title, found := strings.CutPrefix(part, "Title="); found {
			return title
		}
	}
	return bookInfo
}
