// Package visualization turns a simulation run's settlement record into
// printable stats and an SVG report card.
package visualization

import (
	"time"

	"github.com/GaryBoone/GoStats/stats"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
)

// Report holds one run's observable record: the announcements that opened
// each auction and the summaries that closed them.
type Report struct {
	Announcements []auctiontypes.Announcement
	Results       []auctiontypes.ResultSummary
	Duration      time.Duration

	startPriceByAuction map[string]float64
}

type Stat struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Total  float64
}

func NewStat(data []float64) Stat {
	return Stat{
		Min:    stats.StatsMin(data),
		Max:    stats.StatsMax(data),
		Mean:   stats.StatsMean(data),
		StdDev: stats.StatsPopulationStandardDeviation(data),
		Total:  stats.StatsSum(data),
	}
}

func NewReport(announcements []auctiontypes.Announcement, results []auctiontypes.ResultSummary, duration time.Duration) *Report {
	return &Report{
		Announcements: announcements,
		Results:       results,
		Duration:      duration,
	}
}

func (r *Report) AuctionsPerformed() int {
	return len(r.Results)
}

func (r *Report) AuctionsSold() int {
	sold := 0
	for _, result := range r.Results {
		if result.HasWinner() {
			sold++
		}
	}
	return sold
}

func (r *Report) SellThroughRate() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return float64(r.AuctionsSold()) / float64(len(r.Results))
}

func (r *Report) AuctionsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.AuctionsPerformed()) / r.Duration.Seconds()
}

// StartPriceOf resolves an auction's opening price from its announcement.
func (r *Report) StartPriceOf(auctionID string) (float64, bool) {
	if r.startPriceByAuction == nil {
		r.startPriceByAuction = map[string]float64{}
		for _, announcement := range r.Announcements {
			r.startPriceByAuction[announcement.AuctionID] = announcement.Metadata.StartingPrice
		}
	}

	price, found := r.startPriceByAuction[auctionID]
	return price, found
}

// HammerPriceStats covers sold auctions only.
func (r *Report) HammerPriceStats() Stat {
	prices := []float64{}
	for _, result := range r.Results {
		if result.HasWinner() {
			prices = append(prices, result.FinalPrice)
		}
	}
	return NewStat(prices)
}

// PriceMovementStats is the hammer price as a fraction of the opening
// price, for sold auctions with a known announcement. Above 1 means the
// bidding drove the price up, below 1 means the price fell to meet demand.
func (r *Report) PriceMovementStats() Stat {
	movements := []float64{}
	for _, result := range r.Results {
		if !result.HasWinner() {
			continue
		}
		start, found := r.StartPriceOf(result.AuctionID)
		if !found || start <= 0 {
			continue
		}
		movements = append(movements, result.FinalPrice/start)
	}
	return NewStat(movements)
}

// WinnerCounts tallies sold auctions per winning buyer.
func (r *Report) WinnerCounts() map[string]int {
	counts := map[string]int{}
	for _, result := range r.Results {
		if result.HasWinner() {
			counts[result.Winner]++
		}
	}
	return counts
}
