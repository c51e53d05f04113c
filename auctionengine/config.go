package auctionengine

import "time"

// Config carries the protocol timings and round limits. Defaults match the
// production cadence; tests compress them.
type Config struct {
	// TickInterval drives the English and Dutch round loops.
	TickInterval time.Duration

	// EnglishWindow is how long a round stays open for raises after the
	// call-for-proposals goes out.
	EnglishWindow time.Duration

	// DutchWindow is how long the engine waits for acceptances after each
	// price drop.
	DutchWindow time.Duration

	// BlindAuctionDelay is the one-shot delay between admitting a blind
	// auction and broadcasting its single call-for-proposals.
	BlindAuctionDelay time.Duration

	// BlindWindow is how long sealed bids are collected after the call.
	BlindWindow time.Duration

	// MaxRounds caps English auctions; closure past the cap is annotated
	// on the result.
	MaxRounds int

	// MaxQuietRounds is the number of consecutive rounds without a raise
	// an English auction survives.
	MaxQuietRounds int

	// DutchDecayRate is the per-tick fractional price drop.
	DutchDecayRate float64

	// DutchFloorPrice is the lowest a Dutch price will descend.
	DutchFloorPrice float64

	// WorkPoolSize bounds the call-for-proposal fan-out pool.
	WorkPoolSize int
}

func DefaultConfig() Config {
	return Config{
		TickInterval:      2 * time.Second,
		EnglishWindow:     1 * time.Second,
		DutchWindow:       2 * time.Second,
		BlindAuctionDelay: 10 * time.Second,
		BlindWindow:       2 * time.Second,
		MaxRounds:         5,
		MaxQuietRounds:    1,
		DutchDecayRate:    0.05,
		DutchFloorPrice:   1.0,
		WorkPoolSize:      8,
	}
}
