// Package strategies holds the decision functions negotiators bid with.
// Each strategy maps (reference price, budget) to a bid; anything at or
// below Withdraw means the negotiator should stop bidding. Instances carry
// their own seedable random source so runs can be replayed.
package strategies

import (
	"fmt"
	"math/rand"
)

type Kind string

const (
	OneShot     Kind = "ONESHOT"
	Periodic    Kind = "PERIODIC"
	AlwaysFirst Kind = "ALWAYSFIRST"
	Cautious    Kind = "CAUTIOUS"
)

// Withdraw is the non-positive sentinel a strategy returns to bow out.
const Withdraw = -1.0

type Strategy interface {
	// CalculateBid may mutate instance state (one-time flags, sampled
	// cutoffs), so one instance serves exactly one negotiation.
	CalculateBid(currentPrice, budget float64) float64
}

func New(kind Kind, r *rand.Rand) (Strategy, error) {
	switch kind {
	case OneShot:
		return &oneShot{}, nil
	case Periodic:
		return &periodic{r: r}, nil
	case AlwaysFirst:
		return &alwaysFirst{}, nil
	case Cautious:
		return &cautious{r: r, cutoffRatio: 0.7 + r.Float64()*0.1}, nil
	}
	return nil, fmt.Errorf("unknown strategy kind: %s", kind)
}

// oneShot commits once, between price+1 and 30% above the current price,
// never past budget. Every later call withdraws.
type oneShot struct {
	hasBid bool
}

func (s *oneShot) CalculateBid(currentPrice, budget float64) float64 {
	if s.hasBid {
		return Withdraw
	}
	s.hasBid = true

	maxWilling := min(budget, currentPrice*1.3)
	return max(currentPrice+1, min(budget, maxWilling))
}

// periodic raises 5–20% above current each call, capped at budget.
type periodic struct {
	r *rand.Rand
}

func (s *periodic) CalculateBid(currentPrice, budget float64) float64 {
	increment := currentPrice * (0.05 + s.r.Float64()*0.15)
	return min(currentPrice+increment, budget)
}

// alwaysFirst jumps half the remaining gap to budget, at least 1.
type alwaysFirst struct{}

func (s *alwaysFirst) CalculateBid(currentPrice, budget float64) float64 {
	jump := max(1.0, (budget-currentPrice)*0.5)
	return min(currentPrice+jump, budget)
}

// cautious raises 5–15% like periodic but samples a hard cutoff at 70–80%
// of budget when constructed. Once the price crosses the cutoff it
// withdraws for good.
type cautious struct {
	r           *rand.Rand
	cutoffRatio float64
	stopped     bool
}

func (s *cautious) CalculateBid(currentPrice, budget float64) float64 {
	cutoff := budget * s.cutoffRatio

	if s.stopped || currentPrice >= cutoff {
		s.stopped = true
		return Withdraw
	}

	increment := currentPrice * (0.05 + s.r.Float64()*0.1)
	return min(currentPrice+increment, cutoff)
}
