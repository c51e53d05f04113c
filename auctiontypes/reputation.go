package auctiontypes

import (
	"fmt"
	"strings"
)

// ReputationEvent names one countable act in a buyer's history.
type ReputationEvent string

const (
	EventJoined    ReputationEvent = "joined"
	EventWon       ReputationEvent = "won"
	EventEarlyExit ReputationEvent = "earlyExit"
)

// EncodeReputationUpdate builds the buyerName;event payload the engine
// sends to the ledger.
func EncodeReputationUpdate(buyer string, event ReputationEvent) string {
	return buyer + ";" + string(event)
}

func ParseReputationUpdate(content string) (string, ReputationEvent, error) {
	buyer, eventStr, found := strings.Cut(content, ";")
	if !found || buyer == "" {
		return "", "", fmt.Errorf("%w: reputation update %q", ErrMalformedPayload, content)
	}

	event := ReputationEvent(eventStr)
	switch event {
	case EventJoined, EventWon, EventEarlyExit:
		return buyer, event, nil
	}
	return "", "", fmt.Errorf("%w: reputation event %q", ErrMalformedPayload, eventStr)
}
