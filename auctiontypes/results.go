package auctiontypes

import (
	"fmt"
	"strings"
)

const NoWinner = "None"

const roundCapNote = "--Closed due to 5 round limit."

// ResultSummary is the terminal report for a closed auction. Its wire shape
// is consumed by the publisher surface and must stay stable:
//
//	Auction <id> CLOSED. Winner: <name> | Final Price: <price> | Book Info: <metadata>
type ResultSummary struct {
	AuctionID  string
	Winner     string
	FinalPrice float64
	BookInfo   string

	// RoundCapped marks closure forced by the round limit rather than a
	// quiet round.
	RoundCapped bool
}

func (r ResultSummary) HasWinner() bool {
	return r.Winner != "" && r.Winner != NoWinner
}

func (r ResultSummary) Encode() string {
	winner := r.Winner
	if winner == "" {
		winner = NoWinner
	}
	summary := fmt.Sprintf("Auction %s CLOSED. Winner: %s | Final Price: %.2f | Book Info: %s",
		r.AuctionID, winner, r.FinalPrice, r.BookInfo)
	if r.RoundCapped {
		summary += "\n" + roundCapNote
	}
	return summary
}

func ParseResultSummary(content string) (ResultSummary, error) {
	result := ResultSummary{}

	line, note, _ := strings.Cut(content, "\n")
	result.RoundCapped = strings.Contains(note, roundCapNote)

	rest, found := strings.CutPrefix(line, "Auction ")
	if !found {
		return ResultSummary{}, fmt.Errorf("%w: result %q", ErrMalformedPayload, content)
	}
	result.AuctionID, rest, found = strings.Cut(rest, " CLOSED. Winner: ")
	if !found {
		return ResultSummary{}, fmt.Errorf("%w: result %q", ErrMalformedPayload, content)
	}
	result.Winner, rest, found = strings.Cut(rest, " | Final Price: ")
	if !found {
		return ResultSummary{}, fmt.Errorf("%w: result %q", ErrMalformedPayload, content)
	}
	priceStr, bookInfo, found := strings.Cut(rest, " | Book Info: ")
	if !found {
		return ResultSummary{}, fmt.Errorf("%w: result %q", ErrMalformedPayload, content)
	}

	price, err := ParsePrice(priceStr)
	if err != nil {
		return ResultSummary{}, err
	}
	result.FinalPrice = price
	result.BookInfo = bookInfo
	return result, nil
}

// EncodeWinNotice is the direct settlement notice a winning buyer receives.
func EncodeWinNotice(auctionID string, price float64) string {
	return fmt.Sprintf("You won auction %s at price %.2f", auctionID, price)
}

// ParseSettlementPrice pulls the settlement price out of a win notice. The
// buyer debits its budget with this value.
func ParseSettlementPrice(content string) (float64, error) {
	_, priceStr, found := strings.Cut(content, "at price ")
	if !found {
		return 0, fmt.Errorf("%w: win notice %q", ErrMalformedPayload, content)
	}
	return ParsePrice(priceStr)
}
