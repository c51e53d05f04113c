package auctiontypes

import (
	"fmt"
	"strings"
)

// Announcement is the fan-out form of an admitted auction:
// auctionId;<metadata fields>.
type Announcement struct {
	AuctionID string
	Metadata  ItemMetadata
}

func (a Announcement) Encode() string {
	return a.AuctionID + ";" + a.Metadata.Encode()
}

func ParseAnnouncement(content string) (Announcement, error) {
	id, rest, found := strings.Cut(content, ";")
	if !found || id == "" {
		return Announcement{}, fmt.Errorf("%w: announcement %q", ErrMalformedPayload, content)
	}

	meta, err := ParseItemMetadata(rest)
	if err != nil {
		return Announcement{}, err
	}

	return Announcement{AuctionID: id, Metadata: meta}, nil
}

// Acceptance is a Dutch-auction proposal payload: price;threshold. A bare
// number (the human bidding surface sends one) stands for both fields.
type Acceptance struct {
	Price     float64
	Threshold float64
}

func (a Acceptance) Encode() string {
	return fmt.Sprintf("%.2f;%.2f", a.Price, a.Threshold)
}

func ParseAcceptance(content string) (Acceptance, error) {
	priceStr, thresholdStr, found := strings.Cut(strings.TrimSpace(content), ";")
	if !found {
		thresholdStr = priceStr
	}

	price, err := ParsePrice(priceStr)
	if err != nil {
		return Acceptance{}, err
	}
	threshold, err := ParsePrice(thresholdStr)
	if err != nil {
		return Acceptance{}, err
	}

	return Acceptance{Price: price, Threshold: threshold}, nil
}
