package auctiontypes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedPayload = errors.New("malformed payload")

type AuctionKind string

const (
	English AuctionKind = "ENGLISH"
	Dutch   AuctionKind = "DUTCH"
	Blind   AuctionKind = "BLIND"
)

// ParseAuctionKind defaults to English for unknown values, matching the
// admission behavior on requests with a missing or garbled Type field.
func ParseAuctionKind(s string) AuctionKind {
	switch AuctionKind(strings.ToUpper(strings.TrimSpace(s))) {
	case Dutch:
		return Dutch
	case Blind:
		return Blind
	default:
		return English
	}
}

// ItemMetadata is the description a publisher attaches to a new-auction
// request, wire form:
//
//	Title=;Author=;Genre=;Type=ENGLISH|DUTCH|BLIND;StartingPrice=;MinRating=
type ItemMetadata struct {
	Title         string
	Author        string
	Genre         string
	Kind          AuctionKind
	StartingPrice float64
	MinRating     int
}

// ParseItemMetadata tolerates unknown segments and a missing MinRating
// (treated as 0). A missing or unparseable StartingPrice is the one fatal
// defect: there is nothing to run a price protocol on.
func ParseItemMetadata(raw string) (ItemMetadata, error) {
	meta := ItemMetadata{Kind: English}
	havePrice := false

	for _, part := range strings.Split(raw, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		switch key {
		case "Title":
			meta.Title = value
		case "Author":
			meta.Author = value
		case "Genre":
			meta.Genre = value
		case "Type":
			meta.Kind = ParseAuctionKind(value)
		case "StartingPrice":
			price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return ItemMetadata{}, fmt.Errorf("%w: StartingPrice %q", ErrMalformedPayload, value)
			}
			meta.StartingPrice = price
			havePrice = true
		case "MinRating":
			rating, err := strconv.Atoi(strings.TrimSpace(value))
			if err == nil {
				meta.MinRating = rating
			}
		}
	}

	if !havePrice {
		return ItemMetadata{}, fmt.Errorf("%w: missing StartingPrice", ErrMalformedPayload)
	}
	return meta, nil
}

func (m ItemMetadata) Encode() string {
	return fmt.Sprintf("Title=%s;Author=%s;Genre=%s;Type=%s;StartingPrice=%s;MinRating=%d",
		m.Title, m.Author, m.Genre, m.Kind, FormatPrice(m.StartingPrice), m.MinRating)
}

// FormatPrice renders prices the way bidders send them: shortest exact
// decimal form.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func ParsePrice(content string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q", ErrMalformedPayload, content)
	}
	return price, nil
}
