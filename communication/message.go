package communication

import "strings"

// Intent tags the logical purpose of a message, the way ACL performatives
// and ontologies tag agent traffic. Payloads stay semicolon-delimited text;
// auctiontypes owns the codecs.
type Intent string

const (
	NewAuction         Intent = "new-auction"
	Announce           Intent = "announce"
	Subscribe          Intent = "subscribe"
	Register           Intent = "register"
	Deregister         Intent = "deregister"
	CallForProposal    Intent = "call-for-proposal"
	Proposal           Intent = "proposal"
	Cancel             Intent = "cancel"
	Result             Intent = "result"
	ReputationUpdate   Intent = "reputation-update"
	ReputationQuery    Intent = "reputation-query"
	ReputationResponse Intent = "reputation-response"
)

type Message struct {
	Intent  Intent
	Sender  string
	Content string

	// Auction carries the target auction id where the payload doesn't
	// (proposals and calls-for-proposal).
	Auction string

	// Human marks a direct human override bid. The engine applies these
	// immediately instead of waiting for a round window.
	Human bool
}

// Well-known actor names. Observer names are optional endpoints: the
// registry silently drops traffic to names nobody has claimed.
const (
	EngineName        = "auction-manager"
	RouterName        = "notification"
	LedgerName        = "reputation-manager"
	SellerObserver    = "auction-gui"
	BidderObserver    = "user-agent"
	bidderNameInfix   = "-bidder-"
)

// BidderName builds the ephemeral negotiator identity for one
// (buyer, auction) pair.
func BidderName(buyer, auctionID string) string {
	return buyer + bidderNameInfix + auctionID
}

// BuyerOf recovers the persistent buyer behind a negotiator name. Names
// without the infix are already persistent identities.
func BuyerOf(name string) string {
	if i := strings.Index(name, bidderNameInfix); i >= 0 {
		return name[:i]
	}
	return name
}

// IsEphemeral reports whether a name belongs to a short-lived negotiator.
// The router uses this to keep negotiators out of the interest index.
func IsEphemeral(name string) bool {
	return strings.Contains(name, bidderNameInfix)
}
