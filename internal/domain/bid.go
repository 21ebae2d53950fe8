package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bid is an append-only fact recording one price offer by one user on one
// lot. Bids are never mutated or deleted; the lot's current price and
// highest bidder are a derived projection of the latest accepted bid.
type Bid struct {
	ID       string
	LotID    string
	BidderID string
	Amount   decimal.Decimal
	PlacedAt time.Time
}
