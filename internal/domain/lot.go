package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotStatus enumerates lifecycle states for lots.
type LotStatus string

const (
	LotStatusAwaitingBidding LotStatus = "AWAITING_BIDDING"
	LotStatusBidding         LotStatus = "BIDDING"
	LotStatusSold            LotStatus = "SOLD"
	LotStatusUnsold          LotStatus = "UNSOLD"
)

// Valid reports whether the status is a known enumeration member.
func (s LotStatus) Valid() bool {
	switch s {
	case LotStatusAwaitingBidding, LotStatusBidding, LotStatusSold, LotStatusUnsold:
		return true
	}
	return false
}

// Lot is one item up for bid within an auction. Monetary fields are exact
// decimals with two fraction digits; CurrentPrice never decreases.
type Lot struct {
	ID              string
	AuctionID       string
	LotNumber       int
	Name            string
	Description     string
	SellerID        string
	StartPrice      decimal.Decimal
	CurrentPrice    decimal.Decimal
	FinalPrice      *decimal.Decimal
	Status          LotStatus
	HighestBidderID *string
	FinalBuyerID    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Open reports whether the lot can still accept bids.
func (l *Lot) Open() bool {
	switch l.Status {
	case LotStatusAwaitingBidding, LotStatusBidding:
		return true
	case LotStatusSold, LotStatusUnsold:
		return false
	}
	return false
}

// HasBids reports whether at least one bid has been accepted on the lot.
func (l *Lot) HasBids() bool {
	return l.HighestBidderID != nil
}

// RaisesPrice reports whether the amount strictly exceeds the current price.
// Ties are rejected: equal-price raising is not allowed.
func (l *Lot) RaisesPrice(amount decimal.Decimal) bool {
	return amount.GreaterThan(l.CurrentPrice)
}

// ApplyBid records an accepted bid: the current price rises to the bid
// amount, the bidder becomes the highest bidder, and a lot still awaiting
// bidding moves to Bidding.
func (l *Lot) ApplyBid(bidderID string, amount decimal.Decimal) {
	l.CurrentPrice = amount
	bidder := bidderID
	l.HighestBidderID = &bidder
	if l.Status == LotStatusAwaitingBidding {
		l.Status = LotStatusBidding
	}
}

// MarkSold resolves the lot at auction finish. FinalPrice and FinalBuyerID
// are set together with the Sold status and are immutable afterwards; the
// highest-bidder projection is superseded by the final buyer.
func (l *Lot) MarkSold() {
	final := l.CurrentPrice
	buyer := *l.HighestBidderID
	l.Status = LotStatusSold
	l.FinalPrice = &final
	l.FinalBuyerID = &buyer
	l.HighestBidderID = nil
}

// MarkUnsold resolves the lot without a sale; final fields stay unset.
func (l *Lot) MarkUnsold() {
	l.Status = LotStatusUnsold
	l.HighestBidderID = nil
	l.FinalPrice = nil
	l.FinalBuyerID = nil
}
