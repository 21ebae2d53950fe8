package domain

import "time"

// AuctionStatus enumerates lifecycle states for auctions.
type AuctionStatus string

const (
	AuctionStatusPlanned  AuctionStatus = "PLANNED"
	AuctionStatusBidding  AuctionStatus = "BIDDING"
	AuctionStatusFinished AuctionStatus = "FINISHED"
)

// Valid reports whether the status is a known enumeration member.
func (s AuctionStatus) Valid() bool {
	switch s {
	case AuctionStatusPlanned, AuctionStatusBidding, AuctionStatusFinished:
		return true
	}
	return false
}

// CanTransitionTo encodes the one-directional auction lifecycle:
// Planned -> Bidding -> Finished, no reverse moves.
func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	switch s {
	case AuctionStatusPlanned:
		return next == AuctionStatusBidding
	case AuctionStatusBidding:
		return next == AuctionStatusFinished
	case AuctionStatusFinished:
		return false
	}
	return false
}

// Auction is the aggregate owning an ordered collection of lots.
type Auction struct {
	ID          string
	Name        string
	Description string
	ScheduledAt time.Time
	Location    string
	Status      AuctionStatus
	CreatedByID string
	Lots        []Lot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
