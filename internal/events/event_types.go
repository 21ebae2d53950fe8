package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gavelworks/auction-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAuctionCreated       EventType = "auction_created"
	EventAuctionStatusChanged EventType = "auction_status_changed"
	EventLotCreated           EventType = "lot_created"
	EventBidPlaced            EventType = "bid_placed"
	EventLotSold              EventType = "lot_sold"
	EventLotUnsold            EventType = "lot_unsold"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AuctionID string      `json:"auction_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AuctionStatusChangedPayload payload.
type AuctionStatusChangedPayload struct {
	OldStatus domain.AuctionStatus `json:"old_status"`
	NewStatus domain.AuctionStatus `json:"new_status"`
}

// LotCreatedPayload payload.
type LotCreatedPayload struct {
	LotID      string          `json:"lot_id"`
	LotNumber  int             `json:"lot_number"`
	SellerID   string          `json:"seller_id"`
	StartPrice decimal.Decimal `json:"start_price"`
}

// BidPlacedPayload payload.
type BidPlacedPayload struct {
	LotID    string          `json:"lot_id"`
	BidderID string          `json:"bidder_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// LotSoldPayload payload.
type LotSoldPayload struct {
	LotID      string          `json:"lot_id"`
	BuyerID    string          `json:"buyer_id"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

// LotUnsoldPayload payload.
type LotUnsoldPayload struct {
	LotID string `json:"lot_id"`
}
