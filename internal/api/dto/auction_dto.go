package dto

import (
	"time"

	"github.com/gavelworks/auction-service/internal/domain"
)

// AuctionCreateRequest payload for opening a new auction.
type AuctionCreateRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Location    string    `json:"location"`
}

// AuctionUpdateRequest payload for editing a planned auction. Absent fields
// keep their current values.
type AuctionUpdateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Location    *string    `json:"location"`
}

// AuctionStatusRequest payload for lifecycle transitions.
type AuctionStatusRequest struct {
	Status string `json:"status"`
}

// AuctionResponse is the public projection of an auction.
type AuctionResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	ScheduledAt time.Time     `json:"scheduledAt"`
	Location    string        `json:"location"`
	Status      string        `json:"status"`
	CreatedByID string        `json:"createdById"`
	Lots        []LotResponse `json:"lots,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// NewAuctionResponse maps an auction aggregate, including any loaded lots.
func NewAuctionResponse(auction *domain.Auction) AuctionResponse {
	resp := AuctionResponse{
		ID:          auction.ID,
		Name:        auction.Name,
		Description: auction.Description,
		ScheduledAt: auction.ScheduledAt,
		Location:    auction.Location,
		Status:      string(auction.Status),
		CreatedByID: auction.CreatedByID,
		CreatedAt:   auction.CreatedAt,
		UpdatedAt:   auction.UpdatedAt,
	}
	for i := range auction.Lots {
		resp.Lots = append(resp.Lots, NewLotResponse(&auction.Lots[i]))
	}
	return resp
}

// NewAuctionResponses maps a slice of auctions without their lots.
func NewAuctionResponses(auctions []domain.Auction) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(auctions))
	for i := range auctions {
		item := auctions[i]
		item.Lots = nil
		out = append(out, NewAuctionResponse(&item))
	}
	return out
}
