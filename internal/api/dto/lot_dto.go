package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gavelworks/auction-service/internal/domain"
)

// LotCreateRequest payload for adding a lot to a planned auction.
type LotCreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartPrice  decimal.Decimal `json:"startPrice"`
}

// LotUpdateRequest payload for editing a lot that has not seen bidding.
type LotUpdateRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	StartPrice  *decimal.Decimal `json:"startPrice"`
}

// BidRequest payload for placing a bid.
type BidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// LotResponse is the public projection of a lot.
type LotResponse struct {
	ID              string           `json:"id"`
	AuctionID       string           `json:"auctionId"`
	LotNumber       int              `json:"lotNumber"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	SellerID        string           `json:"sellerId"`
	StartPrice      decimal.Decimal  `json:"startPrice"`
	CurrentPrice    decimal.Decimal  `json:"currentPrice"`
	FinalPrice      *decimal.Decimal `json:"finalPrice,omitempty"`
	Status          string           `json:"status"`
	HighestBidderID *string          `json:"highestBidderId,omitempty"`
	FinalBuyerID    *string          `json:"finalBuyerId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// NewLotResponse maps a lot aggregate into the response shape.
func NewLotResponse(lot *domain.Lot) LotResponse {
	return LotResponse{
		ID:              lot.ID,
		AuctionID:       lot.AuctionID,
		LotNumber:       lot.LotNumber,
		Name:            lot.Name,
		Description:     lot.Description,
		SellerID:        lot.SellerID,
		StartPrice:      lot.StartPrice,
		CurrentPrice:    lot.CurrentPrice,
		FinalPrice:      lot.FinalPrice,
		Status:          string(lot.Status),
		HighestBidderID: lot.HighestBidderID,
		FinalBuyerID:    lot.FinalBuyerID,
		CreatedAt:       lot.CreatedAt,
		UpdatedAt:       lot.UpdatedAt,
	}
}

// NewLotResponses maps a slice of lots.
func NewLotResponses(lots []domain.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for i := range lots {
		out = append(out, NewLotResponse(&lots[i]))
	}
	return out
}

// BidResponse is the public projection of an accepted bid.
type BidResponse struct {
	ID       string          `json:"id"`
	LotID    string          `json:"lotId"`
	BidderID string          `json:"bidderId"`
	Amount   decimal.Decimal `json:"amount"`
	PlacedAt time.Time       `json:"placedAt"`
}

// NewBidResponse maps a bid record.
func NewBidResponse(bid *domain.Bid) BidResponse {
	return BidResponse{
		ID:       bid.ID,
		LotID:    bid.LotID,
		BidderID: bid.BidderID,
		Amount:   bid.Amount,
		PlacedAt: bid.PlacedAt,
	}
}

// NewBidResponses maps a slice of bids.
func NewBidResponses(bids []domain.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for i := range bids {
		out = append(out, NewBidResponse(&bids[i]))
	}
	return out
}
