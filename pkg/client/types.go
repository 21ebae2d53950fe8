package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is an acting capacity within the marketplace.
type Role string

const (
	RoleBuyer       Role = "BUYER"
	RoleSeller      Role = "SELLER"
	RoleSystemAdmin Role = "SYSTEM_ADMIN"
)

// User is the API projection of an account.
type User struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	PassportID     string    `json:"passportId"`
	IsAdmin        bool      `json:"isAdmin"`
	IsActive       bool      `json:"isActive"`
	AvailableRoles []Role    `json:"availableRoles"`
	RegisteredAt   time.Time `json:"registeredAt"`
}

// Auction is the API projection of an auction.
type Auction struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	CreatedByID string    `json:"createdById"`
	Lots        []Lot     `json:"lots,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Lot is the API projection of a lot.
type Lot struct {
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

// Bid is one accepted bid.
type Bid struct {
	ID       string          `json:"id"`
	LotID    string          `json:"lotId"`
	BidderID string          `json:"bidderId"`
	Amount   decimal.Decimal `json:"amount"`
	PlacedAt time.Time       `json:"placedAt"`
}

// Pagination is the listing metadata attached to every page.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// Page wraps one page of results.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// PageQuery selects a page of a listing. Zero values mean server defaults.
type PageQuery struct {
	Page     int
	PageSize int
}

// Credentials is what login hands back: the bearer token plus the active
// role the session was established under.
type Credentials struct {
	Token      string    `json:"token"`
	ActiveRole Role      `json:"activeRole"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	PassportID string `json:"passportId"`
}

// AuctionInput is the create/update auction payload.
type AuctionInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Location    string    `json:"location"`
}

// LotInput is the create/update lot payload.
type LotInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartPrice  decimal.Decimal `json:"startPrice"`
}

// BuyerActivity groups a buyer's open leads and won lots.
type BuyerActivity struct {
	Leading []Lot `json:"leading"`
	Won     []Lot `json:"won"`
}
