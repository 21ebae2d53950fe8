package dto

import (
	"github.com/shopspring/decimal"

	"github.com/gavelworks/auction-service/internal/repository"
)

// UserStatusRequest payload for blocking or unblocking an account.
type UserStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// UserRolesRequest payload for replacing an account's business roles.
type UserRolesRequest struct {
	Roles []string `json:"roles"`
}

// SellerSalesResponse is one row of the seller sales report.
type SellerSalesResponse struct {
	Seller     UserResponse    `json:"seller"`
	TotalSales decimal.Decimal `json:"totalSales"`
	LotsSold   int64           `json:"lotsSold"`
}

// NewSellerSalesResponses maps the aggregated report rows.
func NewSellerSalesResponses(rows []repository.SellerSalesRow) []SellerSalesResponse {
	out := make([]SellerSalesResponse, 0, len(rows))
	for i := range rows {
		out = append(out, SellerSalesResponse{
			Seller:     NewUserResponse(&rows[i].Seller),
			TotalSales: rows[i].TotalSales,
			LotsSold:   rows[i].LotsSold,
		})
	}
	return out
}
