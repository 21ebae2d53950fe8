package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/gavelworks/auction-service/internal/api/dto"
	"github.com/gavelworks/auction-service/internal/service"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// ReportsHandler exposes the analytics endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// MaxPriceDifference handles GET /reports/lots/max-price-difference.
func (h *ReportsHandler) MaxPriceDifference(c *fiber.Ctx) error {
	lot, err := h.reports.MaxPriceDifference(c.UserContext())
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, dto.NewLotResponse(lot))
}

// MostSoldLots handles GET /reports/auctions/most-sold-lots.
func (h *ReportsHandler) MostSoldLots(c *fiber.Ctx) error {
	report, err := h.reports.MostSoldLots(c.UserContext())
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, fiber.Map{
		"auction":  dto.NewAuctionResponse(&report.Auction),
		"soldLots": report.SoldLots,
	})
}

// MostExpensiveSold handles GET /reports/lots/most-expensive-sold.
func (h *ReportsHandler) MostExpensiveSold(c *fiber.Ctx) error {
	report, err := h.reports.MostExpensiveSold(c.UserContext())
	if err != nil {
		return err
	}
	resp := fiber.Map{"lot": dto.NewLotResponse(&report.Lot)}
	if report.Buyer != nil {
		resp["buyer"] = dto.NewUserResponse(report.Buyer)
	}
	if report.Seller != nil {
		resp["seller"] = dto.NewUserResponse(report.Seller)
	}
	return dataResponse(c, http.StatusOK, resp)
}

// AuctionsWithoutSales handles GET /reports/auctions/without-sales.
func (h *ReportsHandler) AuctionsWithoutSales(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	auctions, total, err := h.reports.AuctionsWithoutSales(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewAuctionResponses(auctions), total, limit, offset))
}

// TopSold handles GET /reports/lots/top-sold with optional ?limit.
func (h *ReportsHandler) TopSold(c *fiber.Ctx) error {
	lots, err := h.reports.TopSold(c.UserContext(), c.QueryInt("limit", 3))
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, dto.NewLotResponses(lots))
}

// ItemsForSale handles GET /reports/lots/for-sale with optional ?date and
// ?auction filters.
func (h *ReportsHandler) ItemsForSale(c *fiber.Ctx) error {
	limit, offset := pageParams(c)

	var onDate *time.Time
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": raw})
		}
		onDate = &parsed
	}

	lots, total, err := h.reports.ItemsForSale(c.UserContext(), onDate, c.Query("auction"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewLotResponses(lots), total, limit, offset))
}

// BuyersByAuction handles GET /reports/buyers with ?auction filter.
func (h *ReportsHandler) BuyersByAuction(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	buyers, total, err := h.reports.BuyersByAuction(c.UserContext(), c.Query("auction"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewUserResponses(buyers), total, limit, offset))
}

// SellerSales handles GET /reports/sellers/sales with ?auction and
// ?minTotal filters.
func (h *ReportsHandler) SellerSales(c *fiber.Ctx) error {
	limit, offset := pageParams(c)

	minTotal := decimal.Zero
	if raw := strings.TrimSpace(c.Query("minTotal")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return apperrors.NewValidationError("minTotal must be a decimal number", map[string]any{"minTotal": raw})
		}
		minTotal = parsed
	}

	rows, total, err := h.reports.SellerSales(c.UserContext(), c.Query("auction"), minTotal, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewSellerSalesResponses(rows), total, limit, offset))
}
