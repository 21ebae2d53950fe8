package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gavelworks/auction-service/internal/api/dto"
	"github.com/gavelworks/auction-service/internal/observability"
	"github.com/gavelworks/auction-service/internal/service"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// LotsHandler exposes nested lot endpoints under an auction, including
// bidding.
type LotsHandler struct {
	lots    *service.LotService
	metrics *observability.Metrics
}

// NewLotsHandler constructs handler.
func NewLotsHandler(lots *service.LotService, metrics *observability.Metrics) *LotsHandler {
	return &LotsHandler{lots: lots, metrics: metrics}
}

// List handles GET /auctions/:auctionId/lots.
func (h *LotsHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	lots, total, err := h.lots.ListByAuction(c.UserContext(), c.Params("auctionId"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewLotResponses(lots), total, limit, offset))
}

// Get handles GET /auctions/:auctionId/lots/:lotId.
func (h *LotsHandler) Get(c *fiber.Ctx) error {
	lot, err := h.lots.Get(c.UserContext(), c.Params("auctionId"), c.Params("lotId"))
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, dto.NewLotResponse(lot))
}

// Create handles POST /auctions/:auctionId/lots.
func (h *LotsHandler) Create(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.LotCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lot, err := h.lots.Create(c.UserContext(), actor, c.Params("auctionId"), service.LotCreateInput{
		Name:        req.Name,
		Description: req.Description,
		StartPrice:  req.StartPrice,
	})
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusCreated, dto.NewLotResponse(lot))
}

// Update handles PUT /auctions/:auctionId/lots/:lotId.
func (h *LotsHandler) Update(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.LotUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lot, err := h.lots.Update(c.UserContext(), actor, c.Params("auctionId"), c.Params("lotId"), service.LotUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		StartPrice:  req.StartPrice,
	})
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, dto.NewLotResponse(lot))
}

// Delete handles DELETE /auctions/:auctionId/lots/:lotId.
func (h *LotsHandler) Delete(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.lots.Delete(c.UserContext(), actor, c.Params("auctionId"), c.Params("lotId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// PlaceBid handles POST /auctions/:auctionId/lots/:lotId/bids.
func (h *LotsHandler) PlaceBid(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.BidRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	bid, lot, err := h.lots.PlaceBid(c.UserContext(), actor, c.Params("auctionId"), c.Params("lotId"), req.Amount)
	if err != nil {
		return err
	}
	h.metrics.RecordBid()
	return dataResponse(c, http.StatusCreated, fiber.Map{
		"bid": dto.NewBidResponse(bid),
		"lot": dto.NewLotResponse(lot),
	})
}

// Bids handles GET /auctions/:auctionId/lots/:lotId/bids.
func (h *LotsHandler) Bids(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	bids, total, err := h.lots.BidsByLot(c.UserContext(), c.Params("auctionId"), c.Params("lotId"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewBidResponses(bids), total, limit, offset))
}
