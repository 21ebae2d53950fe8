package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gavelworks/auction-service/internal/api/dto"
	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/repository"
	"github.com/gavelworks/auction-service/internal/service"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// AuctionsHandler exposes the auction catalog and lifecycle endpoints.
type AuctionsHandler struct {
	auctions *service.AuctionService
}

// NewAuctionsHandler constructs handler.
func NewAuctionsHandler(auctions *service.AuctionService) *AuctionsHandler {
	return &AuctionsHandler{auctions: auctions}
}

// List handles GET /auctions with optional ?status and ?q filters.
func (h *AuctionsHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	filter := repository.AuctionFilter{Limit: limit, Offset: offset}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := domain.AuctionStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return apperrors.NewValidationError("unknown auction status", map[string]any{"status": raw})
		}
		filter.Status = &status
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filter.SearchTerm = &q
	}

	auctions, total, err := h.auctions.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewAuctionResponses(auctions), total, limit, offset))
}

// Get handles GET /auctions/:auctionId, returning lots in lot-number order.
func (h *AuctionsHandler) Get(c *fiber.Ctx) error {
	auction, err := h.auctions.Get(c.UserContext(), c.Params("auctionId"))
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, dto.NewAuctionResponse(auction))
}

// Create handles POST /auctions.
func (h *AuctionsHandler) Create(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AuctionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	auction, err := h.auctions.Create(c.UserContext(), actor, service.AuctionCreateInput{
		Name:        req.Name,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusCreated, dto.NewAuctionResponse(auction))
}

// Update handles PUT /auctions/:auctionId.
func (h *AuctionsHandler) Update(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AuctionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	auction, err := h.auctions.Update(c.UserContext(), actor, c.Params("auctionId"), service.AuctionUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, dto.NewAuctionResponse(auction))
}

// ChangeStatus handles PATCH /auctions/:auctionId/status.
func (h *AuctionsHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AuctionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	auction, err := h.auctions.ChangeStatus(c.UserContext(), actor, c.Params("auctionId"),
		domain.AuctionStatus(strings.ToUpper(strings.TrimSpace(req.Status))))
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, dto.NewAuctionResponse(auction))
}

// Delete handles DELETE /auctions/:auctionId.
func (h *AuctionsHandler) Delete(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.auctions.Delete(c.UserContext(), actor, c.Params("auctionId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
