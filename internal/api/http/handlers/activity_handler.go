package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gavelworks/auction-service/internal/api/dto"
	"github.com/gavelworks/auction-service/internal/service"
)

// ActivityHandler exposes the authenticated user's marketplace position.
type ActivityHandler struct {
	activity *service.ActivityService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// BuyerActivity handles GET /my/activity: lots currently led and lots won.
func (h *ActivityHandler) BuyerActivity(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	activity, err := h.activity.BuyerActivity(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return dataResponse(c, http.StatusOK, fiber.Map{
		"leading": dto.NewLotResponses(activity.Leading),
		"won":     dto.NewLotResponses(activity.Won),
	})
}

// SellerListings handles GET /my/listings: lots put up by the seller.
func (h *ActivityHandler) SellerListings(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	limit, offset := pageParams(c)
	lots, total, err := h.activity.SellerListings(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewLotResponses(lots), total, limit, offset))
}

// SellerAuctions handles GET /my/auctions: auctions created by the seller.
func (h *ActivityHandler) SellerAuctions(c *fiber.Ctx) error {
	actor, _, err := requireActor(c)
	if err != nil {
		return err
	}
	limit, offset := pageParams(c)
	auctions, total, err := h.activity.SellerAuctions(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPage(dto.NewAuctionResponses(auctions), total, limit, offset))
}
