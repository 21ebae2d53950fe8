package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/events"
	"github.com/gavelworks/auction-service/internal/repository"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// LotCreateInput describes lot creation payload. The lot number is
// assigned by the repository, not the caller.
type LotCreateInput struct {
	Name        string
	Description string
	StartPrice  decimal.Decimal
}

// LotUpdateInput describes the editable lot fields.
type LotUpdateInput struct {
	Name        *string
	Description *string
	StartPrice  *decimal.Decimal
}

// LotService owns lot composition and the bidding rules.
type LotService struct {
	auctions   repository.AuctionRepository
	lots       repository.LotRepository
	bids       repository.BidRepository
	dispatcher events.Dispatcher
}

// NewLotService constructs the service.
func NewLotService(auctions repository.AuctionRepository, lots repository.LotRepository, bids repository.BidRepository, dispatcher events.Dispatcher) *LotService {
	return &LotService{auctions: auctions, lots: lots, bids: bids, dispatcher: dispatcher}
}

// Create adds a lot to a planned auction. Sellers add lots of their own;
// the administrator may add lots on a seller's behalf by naming the seller.
func (s *LotService) Create(ctx context.Context, actor Actor, auctionID string, input LotCreateInput) (*domain.Lot, error) {
	auction, err := s.getAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !actorMayManageAuctions(actor.Role) {
		return nil, apperrors.NewForbidden("only sellers or the administrator may add lots")
	}
	if auction.Status != domain.AuctionStatusPlanned {
		return nil, apperrors.NewConflict("lots can only be added while the auction is planned",
			map[string]any{"status": auction.Status})
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("lot name required", nil)
	}
	if err := validateAmount(input.StartPrice); err != nil {
		return nil, err
	}

	lot := &domain.Lot{
		AuctionID:    auctionID,
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		SellerID:     actor.UserID,
		StartPrice:   input.StartPrice,
		CurrentPrice: input.StartPrice,
		Status:       domain.LotStatusAwaitingBidding,
	}
	if err := s.lots.Create(ctx, lot); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventLotCreated,
		AuctionID: auctionID,
		ActorID:   actor.UserID,
		Payload: events.LotCreatedPayload{
			LotID:      lot.ID,
			LotNumber:  lot.LotNumber,
			SellerID:   lot.SellerID,
			StartPrice: lot.StartPrice,
		},
	})
	return lot, nil
}

// Get returns a single lot belonging to the given auction.
func (s *LotService) Get(ctx context.Context, auctionID, lotID string) (*domain.Lot, error) {
	lot, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("lot", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if lot.AuctionID != auctionID {
		return nil, apperrors.NewNotFound("lot", nil)
	}
	return lot, nil
}

// ListByAuction returns a page of the auction's lots in lot-number order.
func (s *LotService) ListByAuction(ctx context.Context, auctionID string, limit, offset int) ([]domain.Lot, int64, error) {
	if _, err := s.getAuction(ctx, auctionID); err != nil {
		return nil, 0, err
	}
	lots, total, err := s.lots.List(ctx, repository.LotFilter{
		AuctionID: &auctionID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return lots, total, nil
}

// Update edits a lot. Only possible while the auction is still planned and
// the lot has not collected any bids.
func (s *LotService) Update(ctx context.Context, actor Actor, auctionID, lotID string, input LotUpdateInput) (*domain.Lot, error) {
	_, lot, err := s.getEditableLot(ctx, actor, auctionID, lotID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewValidationError("lot name cannot be empty", nil)
		}
		lot.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		lot.Description = strings.TrimSpace(*input.Description)
	}
	if input.StartPrice != nil {
		if err := validateAmount(*input.StartPrice); err != nil {
			return nil, err
		}
		lot.StartPrice = *input.StartPrice
		lot.CurrentPrice = *input.StartPrice
	}

	if err := s.lots.Update(ctx, lot); err != nil {
		return nil, apperrors.MapError(err)
	}
	return lot, nil
}

// Delete removes a lot under the same conditions that allow editing it.
func (s *LotService) Delete(ctx context.Context, actor Actor, auctionID, lotID string) error {
	_, lot, err := s.getEditableLot(ctx, actor, auctionID, lotID)
	if err != nil {
		return err
	}
	if err := s.lots.Delete(ctx, lot.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// PlaceBid validates and records a bid. A bid is accepted only when the
// auction is in active bidding, the lot is still open, the bidder is a
// buyer who does not own the lot, the amount strictly exceeds the current
// price, and the bidder is not already leading another open lot in the same
// auction. An accepted bid raises the current price and makes the bidder
// the highest bidder.
func (s *LotService) PlaceBid(ctx context.Context, actor Actor, auctionID, lotID string, amount decimal.Decimal) (*domain.Bid, *domain.Lot, error) {
	if actor.Role == domain.RoleSystemAdmin {
		return nil, nil, apperrors.NewForbidden("the administrator cannot place bids")
	}
	if actor.Role != domain.RoleBuyer {
		return nil, nil, apperrors.NewForbidden("only buyers may place bids")
	}

	auction, err := s.getAuction(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}
	if auction.Status != domain.AuctionStatusBidding {
		return nil, nil, apperrors.NewConflict("auction is not accepting bids",
			map[string]any{"status": auction.Status})
	}

	lot, err := s.Get(ctx, auctionID, lotID)
	if err != nil {
		return nil, nil, err
	}
	if !lot.Open() {
		return nil, nil, apperrors.NewConflict("lot is no longer open for bidding",
			map[string]any{"status": lot.Status})
	}
	if lot.SellerID == actor.UserID {
		return nil, nil, apperrors.NewForbidden("sellers cannot bid on their own lots")
	}
	if err := validateAmount(amount); err != nil {
		return nil, nil, err
	}
	if !lot.RaisesPrice(amount) {
		return nil, nil, apperrors.NewValidationError("bid must exceed the current price",
			map[string]any{"current_price": lot.CurrentPrice})
	}

	// One item per auction: a buyer leading one open lot may not start
	// leading another in the same auction.
	leading, err := s.lots.ListLeadingByBidder(ctx, actor.UserID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	for i := range leading {
		if leading[i].AuctionID == auctionID && leading[i].ID != lot.ID {
			return nil, nil, apperrors.NewConflict("already leading another lot in this auction",
				map[string]any{"lot_id": leading[i].ID})
		}
	}

	bid := &domain.Bid{
		LotID:    lot.ID,
		BidderID: actor.UserID,
		Amount:   amount,
	}
	if err := s.bids.Create(ctx, bid); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	lot.ApplyBid(actor.UserID, amount)
	if err := s.lots.Update(ctx, lot); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventBidPlaced,
		AuctionID: auctionID,
		ActorID:   actor.UserID,
		Payload: events.BidPlacedPayload{
			LotID:    lot.ID,
			BidderID: actor.UserID,
			Amount:   amount,
		},
	})
	return bid, lot, nil
}

// BidsByLot returns a page of the lot's bid history, newest first.
func (s *LotService) BidsByLot(ctx context.Context, auctionID, lotID string, limit, offset int) ([]domain.Bid, int64, error) {
	if _, err := s.Get(ctx, auctionID, lotID); err != nil {
		return nil, 0, err
	}
	bids, total, err := s.bids.ListByLot(ctx, lotID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return bids, total, nil
}

func (s *LotService) getAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	auction, err := s.auctions.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("auction", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return auction, nil
}

// getEditableLot loads the lot and checks the edit preconditions: actor
// owns the lot (or is the administrator), auction still planned, no bids.
func (s *LotService) getEditableLot(ctx context.Context, actor Actor, auctionID, lotID string) (*domain.Auction, *domain.Lot, error) {
	auction, err := s.getAuction(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}
	lot, err := s.Get(ctx, auctionID, lotID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role != domain.RoleSystemAdmin && lot.SellerID != actor.UserID {
		return nil, nil, apperrors.NewForbidden("not permitted to modify this lot")
	}
	if auction.Status != domain.AuctionStatusPlanned {
		return nil, nil, apperrors.NewConflict("lots can only be modified while the auction is planned",
			map[string]any{"status": auction.Status})
	}
	if lot.HasBids() || lot.Status != domain.LotStatusAwaitingBidding {
		return nil, nil, apperrors.NewConflict("lot already has bidding activity", nil)
	}
	return auction, lot, nil
}

// validateAmount enforces positive amounts with at most two fraction digits.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError("amount must be positive", nil)
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.NewValidationError("amount must have at most two decimal places", nil)
	}
	return nil
}

func (s *LotService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
