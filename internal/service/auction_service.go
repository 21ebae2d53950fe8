package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/events"
	"github.com/gavelworks/auction-service/internal/repository"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// AuctionCreateInput describes auction creation payload.
type AuctionCreateInput struct {
	Name        string
	Description string
	ScheduledAt time.Time
	Location    string
}

// AuctionUpdateInput describes the editable auction fields.
type AuctionUpdateInput struct {
	Name        *string
	Description *string
	ScheduledAt *time.Time
	Location    *string
}

// AuctionService encodes the auction lifecycle: which status moves are
// permitted, who may make them, and what each move does to the lots.
type AuctionService struct {
	auctions   repository.AuctionRepository
	dispatcher events.Dispatcher
}

// NewAuctionService constructs the service.
func NewAuctionService(auctions repository.AuctionRepository, dispatcher events.Dispatcher) *AuctionService {
	return &AuctionService{auctions: auctions, dispatcher: dispatcher}
}

// Create opens a new auction in Planned status.
func (s *AuctionService) Create(ctx context.Context, actor Actor, input AuctionCreateInput) (*domain.Auction, error) {
	if !actorMayManageAuctions(actor.Role) {
		return nil, apperrors.NewForbidden("only sellers or the administrator may create auctions")
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Location) == "" {
		return nil, apperrors.NewValidationError("name and location required", nil)
	}
	if input.ScheduledAt.IsZero() {
		return nil, apperrors.NewValidationError("scheduled date required", nil)
	}

	auction := &domain.Auction{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		ScheduledAt: input.ScheduledAt,
		Location:    strings.TrimSpace(input.Location),
		Status:      domain.AuctionStatusPlanned,
		CreatedByID: actor.UserID,
	}
	if err := s.auctions.Create(ctx, auction); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventAuctionCreated,
		AuctionID: auction.ID,
		ActorID:   actor.UserID,
	})
	return auction, nil
}

// Get returns one auction with its lots in lot-number order.
func (s *AuctionService) Get(ctx context.Context, id string) (*domain.Auction, error) {
	auction, err := s.auctions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("auction", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return auction, nil
}

// List returns a page of auctions matching the filter.
func (s *AuctionService) List(ctx context.Context, filter repository.AuctionFilter) ([]domain.Auction, int64, error) {
	auctions, total, err := s.auctions.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return auctions, total, nil
}

// Update edits auction details. Only planned auctions may change, and only
// by the administrator or the seller who created them.
func (s *AuctionService) Update(ctx context.Context, actor Actor, auctionID string, input AuctionUpdateInput) (*domain.Auction, error) {
	auction, err := s.Get(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !actorMayAdministerAuction(actor, auction) {
		return nil, apperrors.NewForbidden("not permitted to edit this auction")
	}
	if auction.Status != domain.AuctionStatusPlanned {
		return nil, apperrors.NewConflict("only planned auctions can be edited",
			map[string]any{"status": auction.Status})
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		auction.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		auction.Description = strings.TrimSpace(*input.Description)
	}
	if input.ScheduledAt != nil {
		if input.ScheduledAt.IsZero() {
			return nil, apperrors.NewValidationError("scheduled date cannot be empty", nil)
		}
		auction.ScheduledAt = *input.ScheduledAt
	}
	if input.Location != nil {
		if strings.TrimSpace(*input.Location) == "" {
			return nil, apperrors.NewValidationError("location cannot be empty", nil)
		}
		auction.Location = strings.TrimSpace(*input.Location)
	}

	if err := s.auctions.Update(ctx, auction); err != nil {
		return nil, apperrors.MapError(err)
	}
	return auction, nil
}

// ChangeStatus moves the auction along its one-directional lifecycle.
// Finishing an auction simultaneously resolves every open lot: a lot with a
// highest bidder sells at its current price to that bidder, unless the
// bidder already won an earlier lot in this auction (one item per auction);
// every other open lot resolves Unsold. Lots are walked in lot-number order
// so the allocation is deterministic.
func (s *AuctionService) ChangeStatus(ctx context.Context, actor Actor, auctionID string, newStatus domain.AuctionStatus) (*domain.Auction, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown auction status", map[string]any{"status": newStatus})
	}

	auction, err := s.Get(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !actorMayAdministerAuction(actor, auction) {
		return nil, apperrors.NewForbidden("not permitted to change this auction's status")
	}
	if auction.Status == newStatus {
		return auction, nil
	}
	if !auction.Status.CanTransitionTo(newStatus) {
		return nil, apperrors.NewConflict("status transition not allowed",
			map[string]any{"from": auction.Status, "to": newStatus})
	}

	oldStatus := auction.Status
	var resolved []domain.Lot

	if newStatus == domain.AuctionStatusFinished {
		resolved = resolveLots(auction.Lots)
	}

	if err := s.auctions.UpdateStatusWithLots(ctx, auctionID, newStatus, resolved); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventAuctionStatusChanged,
		AuctionID: auctionID,
		ActorID:   actor.UserID,
		Payload:   events.AuctionStatusChangedPayload{OldStatus: oldStatus, NewStatus: newStatus},
	})
	for _, lot := range resolved {
		switch lot.Status {
		case domain.LotStatusSold:
			s.publish(ctx, events.Event{
				Type:      events.EventLotSold,
				AuctionID: auctionID,
				ActorID:   actor.UserID,
				Payload: events.LotSoldPayload{
					LotID:      lot.ID,
					BuyerID:    *lot.FinalBuyerID,
					FinalPrice: *lot.FinalPrice,
				},
			})
		case domain.LotStatusUnsold:
			s.publish(ctx, events.Event{
				Type:      events.EventLotUnsold,
				AuctionID: auctionID,
				ActorID:   actor.UserID,
				Payload:   events.LotUnsoldPayload{LotID: lot.ID},
			})
		}
	}

	return s.Get(ctx, auctionID)
}

// Delete removes an auction. An auction in active bidding cannot be
// removed; it has to be finished first.
func (s *AuctionService) Delete(ctx context.Context, actor Actor, auctionID string) error {
	auction, err := s.Get(ctx, auctionID)
	if err != nil {
		return err
	}
	if !actorMayAdministerAuction(actor, auction) {
		return apperrors.NewForbidden("not permitted to delete this auction")
	}
	if auction.Status == domain.AuctionStatusBidding {
		return apperrors.NewConflict("cannot delete an auction in active bidding", nil)
	}
	if err := s.auctions.Delete(ctx, auctionID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// resolveLots computes the finish-time resolution for every lot that is
// still open. The returned slice contains only the lots that changed.
func resolveLots(lots []domain.Lot) []domain.Lot {
	wonBy := make(map[string]bool)
	var changed []domain.Lot

	for i := range lots {
		lot := lots[i]
		if !lot.Open() {
			continue
		}
		if lot.HasBids() && !wonBy[*lot.HighestBidderID] {
			wonBy[*lot.HighestBidderID] = true
			lot.MarkSold()
		} else {
			lot.MarkUnsold()
		}
		changed = append(changed, lot)
	}
	return changed
}

func actorMayManageAuctions(role domain.Role) bool {
	switch role {
	case domain.RoleSystemAdmin, domain.RoleSeller:
		return true
	case domain.RoleBuyer:
		return false
	}
	return false
}

func actorMayAdministerAuction(actor Actor, auction *domain.Auction) bool {
	if actor.Role == domain.RoleSystemAdmin {
		return true
	}
	return actor.Role == domain.RoleSeller && auction.CreatedByID == actor.UserID
}

func (s *AuctionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
