package service

import (
	"context"

	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/repository"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// BuyerActivity groups a buyer's standing in the marketplace: lots they
// currently lead in auctions that are still bidding, and lots they won.
type BuyerActivity struct {
	Leading []domain.Lot
	Won     []domain.Lot
}

// ActivityService answers "what is my position" questions for the
// authenticated user.
type ActivityService struct {
	lots     repository.LotRepository
	auctions repository.AuctionRepository
}

// NewActivityService constructs the service.
func NewActivityService(lots repository.LotRepository, auctions repository.AuctionRepository) *ActivityService {
	return &ActivityService{lots: lots, auctions: auctions}
}

// BuyerActivity returns the buyer view for the acting user.
func (s *ActivityService) BuyerActivity(ctx context.Context, actor Actor) (*BuyerActivity, error) {
	if actor.Role != domain.RoleBuyer {
		return nil, apperrors.NewForbidden("activity is available in the buyer role")
	}
	leading, err := s.lots.ListLeadingByBidder(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	won, err := s.lots.ListWonByBuyer(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &BuyerActivity{Leading: leading, Won: won}, nil
}

// SellerListings returns a page of lots the acting seller has put up.
func (s *ActivityService) SellerListings(ctx context.Context, actor Actor, limit, offset int) ([]domain.Lot, int64, error) {
	if actor.Role != domain.RoleSeller {
		return nil, 0, apperrors.NewForbidden("listings are available in the seller role")
	}
	lots, total, err := s.lots.List(ctx, repository.LotFilter{
		SellerID: &actor.UserID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return lots, total, nil
}

// SellerAuctions returns a page of auctions the acting seller created.
func (s *ActivityService) SellerAuctions(ctx context.Context, actor Actor, limit, offset int) ([]domain.Auction, int64, error) {
	if actor.Role != domain.RoleSeller {
		return nil, 0, apperrors.NewForbidden("listings are available in the seller role")
	}
	auctions, total, err := s.auctions.List(ctx, repository.AuctionFilter{
		CreatedBy: &actor.UserID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return auctions, total, nil
}
