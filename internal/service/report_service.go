package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/repository"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

// LotWithParties pairs a sold lot with the people on both sides of the sale.
type LotWithParties struct {
	Lot    domain.Lot
	Buyer  *domain.User
	Seller *domain.User
}

// AuctionSalesCount is an auction together with how many of its lots sold.
type AuctionSalesCount struct {
	Auction  domain.Auction
	SoldLots int64
}

// ReportService computes the marketplace analytics queries. Each report
// reads committed data only; none of them mutate state.
type ReportService struct {
	lots     repository.LotRepository
	auctions repository.AuctionRepository
	users    repository.UserRepository
}

// NewReportService constructs the service.
func NewReportService(lots repository.LotRepository, auctions repository.AuctionRepository, users repository.UserRepository) *ReportService {
	return &ReportService{lots: lots, auctions: auctions, users: users}
}

// MaxPriceDifference returns the sold lot whose final price climbed the
// furthest above its start price.
func (s *ReportService) MaxPriceDifference(ctx context.Context) (*domain.Lot, error) {
	lot, err := s.lots.MaxPriceDifference(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("no sold lots yet", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return lot, nil
}

// MostSoldLots returns the auction that sold the most lots.
func (s *ReportService) MostSoldLots(ctx context.Context) (*AuctionSalesCount, error) {
	auction, sold, err := s.auctions.MostSoldLots(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("no sold lots yet", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return &AuctionSalesCount{Auction: *auction, SoldLots: sold}, nil
}

// MostExpensiveSold returns the priciest sold lot with its buyer and seller.
func (s *ReportService) MostExpensiveSold(ctx context.Context) (*LotWithParties, error) {
	lot, err := s.lots.MostExpensiveSold(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("no sold lots yet", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return s.withParties(ctx, *lot)
}

// AuctionsWithoutSales returns a page of finished auctions in which nothing
// sold.
func (s *ReportService) AuctionsWithoutSales(ctx context.Context, limit, offset int) ([]domain.Auction, int64, error) {
	auctions, total, err := s.auctions.WithoutSoldLots(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return auctions, total, nil
}

// TopSold returns the n most expensive sold lots, highest first.
func (s *ReportService) TopSold(ctx context.Context, n int) ([]domain.Lot, error) {
	lots, err := s.lots.TopSold(ctx, n)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return lots, nil
}

// ItemsForSale lists open lots in upcoming or running auctions, optionally
// narrowed by calendar day and auction name.
func (s *ReportService) ItemsForSale(ctx context.Context, onDate *time.Time, auctionQuery string, limit, offset int) ([]domain.Lot, int64, error) {
	lots, total, err := s.lots.ListForSale(ctx, onDate, auctionQuery, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return lots, total, nil
}

// BuyersByAuction lists buyers who won lots in auctions whose name matches
// the query term.
func (s *ReportService) BuyersByAuction(ctx context.Context, query string, limit, offset int) ([]domain.User, int64, error) {
	users, total, err := s.users.BuyersByAuctionName(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return users, total, nil
}

// SellerSales aggregates per-seller sale totals in matching auctions,
// keeping only sellers whose total reaches minTotal.
func (s *ReportService) SellerSales(ctx context.Context, query string, minTotal decimal.Decimal, limit, offset int) ([]repository.SellerSalesRow, int64, error) {
	if minTotal.IsNegative() {
		return nil, 0, apperrors.NewValidationError("minimum total cannot be negative", nil)
	}
	rows, total, err := s.users.SellerSalesByAuctionName(ctx, query, minTotal, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return rows, total, nil
}

func (s *ReportService) withParties(ctx context.Context, lot domain.Lot) (*LotWithParties, error) {
	out := &LotWithParties{Lot: lot}
	if lot.FinalBuyerID != nil {
		buyer, err := s.users.GetByID(ctx, *lot.FinalBuyerID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		out.Buyer = buyer
	}
	seller, err := s.users.GetByID(ctx, lot.SellerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	out.Seller = seller
	return out, nil
}
