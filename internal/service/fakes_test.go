package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/events"
	"github.com/gavelworks/auction-service/internal/repository"
)

// In-memory repository fakes backing the service tests. They store value
// copies so tests observe only what the services persist.

type fakeUserRepo struct {
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.RegisteredAt = now
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int64, error) {
	var out []domain.User
	for _, user := range f.users {
		if filter.Role != nil && !user.HasBusinessRole(*filter.Role) {
			continue
		}
		if filter.Active != nil && user.IsActive != *filter.Active {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) BuyersByAuctionName(context.Context, string, int, int) ([]domain.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) SellerSalesByAuctionName(context.Context, string, decimal.Decimal, int, int) ([]repository.SellerSalesRow, int64, error) {
	return nil, 0, nil
}

type fakeAuctionRepo struct {
	auctions map[string]domain.Auction
	lots     *fakeLotRepo
}

func newFakeAuctionRepo(lots *fakeLotRepo) *fakeAuctionRepo {
	return &fakeAuctionRepo{auctions: make(map[string]domain.Auction), lots: lots}
}

func (f *fakeAuctionRepo) Create(_ context.Context, auction *domain.Auction) error {
	if auction.ID == "" {
		auction.ID = uuid.NewString()
	}
	now := time.Now()
	auction.CreatedAt = now
	auction.UpdatedAt = now
	stored := *auction
	stored.Lots = nil
	f.auctions[auction.ID] = stored
	return nil
}

func (f *fakeAuctionRepo) Update(_ context.Context, auction *domain.Auction) error {
	if _, ok := f.auctions[auction.ID]; !ok {
		return pgx.ErrNoRows
	}
	auction.UpdatedAt = time.Now()
	stored := *auction
	stored.Lots = nil
	f.auctions[auction.ID] = stored
	return nil
}

func (f *fakeAuctionRepo) UpdateStatusWithLots(_ context.Context, auctionID string, status domain.AuctionStatus, lots []domain.Lot) error {
	auction, ok := f.auctions[auctionID]
	if !ok {
		return pgx.ErrNoRows
	}
	auction.Status = status
	auction.UpdatedAt = time.Now()
	f.auctions[auctionID] = auction
	for _, lot := range lots {
		if _, ok := f.lots.lots[lot.ID]; !ok {
			return fmt.Errorf("lot %s not stored", lot.ID)
		}
		f.lots.lots[lot.ID] = lot
	}
	return nil
}

func (f *fakeAuctionRepo) GetByID(_ context.Context, id string) (*domain.Auction, error) {
	auction, ok := f.auctions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	auction.Lots = f.lots.byAuction(id)
	return &auction, nil
}

func (f *fakeAuctionRepo) List(_ context.Context, filter repository.AuctionFilter) ([]domain.Auction, int64, error) {
	var out []domain.Auction
	for _, auction := range f.auctions {
		if filter.Status != nil && auction.Status != *filter.Status {
			continue
		}
		if filter.CreatedBy != nil && auction.CreatedByID != *filter.CreatedBy {
			continue
		}
		out = append(out, auction)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (f *fakeAuctionRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.auctions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.auctions, id)
	return nil
}

func (f *fakeAuctionRepo) MostSoldLots(context.Context) (*domain.Auction, int64, error) {
	return nil, 0, pgx.ErrNoRows
}

func (f *fakeAuctionRepo) WithoutSoldLots(context.Context, int, int) ([]domain.Auction, int64, error) {
	return nil, 0, nil
}

type fakeLotRepo struct {
	lots map[string]domain.Lot
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[string]domain.Lot)}
}

func (f *fakeLotRepo) byAuction(auctionID string) []domain.Lot {
	var out []domain.Lot
	for _, lot := range f.lots {
		if lot.AuctionID == auctionID {
			out = append(out, lot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LotNumber < out[j].LotNumber })
	return out
}

func (f *fakeLotRepo) Create(_ context.Context, lot *domain.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.NewString()
	}
	lot.LotNumber = len(f.byAuction(lot.AuctionID)) + 1
	now := time.Now()
	lot.CreatedAt = now
	lot.UpdatedAt = now
	f.lots[lot.ID] = *lot
	return nil
}

func (f *fakeLotRepo) Update(_ context.Context, lot *domain.Lot) error {
	if _, ok := f.lots[lot.ID]; !ok {
		return pgx.ErrNoRows
	}
	lot.UpdatedAt = time.Now()
	f.lots[lot.ID] = *lot
	return nil
}

func (f *fakeLotRepo) GetByID(_ context.Context, id string) (*domain.Lot, error) {
	lot, ok := f.lots[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &lot, nil
}

func (f *fakeLotRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.lots[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.lots, id)
	return nil
}

func (f *fakeLotRepo) List(_ context.Context, filter repository.LotFilter) ([]domain.Lot, int64, error) {
	var out []domain.Lot
	for _, lot := range f.lots {
		if filter.AuctionID != nil && lot.AuctionID != *filter.AuctionID {
			continue
		}
		if filter.SellerID != nil && lot.SellerID != *filter.SellerID {
			continue
		}
		if filter.Status != nil && lot.Status != *filter.Status {
			continue
		}
		out = append(out, lot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LotNumber < out[j].LotNumber })
	return out, int64(len(out)), nil
}

func (f *fakeLotRepo) ListForSale(context.Context, *time.Time, string, int, int) ([]domain.Lot, int64, error) {
	return nil, 0, nil
}

func (f *fakeLotRepo) ListLeadingByBidder(_ context.Context, bidderID string) ([]domain.Lot, error) {
	var out []domain.Lot
	for _, lot := range f.lots {
		if lot.HighestBidderID != nil && *lot.HighestBidderID == bidderID && lot.Open() {
			out = append(out, lot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LotNumber < out[j].LotNumber })
	return out, nil
}

func (f *fakeLotRepo) ListWonByBuyer(_ context.Context, buyerID string) ([]domain.Lot, error) {
	var out []domain.Lot
	for _, lot := range f.lots {
		if lot.Status == domain.LotStatusSold && lot.FinalBuyerID != nil && *lot.FinalBuyerID == buyerID {
			out = append(out, lot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LotNumber < out[j].LotNumber })
	return out, nil
}

func (f *fakeLotRepo) MaxPriceDifference(context.Context) (*domain.Lot, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeLotRepo) MostExpensiveSold(context.Context) (*domain.Lot, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeLotRepo) TopSold(context.Context, int) ([]domain.Lot, error) {
	return nil, nil
}

type fakeBidRepo struct {
	bids []domain.Bid
}

func newFakeBidRepo() *fakeBidRepo {
	return &fakeBidRepo{}
}

func (f *fakeBidRepo) Create(_ context.Context, bid *domain.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	bid.PlacedAt = time.Now()
	f.bids = append(f.bids, *bid)
	return nil
}

func (f *fakeBidRepo) ListByLot(_ context.Context, lotID string, _, _ int) ([]domain.Bid, int64, error) {
	var out []domain.Bid
	for _, bid := range f.bids {
		if bid.LotID == lotID {
			out = append(out, bid)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, int64(len(out)), nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range d.published {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
