package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelworks/auction-service/internal/domain"
	"github.com/gavelworks/auction-service/internal/events"
	apperrors "github.com/gavelworks/auction-service/pkg/util"
)

type marketFixture struct {
	auctions   *fakeAuctionRepo
	lots       *fakeLotRepo
	bids       *fakeBidRepo
	dispatcher *recordingDispatcher

	auctionSvc *AuctionService
	lotSvc     *LotService

	seller Actor
	admin  Actor
}

func newMarketFixture(t *testing.T) *marketFixture {
	t.Helper()
	lots := newFakeLotRepo()
	f := &marketFixture{
		auctions:   newFakeAuctionRepo(lots),
		lots:       lots,
		bids:       newFakeBidRepo(),
		dispatcher: &recordingDispatcher{},
		seller:     Actor{UserID: "seller-1", Role: domain.RoleSeller},
		admin:      Actor{UserID: "admin-1", Role: domain.RoleSystemAdmin},
	}
	f.auctionSvc = NewAuctionService(f.auctions, f.dispatcher)
	f.lotSvc = NewLotService(f.auctions, f.lots, f.bids, f.dispatcher)
	return f
}

func (f *marketFixture) newAuction(t *testing.T, status domain.AuctionStatus) *domain.Auction {
	t.Helper()
	auction, err := f.auctionSvc.Create(context.Background(), f.seller, AuctionCreateInput{
		Name:        "Spring Sale",
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Location:    "Hall 4",
	})
	require.NoError(t, err)
	if status != domain.AuctionStatusPlanned {
		stored := f.auctions.auctions[auction.ID]
		stored.Status = status
		f.auctions.auctions[auction.ID] = stored
		auction.Status = status
	}
	return auction
}

func (f *marketFixture) newLot(t *testing.T, auctionID, price string) *domain.Lot {
	t.Helper()
	// Lots are created while the auction is planned regardless of the status
	// a test moves it to afterwards.
	stored := f.auctions.auctions[auctionID]
	prev := stored.Status
	stored.Status = domain.AuctionStatusPlanned
	f.auctions.auctions[auctionID] = stored

	lot, err := f.lotSvc.Create(context.Background(), f.seller, auctionID, LotCreateInput{
		Name:       "Lot item",
		StartPrice: decimal.RequireFromString(price),
	})
	require.NoError(t, err)

	stored.Status = prev
	f.auctions.auctions[auctionID] = stored
	return lot
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	return domainErr.Code
}

func TestCreateLotRequiresPlannedAuction(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)

	_, err := f.lotSvc.Create(context.Background(), f.seller, auction.ID, LotCreateInput{
		Name:       "Late lot",
		StartPrice: decimal.RequireFromString("100"),
	})
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestCreateLotRejectsNonPositiveAndFinePrices(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusPlanned)

	for _, price := range []string{"0", "-5", "10.005"} {
		_, err := f.lotSvc.Create(context.Background(), f.seller, auction.ID, LotCreateInput{
			Name:       "Bad price",
			StartPrice: decimal.RequireFromString(price),
		})
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err), "price %s", price)
	}
}

func TestLotNumbersFollowInsertionOrder(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusPlanned)

	first := f.newLot(t, auction.ID, "100")
	second := f.newLot(t, auction.ID, "200")

	assert.Equal(t, 1, first.LotNumber)
	assert.Equal(t, 2, second.LotNumber)
}

func TestEditAndDeleteLotGatedOnAuctionStatus(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusPlanned)
	lot := f.newLot(t, auction.ID, "100")

	name := "Renamed"
	updated, err := f.lotSvc.Update(context.Background(), f.seller, auction.ID, lot.ID, LotUpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	stored := f.auctions.auctions[auction.ID]
	stored.Status = domain.AuctionStatusBidding
	f.auctions.auctions[auction.ID] = stored

	_, err = f.lotSvc.Update(context.Background(), f.seller, auction.ID, lot.ID, LotUpdateInput{Name: &name})
	assert.Equal(t, "CONFLICT", errCode(t, err))

	err = f.lotSvc.Delete(context.Background(), f.seller, auction.ID, lot.ID)
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestEditLotForbiddenForOtherSellers(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusPlanned)
	lot := f.newLot(t, auction.ID, "100")

	other := Actor{UserID: "seller-2", Role: domain.RoleSeller}
	name := "Hijacked"
	_, err := f.lotSvc.Update(context.Background(), other, auction.ID, lot.ID, LotUpdateInput{Name: &name})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestPlaceBidHappyPath(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	lot := f.newLot(t, auction.ID, "75000")

	buyer := Actor{UserID: "u1", Role: domain.RoleBuyer}
	bid, updated, err := f.lotSvc.PlaceBid(context.Background(), buyer, auction.ID, lot.ID,
		decimal.RequireFromString("78000"))
	require.NoError(t, err)

	assert.Equal(t, "u1", bid.BidderID)
	assert.True(t, bid.Amount.Equal(decimal.RequireFromString("78000")))
	assert.Equal(t, domain.LotStatusBidding, updated.Status)
	assert.True(t, updated.CurrentPrice.Equal(decimal.RequireFromString("78000")))
	require.NotNil(t, updated.HighestBidderID)
	assert.Equal(t, "u1", *updated.HighestBidderID)

	require.Len(t, f.dispatcher.byType(events.EventBidPlaced), 1)
}

func TestPlaceBidRejectsTies(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	lot := f.newLot(t, auction.ID, "75000")

	u1 := Actor{UserID: "u1", Role: domain.RoleBuyer}
	u2 := Actor{UserID: "u2", Role: domain.RoleBuyer}

	_, _, err := f.lotSvc.PlaceBid(context.Background(), u1, auction.ID, lot.ID,
		decimal.RequireFromString("78000"))
	require.NoError(t, err)

	_, _, err = f.lotSvc.PlaceBid(context.Background(), u2, auction.ID, lot.ID,
		decimal.RequireFromString("78000"))
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	stored := f.lots.lots[lot.ID]
	require.NotNil(t, stored.HighestBidderID)
	assert.Equal(t, "u1", *stored.HighestBidderID, "tie must not displace the leader")
}

func TestPlaceBidRejectsWhenAuctionNotBidding(t *testing.T) {
	f := newMarketFixture(t)
	buyer := Actor{UserID: "u1", Role: domain.RoleBuyer}

	for _, status := range []domain.AuctionStatus{domain.AuctionStatusPlanned, domain.AuctionStatusFinished} {
		auction := f.newAuction(t, status)
		lot := f.newLot(t, auction.ID, "100")

		_, _, err := f.lotSvc.PlaceBid(context.Background(), buyer, auction.ID, lot.ID,
			decimal.RequireFromString("200"))
		assert.Equal(t, "CONFLICT", errCode(t, err), "status %s", status)
	}
}

func TestPlaceBidRejectsSellerOnOwnLot(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	lot := f.newLot(t, auction.ID, "100")

	asBuyer := Actor{UserID: f.seller.UserID, Role: domain.RoleBuyer}
	_, _, err := f.lotSvc.PlaceBid(context.Background(), asBuyer, auction.ID, lot.ID,
		decimal.RequireFromString("200"))
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestPlaceBidForbiddenForAdminAndSellerRole(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	lot := f.newLot(t, auction.ID, "100")

	for _, actor := range []Actor{f.admin, {UserID: "seller-9", Role: domain.RoleSeller}} {
		_, _, err := f.lotSvc.PlaceBid(context.Background(), actor, auction.ID, lot.ID,
			decimal.RequireFromString("200"))
		assert.Equal(t, "FORBIDDEN", errCode(t, err), "role %s", actor.Role)
	}
}

func TestPlaceBidRejectsSecondLeadInSameAuction(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	first := f.newLot(t, auction.ID, "100")
	second := f.newLot(t, auction.ID, "100")

	u1 := Actor{UserID: "u1", Role: domain.RoleBuyer}
	_, _, err := f.lotSvc.PlaceBid(context.Background(), u1, auction.ID, first.ID,
		decimal.RequireFromString("150"))
	require.NoError(t, err)

	_, _, err = f.lotSvc.PlaceBid(context.Background(), u1, auction.ID, second.ID,
		decimal.RequireFromString("150"))
	assert.Equal(t, "CONFLICT", errCode(t, err))

	// Raising one's own leading bid on the same lot stays allowed.
	_, _, err = f.lotSvc.PlaceBid(context.Background(), u1, auction.ID, first.ID,
		decimal.RequireFromString("175"))
	assert.NoError(t, err)
}

func TestPlaceBidAllowedAfterBeingOutbid(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	first := f.newLot(t, auction.ID, "100")
	second := f.newLot(t, auction.ID, "100")

	u1 := Actor{UserID: "u1", Role: domain.RoleBuyer}
	u2 := Actor{UserID: "u2", Role: domain.RoleBuyer}

	_, _, err := f.lotSvc.PlaceBid(context.Background(), u1, auction.ID, first.ID,
		decimal.RequireFromString("150"))
	require.NoError(t, err)
	_, _, err = f.lotSvc.PlaceBid(context.Background(), u2, auction.ID, first.ID,
		decimal.RequireFromString("200"))
	require.NoError(t, err)

	// u1 no longer leads the first lot and may enter the second.
	_, _, err = f.lotSvc.PlaceBid(context.Background(), u1, auction.ID, second.ID,
		decimal.RequireFromString("120"))
	assert.NoError(t, err)
}

func TestBidsByLotNewestFirst(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	lot := f.newLot(t, auction.ID, "100")

	u1 := Actor{UserID: "u1", Role: domain.RoleBuyer}
	u2 := Actor{UserID: "u2", Role: domain.RoleBuyer}
	_, _, err := f.lotSvc.PlaceBid(context.Background(), u1, auction.ID, lot.ID,
		decimal.RequireFromString("150"))
	require.NoError(t, err)
	_, _, err = f.lotSvc.PlaceBid(context.Background(), u2, auction.ID, lot.ID,
		decimal.RequireFromString("200"))
	require.NoError(t, err)

	bids, total, err := f.lotSvc.BidsByLot(context.Background(), auction.ID, lot.ID, 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, bids, 2)
	assert.Equal(t, "u2", bids[0].BidderID)
	assert.Equal(t, "u1", bids[1].BidderID)
}
