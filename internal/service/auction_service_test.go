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
)

func TestCreateAuctionStartsPlanned(t *testing.T) {
	f := newMarketFixture(t)

	auction, err := f.auctionSvc.Create(context.Background(), f.seller, AuctionCreateInput{
		Name:        "Winter Sale",
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Location:    "Hall 2",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AuctionStatusPlanned, auction.Status)
	assert.Equal(t, f.seller.UserID, auction.CreatedByID)
	assert.Len(t, f.dispatcher.byType(events.EventAuctionCreated), 1)
}

func TestCreateAuctionForbiddenForBuyers(t *testing.T) {
	f := newMarketFixture(t)

	_, err := f.auctionSvc.Create(context.Background(), Actor{UserID: "u1", Role: domain.RoleBuyer}, AuctionCreateInput{
		Name:        "Buyer Sale",
		ScheduledAt: time.Now().Add(time.Hour),
		Location:    "Hall 1",
	})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestChangeStatusFollowsLifecycle(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusPlanned)

	updated, err := f.auctionSvc.ChangeStatus(context.Background(), f.seller, auction.ID, domain.AuctionStatusBidding)
	require.NoError(t, err)
	assert.Equal(t, domain.AuctionStatusBidding, updated.Status)

	_, err = f.auctionSvc.ChangeStatus(context.Background(), f.seller, auction.ID, domain.AuctionStatusPlanned)
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestChangeStatusCannotSkipBidding(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusPlanned)

	_, err := f.auctionSvc.ChangeStatus(context.Background(), f.seller, auction.ID, domain.AuctionStatusFinished)
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestChangeStatusSameStatusIsNoop(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusPlanned)

	updated, err := f.auctionSvc.ChangeStatus(context.Background(), f.seller, auction.ID, domain.AuctionStatusPlanned)
	require.NoError(t, err)
	assert.Equal(t, domain.AuctionStatusPlanned, updated.Status)
	assert.Empty(t, f.dispatcher.byType(events.EventAuctionStatusChanged))
}

func TestChangeStatusForbiddenForForeignSeller(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusPlanned)

	other := Actor{UserID: "seller-2", Role: domain.RoleSeller}
	_, err := f.auctionSvc.ChangeStatus(context.Background(), other, auction.ID, domain.AuctionStatusBidding)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	// The administrator may drive any auction's lifecycle.
	_, err = f.auctionSvc.ChangeStatus(context.Background(), f.admin, auction.ID, domain.AuctionStatusBidding)
	assert.NoError(t, err)
}

// The clock scenario: start price 75000, one bid of 78000 by u1, a tie bid
// by u2 rejected, finish sells the lot to u1 at 78000.
func TestFinishSellsLotToHighestBidder(t *testing.T) {
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
	require.Error(t, err)

	finished, err := f.auctionSvc.ChangeStatus(context.Background(), f.seller, auction.ID, domain.AuctionStatusFinished)
	require.NoError(t, err)

	assert.Equal(t, domain.AuctionStatusFinished, finished.Status)
	require.Len(t, finished.Lots, 1)
	sold := finished.Lots[0]
	assert.Equal(t, domain.LotStatusSold, sold.Status)
	require.NotNil(t, sold.FinalPrice)
	require.NotNil(t, sold.FinalBuyerID)
	assert.True(t, sold.FinalPrice.Equal(decimal.RequireFromString("78000")))
	assert.Equal(t, "u1", *sold.FinalBuyerID)
	assert.Nil(t, sold.HighestBidderID)

	assert.Len(t, f.dispatcher.byType(events.EventLotSold), 1)
}

func TestFinishResolvesZeroBidLotUnsold(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	f.newLot(t, auction.ID, "500")

	finished, err := f.auctionSvc.ChangeStatus(context.Background(), f.seller, auction.ID, domain.AuctionStatusFinished)
	require.NoError(t, err)

	require.Len(t, finished.Lots, 1)
	lot := finished.Lots[0]
	assert.Equal(t, domain.LotStatusUnsold, lot.Status)
	assert.Nil(t, lot.FinalPrice)
	assert.Nil(t, lot.FinalBuyerID)
	assert.Len(t, f.dispatcher.byType(events.EventLotUnsold), 1)
}

// One item per auction: a buyer leading several lots at finish wins only
// the first by lot number; the rest resolve Unsold.
func TestFinishAllocatesAtMostOneLotPerBuyer(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	first := f.newLot(t, auction.ID, "100")
	second := f.newLot(t, auction.ID, "100")

	// Force a double lead directly in storage; PlaceBid forbids this path,
	// but the finish-time allocation still has to hold on its own.
	leader := "u1"
	for _, id := range []string{first.ID, second.ID} {
		stored := f.lots.lots[id]
		stored.ApplyBid(leader, decimal.RequireFromString("150"))
		f.lots.lots[id] = stored
	}

	finished, err := f.auctionSvc.ChangeStatus(context.Background(), f.seller, auction.ID, domain.AuctionStatusFinished)
	require.NoError(t, err)

	require.Len(t, finished.Lots, 2)
	assert.Equal(t, domain.LotStatusSold, finished.Lots[0].Status)
	require.NotNil(t, finished.Lots[0].FinalBuyerID)
	assert.Equal(t, leader, *finished.Lots[0].FinalBuyerID)

	assert.Equal(t, domain.LotStatusUnsold, finished.Lots[1].Status)
	assert.Nil(t, finished.Lots[1].FinalBuyerID)
	assert.Nil(t, finished.Lots[1].HighestBidderID)
}

func TestFinishResolvesEveryOpenLotExactlyOnce(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)
	withBid := f.newLot(t, auction.ID, "100")
	f.newLot(t, auction.ID, "200")
	f.newLot(t, auction.ID, "300")

	u1 := Actor{UserID: "u1", Role: domain.RoleBuyer}
	_, _, err := f.lotSvc.PlaceBid(context.Background(), u1, auction.ID, withBid.ID,
		decimal.RequireFromString("150"))
	require.NoError(t, err)

	finished, err := f.auctionSvc.ChangeStatus(context.Background(), f.seller, auction.ID, domain.AuctionStatusFinished)
	require.NoError(t, err)

	require.Len(t, finished.Lots, 3)
	for _, lot := range finished.Lots {
		assert.Contains(t, []domain.LotStatus{domain.LotStatusSold, domain.LotStatusUnsold}, lot.Status)
		assert.False(t, lot.Open())
	}
	assert.Equal(t, domain.LotStatusSold, finished.Lots[0].Status)
	assert.Equal(t, domain.LotStatusUnsold, finished.Lots[1].Status)
	assert.Equal(t, domain.LotStatusUnsold, finished.Lots[2].Status)
}

func TestDeleteAuctionBlockedWhileBidding(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)

	err := f.auctionSvc.Delete(context.Background(), f.seller, auction.ID)
	assert.Equal(t, "CONFLICT", errCode(t, err))

	planned := f.newAuction(t, domain.AuctionStatusPlanned)
	assert.NoError(t, f.auctionSvc.Delete(context.Background(), f.seller, planned.ID))
}

func TestUpdateAuctionOnlyWhilePlanned(t *testing.T) {
	f := newMarketFixture(t)
	auction := f.newAuction(t, domain.AuctionStatusBidding)

	name := "Renamed Sale"
	_, err := f.auctionSvc.Update(context.Background(), f.seller, auction.ID, AuctionUpdateInput{Name: &name})
	assert.Equal(t, "CONFLICT", errCode(t, err))
}
