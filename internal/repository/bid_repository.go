package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gavelworks/auction-service/internal/domain"
)

// BidRepository stores bid facts. Bids are append-only: there is no update
// or delete path.
type BidRepository interface {
	Create(ctx context.Context, bid *domain.Bid) error
	ListByLot(ctx context.Context, lotID string, limit, offset int) ([]domain.Bid, int64, error)
}

type bidRepository struct {
	pool *pgxpool.Pool
}

// NewBidRepository instantiates repository.
func NewBidRepository(pool *pgxpool.Pool) BidRepository {
	return &bidRepository{pool: pool}
}

const bidColumns = `id, lot_id, bidder_id, amount, placed_at`

func (r *bidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	const query = `
        INSERT INTO bids (lot_id, bidder_id, amount)
        VALUES ($1,$2,$3)
        RETURNING id, placed_at`
	return r.pool.QueryRow(ctx, query,
		bid.LotID,
		bid.BidderID,
		bid.Amount,
	).Scan(&bid.ID, &bid.PlacedAt)
}

func (r *bidRepository) ListByLot(ctx context.Context, lotID string, limit, offset int) ([]domain.Bid, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bids WHERE lot_id=$1`, lotID).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset = normalizePage(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM bids WHERE lot_id=$1 ORDER BY placed_at DESC LIMIT %d OFFSET %d`,
		bidColumns, limit, offset)

	rows, err := r.pool.Query(ctx, query, lotID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bids, err := scanBids(rows)
	if err != nil {
		return nil, 0, err
	}
	return bids, total, nil
}

func scanBids(rows pgx.Rows) ([]domain.Bid, error) {
	var result []domain.Bid
	for rows.Next() {
		var bid domain.Bid
		if err := rows.Scan(
			&bid.ID,
			&bid.LotID,
			&bid.BidderID,
			&bid.Amount,
			&bid.PlacedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, bid)
	}
	return result, rows.Err()
}
