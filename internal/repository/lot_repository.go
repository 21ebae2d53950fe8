package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gavelworks/auction-service/internal/domain"
)

// LotFilter captures global lot listing parameters.
type LotFilter struct {
	AuctionID *string
	SellerID  *string
	Status    *domain.LotStatus
	Limit     int
	Offset    int
}

// LotRepository encapsulates lot persistence.
type LotRepository interface {
	Create(ctx context.Context, lot *domain.Lot) error
	Update(ctx context.Context, lot *domain.Lot) error
	GetByID(ctx context.Context, id string) (*domain.Lot, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter LotFilter) ([]domain.Lot, int64, error)
	ListForSale(ctx context.Context, onDate *time.Time, auctionQuery string, limit, offset int) ([]domain.Lot, int64, error)
	ListLeadingByBidder(ctx context.Context, bidderID string) ([]domain.Lot, error)
	ListWonByBuyer(ctx context.Context, buyerID string) ([]domain.Lot, error)
	MaxPriceDifference(ctx context.Context) (*domain.Lot, error)
	MostExpensiveSold(ctx context.Context) (*domain.Lot, error)
	TopSold(ctx context.Context, limit int) ([]domain.Lot, error)
}

type lotRepository struct {
	pool *pgxpool.Pool
}

// NewLotRepository instantiates repository.
func NewLotRepository(pool *pgxpool.Pool) LotRepository {
	return &lotRepository{pool: pool}
}

const lotColumns = `id, auction_id, lot_number, name, description, seller_id, start_price, current_price, final_price, status, highest_bidder_id, final_buyer_id, created_at, updated_at`

func (r *lotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	// Lot numbers are sequential per auction and stable; the subquery assigns
	// the next number at insert time.
	const query = `
        INSERT INTO lots (auction_id, lot_number, name, description, seller_id, start_price, current_price, status)
        VALUES ($1,
            (SELECT COALESCE(MAX(lot_number),0)+1 FROM lots WHERE auction_id=$1),
            $2,$3,$4,$5,$6,$7)
        RETURNING id, lot_number, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		lot.AuctionID,
		lot.Name,
		lot.Description,
		lot.SellerID,
		lot.StartPrice,
		lot.CurrentPrice,
		lot.Status,
	).Scan(&lot.ID, &lot.LotNumber, &lot.CreatedAt, &lot.UpdatedAt)
}

func (r *lotRepository) Update(ctx context.Context, lot *domain.Lot) error {
	const query = `
        UPDATE lots SET name=$1, description=$2, start_price=$3, current_price=$4, final_price=$5,
            status=$6, highest_bidder_id=$7, final_buyer_id=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		lot.Name,
		lot.Description,
		lot.StartPrice,
		lot.CurrentPrice,
		lot.FinalPrice,
		lot.Status,
		lot.HighestBidderID,
		lot.FinalBuyerID,
		lot.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *lotRepository) GetByID(ctx context.Context, id string) (*domain.Lot, error) {
	query := fmt.Sprintf(`SELECT %s FROM lots WHERE id=$1`, lotColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanLot(row)
}

func (r *lotRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM lots WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *lotRepository) List(ctx context.Context, filter LotFilter) ([]domain.Lot, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AuctionID != nil {
		args = append(args, *filter.AuctionID)
		clauses = append(clauses, fmt.Sprintf("auction_id=$%d", len(args)))
	}
	if filter.SellerID != nil {
		args = append(args, *filter.SellerID)
		clauses = append(clauses, fmt.Sprintf("seller_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM lots WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM lots WHERE %s ORDER BY auction_id, lot_number LIMIT %d OFFSET %d`,
		lotColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	lots, err := scanLots(rows)
	if err != nil {
		return nil, 0, err
	}
	return lots, total, nil
}

// ListForSale finds open lots in planned or bidding auctions, optionally
// narrowed to auctions scheduled on a calendar day or matching a name term.
func (r *lotRepository) ListForSale(ctx context.Context, onDate *time.Time, auctionQuery string, limit, offset int) ([]domain.Lot, int64, error) {
	clauses := []string{
		"a.status IN ('PLANNED','BIDDING')",
		"l.status IN ('AWAITING_BIDDING','BIDDING')",
	}
	args := []any{}

	if onDate != nil {
		args = append(args, onDate.Format("2006-01-02"))
		clauses = append(clauses, fmt.Sprintf("a.scheduled_at::date=$%d", len(args)))
	}
	if strings.TrimSpace(auctionQuery) != "" {
		args = append(args, "%"+strings.TrimSpace(auctionQuery)+"%")
		clauses = append(clauses, fmt.Sprintf("a.name ILIKE $%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM lots l JOIN auctions a ON a.id=l.auction_id WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset = normalizePage(limit, offset)
	query := fmt.Sprintf(`
        SELECT %s FROM lots l
        JOIN auctions a ON a.id = l.auction_id
        WHERE %s
        ORDER BY a.scheduled_at, l.lot_number
        LIMIT %d OFFSET %d`, prefixLotColumns("l"), where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	lots, err := scanLots(rows)
	if err != nil {
		return nil, 0, err
	}
	return lots, total, nil
}

func (r *lotRepository) ListLeadingByBidder(ctx context.Context, bidderID string) ([]domain.Lot, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM lots l
        JOIN auctions a ON a.id = l.auction_id
        WHERE l.highest_bidder_id=$1
          AND a.status='BIDDING'
          AND l.status IN ('AWAITING_BIDDING','BIDDING')
        ORDER BY a.scheduled_at DESC, l.lot_number`, prefixLotColumns("l"))
	rows, err := r.pool.Query(ctx, query, bidderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLots(rows)
}

func (r *lotRepository) ListWonByBuyer(ctx context.Context, buyerID string) ([]domain.Lot, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM lots
        WHERE final_buyer_id=$1 AND status='SOLD'
        ORDER BY updated_at DESC`, lotColumns)
	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLots(rows)
}

func (r *lotRepository) MaxPriceDifference(ctx context.Context) (*domain.Lot, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM lots
        WHERE status='SOLD'
        ORDER BY final_price - start_price DESC
        LIMIT 1`, lotColumns)
	row := r.pool.QueryRow(ctx, query)
	return scanLot(row)
}

func (r *lotRepository) MostExpensiveSold(ctx context.Context) (*domain.Lot, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM lots
        WHERE status='SOLD'
        ORDER BY final_price DESC
        LIMIT 1`, lotColumns)
	row := r.pool.QueryRow(ctx, query)
	return scanLot(row)
}

func (r *lotRepository) TopSold(ctx context.Context, limit int) ([]domain.Lot, error) {
	if limit <= 0 {
		limit = 3
	}
	query := fmt.Sprintf(`
        SELECT %s FROM lots
        WHERE status='SOLD'
        ORDER BY final_price DESC
        LIMIT %d`, lotColumns, limit)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLots(rows)
}

func prefixLotColumns(alias string) string {
	cols := strings.Split(lotColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func scanLot(row rowScanner) (*domain.Lot, error) {
	var lot domain.Lot
	if err := row.Scan(
		&lot.ID,
		&lot.AuctionID,
		&lot.LotNumber,
		&lot.Name,
		&lot.Description,
		&lot.SellerID,
		&lot.StartPrice,
		&lot.CurrentPrice,
		&lot.FinalPrice,
		&lot.Status,
		&lot.HighestBidderID,
		&lot.FinalBuyerID,
		&lot.CreatedAt,
		&lot.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lot, nil
}

func scanLots(rows pgx.Rows) ([]domain.Lot, error) {
	var result []domain.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *lot)
	}
	return result, rows.Err()
}
