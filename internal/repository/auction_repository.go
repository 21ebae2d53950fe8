package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gavelworks/auction-service/internal/domain"
)

// AuctionFilter captures catalog listing parameters.
type AuctionFilter struct {
	Status     *domain.AuctionStatus
	CreatedBy  *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// AuctionRepository encapsulates auction persistence.
type AuctionRepository interface {
	Create(ctx context.Context, auction *domain.Auction) error
	Update(ctx context.Context, auction *domain.Auction) error
	// UpdateStatusWithLots persists a status transition together with the lot
	// resolutions it induces, in one transaction.
	UpdateStatusWithLots(ctx context.Context, auctionID string, status domain.AuctionStatus, lots []domain.Lot) error
	GetByID(ctx context.Context, id string) (*domain.Auction, error)
	List(ctx context.Context, filter AuctionFilter) ([]domain.Auction, int64, error)
	Delete(ctx context.Context, id string) error
	MostSoldLots(ctx context.Context) (*domain.Auction, int64, error)
	WithoutSoldLots(ctx context.Context, limit, offset int) ([]domain.Auction, int64, error)
}

type auctionRepository struct {
	pool *pgxpool.Pool
}

// NewAuctionRepository instantiates repository.
func NewAuctionRepository(pool *pgxpool.Pool) AuctionRepository {
	return &auctionRepository{pool: pool}
}

const auctionColumns = `id, name, description, scheduled_at, location, status, created_by, created_at, updated_at`

func (r *auctionRepository) Create(ctx context.Context, auction *domain.Auction) error {
	const query = `
        INSERT INTO auctions (name, description, scheduled_at, location, status, created_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		auction.Name,
		auction.Description,
		auction.ScheduledAt,
		auction.Location,
		auction.Status,
		auction.CreatedByID,
	).Scan(&auction.ID, &auction.CreatedAt, &auction.UpdatedAt)
}

func (r *auctionRepository) Update(ctx context.Context, auction *domain.Auction) error {
	const query = `
        UPDATE auctions SET name=$1, description=$2, scheduled_at=$3, location=$4, status=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		auction.Name,
		auction.Description,
		auction.ScheduledAt,
		auction.Location,
		auction.Status,
		auction.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *auctionRepository) UpdateStatusWithLots(ctx context.Context, auctionID string, status domain.AuctionStatus, lots []domain.Lot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx,
		`UPDATE auctions SET status=$1, updated_at=NOW() WHERE id=$2`, status, auctionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	const lotQuery = `
        UPDATE lots SET current_price=$1, final_price=$2, status=$3, highest_bidder_id=$4, final_buyer_id=$5, updated_at=NOW()
        WHERE id=$6`
	for _, lot := range lots {
		if _, err := tx.Exec(ctx, lotQuery,
			lot.CurrentPrice,
			lot.FinalPrice,
			lot.Status,
			lot.HighestBidderID,
			lot.FinalBuyerID,
			lot.ID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *auctionRepository) GetByID(ctx context.Context, id string) (*domain.Auction, error) {
	query := fmt.Sprintf(`SELECT %s FROM auctions WHERE id=$1`, auctionColumns)
	var auction domain.Auction
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&auction.ID,
		&auction.Name,
		&auction.Description,
		&auction.ScheduledAt,
		&auction.Location,
		&auction.Status,
		&auction.CreatedByID,
		&auction.CreatedAt,
		&auction.UpdatedAt,
	); err != nil {
		return nil, err
	}

	lotQuery := fmt.Sprintf(`SELECT %s FROM lots WHERE auction_id=$1 ORDER BY lot_number`, lotColumns)
	rows, err := r.pool.Query(ctx, lotQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lots, err := scanLots(rows)
	if err != nil {
		return nil, err
	}
	auction.Lots = lots
	return &auction, nil
}

func (r *auctionRepository) List(ctx context.Context, filter AuctionFilter) ([]domain.Auction, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM auctions WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM auctions WHERE %s ORDER BY scheduled_at DESC LIMIT %d OFFSET %d`,
		auctionColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	auctions, err := scanAuctions(rows)
	if err != nil {
		return nil, 0, err
	}
	return auctions, total, nil
}

func (r *auctionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM auctions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *auctionRepository) MostSoldLots(ctx context.Context) (*domain.Auction, int64, error) {
	query := fmt.Sprintf(`
        SELECT %s, s.sold_count
        FROM auctions a
        JOIN (
            SELECT auction_id, COUNT(*) AS sold_count
            FROM lots WHERE status='SOLD'
            GROUP BY auction_id
        ) s ON s.auction_id = a.id
        ORDER BY s.sold_count DESC
        LIMIT 1`, prefixAuctionColumns("a"))

	var (
		auction domain.Auction
		count   int64
	)
	if err := r.pool.QueryRow(ctx, query).Scan(
		&auction.ID,
		&auction.Name,
		&auction.Description,
		&auction.ScheduledAt,
		&auction.Location,
		&auction.Status,
		&auction.CreatedByID,
		&auction.CreatedAt,
		&auction.UpdatedAt,
		&count,
	); err != nil {
		return nil, 0, err
	}
	return &auction, count, nil
}

func (r *auctionRepository) WithoutSoldLots(ctx context.Context, limit, offset int) ([]domain.Auction, int64, error) {
	const where = `
        status='FINISHED' AND NOT EXISTS (
            SELECT 1 FROM lots l WHERE l.auction_id = auctions.id AND l.status='SOLD'
        )`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM auctions WHERE `+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset = normalizePage(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM auctions WHERE %s ORDER BY scheduled_at DESC LIMIT %d OFFSET %d`,
		auctionColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	auctions, err := scanAuctions(rows)
	if err != nil {
		return nil, 0, err
	}
	return auctions, total, nil
}

func prefixAuctionColumns(alias string) string {
	cols := strings.Split(auctionColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func scanAuctions(rows pgx.Rows) ([]domain.Auction, error) {
	var result []domain.Auction
	for rows.Next() {
		var auction domain.Auction
		if err := rows.Scan(
			&auction.ID,
			&auction.Name,
			&auction.Description,
			&auction.ScheduledAt,
			&auction.Location,
			&auction.Status,
			&auction.CreatedByID,
			&auction.CreatedAt,
			&auction.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, auction)
	}
	return result, rows.Err()
}
