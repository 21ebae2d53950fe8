package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gavelworks/auction-service/internal/domain"
)

// UserFilter captures admin listing parameters.
type UserFilter struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

// SellerSalesRow aggregates one seller's completed sales.
type SellerSalesRow struct {
	Seller     domain.User
	TotalSales decimal.Decimal
	LotsSold   int64
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error)
	BuyersByAuctionName(ctx context.Context, query string, limit, offset int) ([]domain.User, int64, error)
	SellerSalesByAuctionName(ctx context.Context, query string, minTotal decimal.Decimal, limit, offset int) ([]SellerSalesRow, int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, full_name, email, passport_id, password_hash, is_admin, is_active, available_roles, registered_at, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (full_name, email, passport_id, password_hash, is_admin, is_active, available_roles)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, registered_at, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.FullName,
		user.Email,
		user.PassportID,
		user.PasswordHash,
		user.IsAdmin,
		user.IsActive,
		rolesToStrings(user.AvailableRoles),
	).Scan(&user.ID, &user.RegisteredAt, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET full_name=$1, email=$2, passport_id=$3, password_hash=$4,
            is_admin=$5, is_active=$6, available_roles=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		user.FullName,
		user.Email,
		user.PassportID,
		user.PasswordHash,
		user.IsAdmin,
		user.IsActive,
		rolesToStrings(user.AvailableRoles),
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id=$1`, userColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email=$1`, userColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	return scanUser(row)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(available_roles)", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY registered_at DESC LIMIT %d OFFSET %d`,
		userColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) BuyersByAuctionName(ctx context.Context, query string, limit, offset int) ([]domain.User, int64, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	const countQuery = `
        SELECT COUNT(DISTINCT u.id)
        FROM users u
        JOIN lots l ON l.final_buyer_id = u.id
        JOIN auctions a ON a.id = l.auction_id
        WHERE l.status = 'SOLD' AND LOWER(a.name) LIKE $1`
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset = normalizePage(limit, offset)
	listQuery := fmt.Sprintf(`
        SELECT DISTINCT %s
        FROM users u
        JOIN lots l ON l.final_buyer_id = u.id
        JOIN auctions a ON a.id = l.auction_id
        WHERE l.status = 'SOLD' AND LOWER(a.name) LIKE $1
        ORDER BY u.full_name
        LIMIT %d OFFSET %d`, prefixColumns("u"), limit, offset)

	rows, err := r.pool.Query(ctx, listQuery, pattern)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) SellerSalesByAuctionName(ctx context.Context, query string, minTotal decimal.Decimal, limit, offset int) ([]SellerSalesRow, int64, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	const countQuery = `
        SELECT COUNT(*) FROM (
            SELECT l.seller_id
            FROM lots l
            JOIN auctions a ON a.id = l.auction_id
            WHERE l.status = 'SOLD' AND LOWER(a.name) LIKE $1
            GROUP BY l.seller_id
            HAVING SUM(l.final_price) >= $2
        ) s`
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, pattern, minTotal).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset = normalizePage(limit, offset)
	listQuery := fmt.Sprintf(`
        SELECT %s, s.total_sales, s.lots_sold
        FROM (
            SELECT l.seller_id, SUM(l.final_price) AS total_sales, COUNT(*) AS lots_sold
            FROM lots l
            JOIN auctions a ON a.id = l.auction_id
            WHERE l.status = 'SOLD' AND LOWER(a.name) LIKE $1
            GROUP BY l.seller_id
            HAVING SUM(l.final_price) >= $2
        ) s
        JOIN users u ON u.id = s.seller_id
        ORDER BY s.total_sales DESC
        LIMIT %d OFFSET %d`, prefixColumns("u"), limit, offset)

	rows, err := r.pool.Query(ctx, listQuery, pattern, minTotal)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []SellerSalesRow
	for rows.Next() {
		var (
			row   SellerSalesRow
			roles []string
		)
		if err := rows.Scan(
			&row.Seller.ID,
			&row.Seller.FullName,
			&row.Seller.Email,
			&row.Seller.PassportID,
			&row.Seller.PasswordHash,
			&row.Seller.IsAdmin,
			&row.Seller.IsActive,
			&roles,
			&row.Seller.RegisteredAt,
			&row.Seller.CreatedAt,
			&row.Seller.UpdatedAt,
			&row.TotalSales,
			&row.LotsSold,
		); err != nil {
			return nil, 0, err
		}
		row.Seller.AvailableRoles = rolesFromStrings(roles)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func prefixColumns(alias string) string {
	cols := strings.Split(userColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user  domain.User
		roles []string
	)
	if err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PassportID,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsActive,
		&roles,
		&user.RegisteredAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.AvailableRoles = rolesFromStrings(roles)
	return &user, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func rolesFromStrings(values []string) []domain.Role {
	out := make([]domain.Role, len(values))
	for i, v := range values {
		out[i] = domain.Role(v)
	}
	return out
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
