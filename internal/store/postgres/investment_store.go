package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opavlenko/skinarb/internal/domain"
)

// InvestmentStore implements domain.InvestmentStore using PostgreSQL.
type InvestmentStore struct {
	pool *pgxpool.Pool
}

// NewInvestmentStore creates a new InvestmentStore backed by the given pool.
func NewInvestmentStore(pool *pgxpool.Pool) *InvestmentStore {
	return &InvestmentStore{pool: pool}
}

const investmentSelectCols = `id, item_name, market_hash_name, game, venue,
	buy_price_minor, currency, quantity, note, created_at, updated_at`

// Create stores a new investment record.
func (s *InvestmentStore) Create(ctx context.Context, inv domain.Investment) error {
	const query = `
		INSERT INTO investments (
			id, item_name, market_hash_name, game, venue,
			buy_price_minor, currency, quantity, note, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11
		)`

	_, err := s.pool.Exec(ctx, query,
		inv.ID, inv.ItemName, inv.MarketKey, string(inv.Game), string(inv.Venue),
		inv.BuyPriceMinor, string(inv.Currency), inv.Quantity, inv.Note,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("postgres: insert investment %s: %w", inv.ID, err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing investment.
func (s *InvestmentStore) Update(ctx context.Context, inv domain.Investment) error {
	const query = `
		UPDATE investments SET
			item_name        = $2,
			market_hash_name = $3,
			game             = $4,
			venue            = $5,
			buy_price_minor  = $6,
			currency         = $7,
			quantity         = $8,
			note             = $9,
			updated_at       = $10
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		inv.ID, inv.ItemName, inv.MarketKey, string(inv.Game), string(inv.Venue),
		inv.BuyPriceMinor, string(inv.Currency), inv.Quantity, inv.Note,
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: update investment %s: %w", inv.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes an investment by ID.
func (s *InvestmentStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM investments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres: delete investment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns one investment, or domain.ErrNotFound.
func (s *InvestmentStore) GetByID(ctx context.Context, id string) (domain.Investment, error) {
	query := `SELECT ` + investmentSelectCols + ` FROM investments WHERE id = $1`

	inv, err := scanInvestment(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Investment{}, domain.ErrNotFound
		}
		return domain.Investment{}, fmt.Errorf("postgres: get investment %s: %w", id, err)
	}
	return inv, nil
}

// List returns investments ordered by creation time, newest first.
func (s *InvestmentStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Investment, error) {
	query := `SELECT ` + investmentSelectCols + ` FROM investments ORDER BY created_at DESC`
	args := []any{}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list investments: %w", err)
	}
	defer rows.Close()

	var invs []domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan investment: %w", err)
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list investments rows: %w", err)
	}
	return invs, nil
}

// Count returns the total number of investment records.
func (s *InvestmentStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM investments").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count investments: %w", err)
	}
	return n, nil
}

// scanInvestment reads one investments row from either QueryRow or Query.
func scanInvestment(row pgx.Row) (domain.Investment, error) {
	var inv domain.Investment
	var game, venue, cur string
	if err := row.Scan(
		&inv.ID, &inv.ItemName, &inv.MarketKey, &game, &venue,
		&inv.BuyPriceMinor, &cur, &inv.Quantity, &inv.Note,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return domain.Investment{}, err
	}
	inv.Game = domain.Game(game)
	inv.Venue = domain.Venue(venue)
	inv.Currency = domain.Currency(cur)
	return inv, nil
}

// Compile-time interface check.
var _ domain.InvestmentStore = (*InvestmentStore)(nil)
