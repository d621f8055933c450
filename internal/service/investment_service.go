package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opavlenko/skinarb/internal/domain"
)

// maxInvestmentPageSize bounds a single list query.
const maxInvestmentPageSize = 200

// InvestmentService validates and persists user investment records.
type InvestmentService struct {
	store domain.InvestmentStore
	now   func() time.Time
}

// NewInvestmentService creates an InvestmentService.
func NewInvestmentService(store domain.InvestmentStore) *InvestmentService {
	return &InvestmentService{
		store: store,
		now:   time.Now,
	}
}

// Create validates a new investment, assigns its ID and timestamps, and
// stores it. The populated record is returned.
func (s *InvestmentService) Create(ctx context.Context, inv domain.Investment) (domain.Investment, error) {
	if err := validateInvestment(&inv); err != nil {
		return domain.Investment{}, err
	}

	now := s.now().UTC()
	inv.ID = uuid.New().String()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if err := s.store.Create(ctx, inv); err != nil {
		return domain.Investment{}, fmt.Errorf("investment_service: create: %w", err)
	}
	return inv, nil
}

// Update validates and rewrites an existing investment. The record's
// CreatedAt is preserved by the store; UpdatedAt is refreshed here.
func (s *InvestmentService) Update(ctx context.Context, id string, inv domain.Investment) (domain.Investment, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Investment{}, fmt.Errorf("%w: empty investment id", domain.ErrInvalidRequest)
	}
	if err := validateInvestment(&inv); err != nil {
		return domain.Investment{}, err
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("investment_service: update %s: %w", id, err)
	}

	inv.ID = id
	inv.CreatedAt = current.CreatedAt
	inv.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, inv); err != nil {
		return domain.Investment{}, fmt.Errorf("investment_service: update %s: %w", id, err)
	}
	return inv, nil
}

// Delete removes an investment by ID.
func (s *InvestmentService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty investment id", domain.ErrInvalidRequest)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("investment_service: delete %s: %w", id, err)
	}
	return nil
}

// Get returns one investment by ID.
func (s *InvestmentService) Get(ctx context.Context, id string) (domain.Investment, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Investment{}, fmt.Errorf("%w: empty investment id", domain.ErrInvalidRequest)
	}
	inv, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("investment_service: get %s: %w", id, err)
	}
	return inv, nil
}

// List returns a page of investments plus the total record count.
func (s *InvestmentService) List(ctx context.Context, opts domain.ListOpts) ([]domain.Investment, int64, error) {
	if opts.Limit <= 0 || opts.Limit > maxInvestmentPageSize {
		opts.Limit = maxInvestmentPageSize
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	invs, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("investment_service: list: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("investment_service: count: %w", err)
	}
	return invs, total, nil
}

// validateInvestment checks caller-controlled fields. Game, venue, and
// currency must parse; prices are minor units and must be positive.
func validateInvestment(inv *domain.Investment) error {
	inv.ItemName = strings.TrimSpace(inv.ItemName)
	inv.MarketKey = strings.TrimSpace(inv.MarketKey)

	if inv.ItemName == "" {
		return fmt.Errorf("%w: item_name is required", domain.ErrInvalidRequest)
	}
	if inv.MarketKey == "" {
		inv.MarketKey = inv.ItemName
	}
	if !inv.Game.Valid() {
		return fmt.Errorf("%w: unknown game %q", domain.ErrInvalidRequest, inv.Game)
	}
	if _, err := domain.ParseVenue(string(inv.Venue)); err != nil {
		return err
	}
	if !inv.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", domain.ErrInvalidRequest, inv.Currency)
	}
	if inv.BuyPriceMinor <= 0 {
		return fmt.Errorf("%w: buy_price_minor must be positive", domain.ErrInvalidRequest)
	}
	if inv.Quantity <= 0 {
		inv.Quantity = 1
	}
	return nil
}
