package domain

import "context"

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// InvestmentStore persists user investment records.
type InvestmentStore interface {
	Create(ctx context.Context, inv Investment) error
	Update(ctx context.Context, inv Investment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Investment, error)
	List(ctx context.Context, opts ListOpts) ([]Investment, error)
	Count(ctx context.Context) (int64, error)
}
