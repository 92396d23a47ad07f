package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a budget or profile does not exist for
// the given owner.
var ErrNotFound = errors.New("not found")

type BudgetRepository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, budgetID, userID string) (*Budget, error)
	ListBudgetsByUser(ctx context.Context, userID string) ([]Budget, error)
	// UpdateBudgetValues is a targeted partial update of the values
	// block (ledger, manual corrections); it must not touch any other
	// column.
	UpdateBudgetValues(ctx context.Context, budgetID, userID string, values Values) error
	UpdateBudgetStatus(ctx context.Context, budgetID, userID string, status BudgetStatus) error
	MarkBudgetSent(ctx context.Context, budgetID, userID string) error
	DeleteBudget(ctx context.Context, budgetID, userID string) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
}

type Repository interface {
	BudgetRepository
	ProfileRepository
}
