package opex

import (
	"context"
	"time"
)

// MatrixQuery selects opex matrix rows for one year.
type MatrixQuery struct {
	Year     int
	Month    *int
	Category *string
}

// LedgerQuery selects actual expense rows for one period.
type LedgerQuery struct {
	From       time.Time
	To         time.Time
	CategoryID *string
}

// BudgetQuery selects department budget rows.
type BudgetQuery struct {
	Year         int
	Currency     string
	DepartmentID string
}

// Repository reads the raw operating-expense rows. All reads are
// tenant-scoped through the transaction manager in ctx.
type Repository interface {
	ListMatrixEntries(ctx context.Context, q MatrixQuery) ([]MatrixEntry, error)
	ListLedgerExpenses(ctx context.Context, q LedgerQuery) ([]LedgerExpense, error)
	ListBudgetAmounts(ctx context.Context, q BudgetQuery) ([]BudgetAmount, error)
}
