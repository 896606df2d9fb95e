package analytics

import (
	"context"
	"time"
)

// InvoiceQuery selects sales invoices for one reporting period.
type InvoiceQuery struct {
	From     time.Time
	To       time.Time
	Currency Currency
}

// ExpenseQuery selects expense ledger rows for one reporting period.
type ExpenseQuery struct {
	From       time.Time
	To         time.Time
	CategoryID *string
}

// BudgetQuery selects budget matrix entries for one year.
type BudgetQuery struct {
	Year         int
	DepartmentID *string
}

// Repository reads the raw source rows the report is built from. All
// reads are tenant-scoped through the transaction manager in ctx.
type Repository interface {
	// ListSalesInvoices returns approved invoices in the period matching
	// the currency exactly.
	ListSalesInvoices(ctx context.Context, q InvoiceQuery) ([]SalesInvoice, error)

	// ListExpenses returns expense rows in the period.
	ListExpenses(ctx context.Context, q ExpenseQuery) ([]ExpenseRecord, error)

	// ListBudgetEntries returns budget rows for the year.
	ListBudgetEntries(ctx context.Context, q BudgetQuery) ([]BudgetEntry, error)
}
