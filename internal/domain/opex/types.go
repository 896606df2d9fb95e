package opex

import (
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core/id"
	"finsight/internal/core/types"
)

// Fallback labels for rows with missing dimensions.
const (
	FallbackCategory    = "Genel Giderler"
	FallbackSubcategory = "Diğer"
	UnknownCategoryID   = "unknown"
)

// Budget rows in this category are planned income and never count as
// operating expense.
const incomeBudgetCategory = "Gelirler"

// Filter selects the operating-expense data set.
type Filter struct {
	// Year is the reporting year. Required.
	Year int

	// Currency scopes the budget comparison. Required.
	Currency string

	// Month restricts both sources to a single month.
	Month *int

	// CategoryID restricts both sources to one category.
	CategoryID *string

	// DepartmentID enables the budget comparison; without it the
	// comparison section is omitted entirely.
	DepartmentID *id.ID
}

// MatrixEntry is a planning row from the opex matrix.
type MatrixEntry struct {
	ID          id.ID               `db:"id"`
	Year        int                 `db:"year"`
	Month       int                 `db:"month"`
	Category    *string             `db:"category"`
	Subcategory *string             `db:"subcategory"`
	Amount      decimal.NullDecimal `db:"amount"`
}

// LedgerExpense is an actual expense row from the ledger.
type LedgerExpense struct {
	ID           id.ID               `db:"id"`
	ExpenseDate  time.Time           `db:"expense_date"`
	Amount       decimal.NullDecimal `db:"amount"`
	CategoryID   *id.ID              `db:"category_id"`
	CategoryName *string             `db:"category_name"`
	Subcategory  *string             `db:"subcategory"`
}

// BudgetAmount is one department budget row.
type BudgetAmount struct {
	Category string              `db:"category"`
	Amount   decimal.NullDecimal `db:"budget_amount"`
}

// MonthAmount is one sparse month bucket of a subcategory.
type MonthAmount struct {
	Month  int         `json:"month"`
	Amount types.Money `json:"amount"`
}

// SubcategoryBreakdown is one subcategory row nested under its category.
type SubcategoryBreakdown struct {
	SubcategoryID    string        `json:"subcategoryId"`
	SubcategoryName  string        `json:"subcategoryName"`
	CategoryName     string        `json:"categoryName"`
	Amount           types.Money   `json:"amount"`
	Percentage       float64       `json:"percentage"`
	MonthlyBreakdown []MonthAmount `json:"monthlyBreakdown"`
}

// CategoryBreakdown is one category row with its subcategories.
type CategoryBreakdown struct {
	CategoryID    string                 `json:"categoryId"`
	CategoryName  string                 `json:"categoryName"`
	Amount        types.Money            `json:"amount"`
	Percentage    float64                `json:"percentage"`
	Subcategories []SubcategoryBreakdown `json:"subcategories"`
}

// CategoryAmount is one category slice of a month.
type CategoryAmount struct {
	CategoryName string      `json:"categoryName"`
	Amount       types.Money `json:"amount"`
}

// MonthlyExpense is one dense-calendar month bucket.
type MonthlyExpense struct {
	Month      int              `json:"month"`
	MonthName  string           `json:"monthName"`
	Total      types.Money      `json:"total"`
	ByCategory []CategoryAmount `json:"byCategory"`
}

// BudgetComparison compares total operating expenses against the
// department budget. Variance is budgeted minus actual, so a positive
// value means spending under budget.
type BudgetComparison struct {
	Budgeted        types.Money `json:"budgeted"`
	Actual          types.Money `json:"actual"`
	Variance        types.Money `json:"variance"`
	VariancePercent float64     `json:"variancePercent"`
}

// Report is the operating-expense analysis result. BudgetComparison is
// nil unless a department filter was given and the budget read
// succeeded.
type Report struct {
	TotalExpenses    types.Money            `json:"totalExpenses"`
	ByCategory       []CategoryBreakdown    `json:"byCategory"`
	BySubcategory    []SubcategoryBreakdown `json:"bySubcategory"`
	MonthlyData      []MonthlyExpense       `json:"monthlyData"`
	BudgetComparison *BudgetComparison      `json:"budgetComparison,omitempty"`
}

// ZeroReport is the response when no tenant is resolved.
func ZeroReport() *Report {
	return &Report{
		TotalExpenses: types.Zero(),
		ByCategory:    []CategoryBreakdown{},
		BySubcategory: []SubcategoryBreakdown{},
		MonthlyData:   []MonthlyExpense{},
	}
}
