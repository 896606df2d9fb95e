package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core/id"
	"finsight/internal/core/types"
)

// Currency is an ISO 4217 currency code the engine reports in.
type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Valid reports whether c is one of the supported reporting currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyTRY, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// Invoice approval statuses. Only approved invoices count as income.
const (
	InvoiceStatusApproved = "approved"
	InvoiceStatusPaid     = "paid"
)

// Fallback labels for rows whose dimension is missing.
const (
	UnknownCustomerKey  = "unknown"
	UnknownCustomerName = "Bilinmeyen"
	UnknownCategoryKey  = "unknown"
	UnknownCategoryName = "Diğer"
)

// Filter selects the data set the report is built from.
type Filter struct {
	// Year is the reporting year. Required.
	Year int

	// Currency restricts invoices to an exact currency match. Required.
	Currency Currency

	// StartDate and EndDate override the default calendar-year period.
	// The override applies to the current period only; the prior-year
	// comparison always covers the full previous calendar year.
	StartDate *time.Time
	EndDate   *time.Time

	// CategoryID restricts expenses to a single category.
	CategoryID *id.ID

	// DepartmentID restricts budget entries to a single department.
	DepartmentID *id.ID
}

// Bounds returns the effective current-period date range.
func (f Filter) Bounds() (time.Time, time.Time) {
	start := time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(f.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if f.StartDate != nil {
		start = *f.StartDate
	}
	if f.EndDate != nil {
		end = *f.EndDate
	}
	return start, end
}

// PriorBounds returns the full previous calendar year, ignoring any
// explicit period override.
func (f Filter) PriorBounds() (time.Time, time.Time) {
	y := f.Year - 1
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// SalesInvoice is an income source row as read from storage.
type SalesInvoice struct {
	ID           id.ID               `db:"id"`
	InvoiceDate  time.Time           `db:"invoice_date"`
	Amount       decimal.NullDecimal `db:"amount"`
	Currency     Currency            `db:"currency"`
	Status       string              `db:"status"`
	CustomerID   *id.ID              `db:"customer_id"`
	CustomerName *string             `db:"customer_name"`
}

// ExpenseRecord is an expense ledger row as read from storage.
type ExpenseRecord struct {
	ID           id.ID               `db:"id"`
	ExpenseDate  time.Time           `db:"expense_date"`
	Amount       decimal.NullDecimal `db:"amount"`
	CategoryID   *id.ID              `db:"category_id"`
	CategoryName *string             `db:"category_name"`
	Subcategory  *string             `db:"subcategory"`
}

// BudgetEntry is a planning row from the budget matrix.
type BudgetEntry struct {
	ID           id.ID               `db:"id"`
	Year         int                 `db:"year"`
	CategoryName string              `db:"category_name"`
	EntryType    string              `db:"entry_type"`
	Amount       decimal.NullDecimal `db:"amount"`
	DepartmentID *id.ID              `db:"department_id"`
}

// SourceData bundles everything a report is aggregated from. Secondary
// inputs (prior-year rows, budget entries) may be empty when their reads
// failed; the aggregation degrades instead of erroring.
type SourceData struct {
	Invoices          []SalesInvoice
	Expenses          []ExpenseRecord
	PriorYearInvoices []SalesInvoice
	PriorYearExpenses []ExpenseRecord
	Budget            []BudgetEntry
}

// CustomerIncome is one income row grouped by customer.
type CustomerIncome struct {
	CustomerID   string      `json:"customerId"`
	CustomerName string      `json:"customerName"`
	Amount       types.Money `json:"amount"`
	Percentage   float64     `json:"percentage"`
	InvoiceCount int         `json:"invoiceCount"`
}

// SubcategoryExpense is one expense row grouped by subcategory within a
// category.
type SubcategoryExpense struct {
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	Amount      types.Money `json:"amount"`
	Percentage  float64     `json:"percentage"`
}

// CategoryExpense is one expense row grouped by category.
type CategoryExpense struct {
	CategoryID  string      `json:"categoryId"`
	Category    string      `json:"category"`
	Amount      types.Money `json:"amount"`
	Percentage  float64     `json:"percentage"`
	RecordCount int         `json:"recordCount"`
}

// MonthlyAmount is one dense-calendar month bucket.
type MonthlyAmount struct {
	Month     int         `json:"month"`
	MonthName string      `json:"monthName"`
	Amount    types.Money `json:"amount"`
}

// MonthlyProfit pairs the income and expense buckets of one month.
type MonthlyProfit struct {
	Month     int         `json:"month"`
	MonthName string      `json:"monthName"`
	Income    types.Money `json:"income"`
	Expenses  types.Money `json:"expenses"`
	Profit    types.Money `json:"profit"`
	Margin    float64     `json:"margin"`
}

// BudgetLine compares one measure against its budgeted value.
type BudgetLine struct {
	Budget          types.Money `json:"budget"`
	Actual          types.Money `json:"actual"`
	Variance        types.Money `json:"variance"`
	VariancePercent float64     `json:"variancePercent"`
}

// YearLine compares one measure against the previous year.
type YearLine struct {
	Previous      types.Money `json:"previous"`
	Current       types.Money `json:"current"`
	Change        types.Money `json:"change"`
	ChangePercent float64     `json:"changePercent"`
}

// IncomeSummary is the income side of the report.
type IncomeSummary struct {
	Total      types.Money      `json:"total"`
	ByCustomer []CustomerIncome `json:"byCustomer"`
	ByMonth    []MonthlyAmount  `json:"byMonth"`
}

// ExpenseSummary is the expense side of the report.
type ExpenseSummary struct {
	Total         types.Money          `json:"total"`
	ByCategory    []CategoryExpense    `json:"byCategory"`
	BySubcategory []SubcategoryExpense `json:"bySubcategory"`
	ByMonth       []MonthlyAmount      `json:"byMonth"`
}

// ProfitSummary is the derived profit section.
type ProfitSummary struct {
	Total   types.Money     `json:"total"`
	Margin  float64         `json:"margin"`
	ByMonth []MonthlyProfit `json:"byMonth"`
}

// BudgetComparison compares actuals against the budget matrix.
type BudgetComparison struct {
	Income   BudgetLine `json:"income"`
	Expenses BudgetLine `json:"expenses"`
	Profit   BudgetLine `json:"profit"`
}

// PreviousYearComparison compares the current period against the full
// previous calendar year.
type PreviousYearComparison struct {
	Income   YearLine `json:"income"`
	Expenses YearLine `json:"expenses"`
	Profit   YearLine `json:"profit"`
}

// Comparisons groups the two comparison sections.
type Comparisons struct {
	VsBudget       BudgetComparison       `json:"vsBudget"`
	VsPreviousYear PreviousYearComparison `json:"vsPreviousYear"`
}

// Report is the income and expense analysis result.
type Report struct {
	Income      IncomeSummary  `json:"income"`
	Expenses    ExpenseSummary `json:"expenses"`
	Profit      ProfitSummary  `json:"profit"`
	Comparisons Comparisons    `json:"comparisons"`
}

// ZeroReport is the response when no tenant is resolved: every numeric
// leaf is zero and every array is empty.
func ZeroReport() *Report {
	return &Report{
		Income: IncomeSummary{
			Total:      types.Zero(),
			ByCustomer: []CustomerIncome{},
			ByMonth:    []MonthlyAmount{},
		},
		Expenses: ExpenseSummary{
			Total:         types.Zero(),
			ByCategory:    []CategoryExpense{},
			BySubcategory: []SubcategoryExpense{},
			ByMonth:       []MonthlyAmount{},
		},
		Profit: ProfitSummary{
			Total:   types.Zero(),
			ByMonth: []MonthlyProfit{},
		},
		Comparisons: Comparisons{
			VsBudget: BudgetComparison{
				Income:   zeroBudgetLine(),
				Expenses: zeroBudgetLine(),
				Profit:   zeroBudgetLine(),
			},
			VsPreviousYear: PreviousYearComparison{
				Income:   zeroYearLine(),
				Expenses: zeroYearLine(),
				Profit:   zeroYearLine(),
			},
		},
	}
}

func zeroBudgetLine() BudgetLine {
	return BudgetLine{Budget: types.Zero(), Actual: types.Zero(), Variance: types.Zero()}
}

func zeroYearLine() YearLine {
	return YearLine{Previous: types.Zero(), Current: types.Zero(), Change: types.Zero()}
}
