package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
	"finsight/internal/core/tenant"
	"finsight/internal/core/types"
)

type mockRepo struct {
	mu sync.Mutex

	invoices map[int][]SalesInvoice // keyed by From.Year()
	expenses map[int][]ExpenseRecord
	budget   []BudgetEntry

	invoiceErr map[int]error
	expenseErr map[int]error
	budgetErr  error

	invoiceQueries []InvoiceQuery
	expenseQueries []ExpenseQuery
	budgetQueries  []BudgetQuery
}

func (m *mockRepo) ListSalesInvoices(_ context.Context, q InvoiceQuery) ([]SalesInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoiceQueries = append(m.invoiceQueries, q)
	if err := m.invoiceErr[q.From.Year()]; err != nil {
		return nil, err
	}
	return m.invoices[q.From.Year()], nil
}

func (m *mockRepo) ListExpenses(_ context.Context, q ExpenseQuery) ([]ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenseQueries = append(m.expenseQueries, q)
	if err := m.expenseErr[q.From.Year()]; err != nil {
		return nil, err
	}
	return m.expenses[q.From.Year()], nil
}

func (m *mockRepo) ListBudgetEntries(_ context.Context, q BudgetQuery) ([]BudgetEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgetQueries = append(m.budgetQueries, q)
	if m.budgetErr != nil {
		return nil, m.budgetErr
	}
	return m.budget, nil
}

func tenantCtx(settings map[string]any) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{
		Slug:     "acme",
		Settings: settings,
	})
}

func validFilter() Filter {
	return Filter{Year: 2025, Currency: CurrencyTRY}
}

func TestIncomeExpense_NoTenantReturnsZeroReport(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	report, err := svc.IncomeExpense(context.Background(), validFilter())
	if err != nil {
		t.Fatalf("IncomeExpense failed: %v", err)
	}
	if !report.Income.Total.IsZero() || !report.Expenses.Total.IsZero() {
		t.Error("expected all-zero report without tenant")
	}
	if len(report.Income.ByMonth) != 0 {
		t.Errorf("byMonth rows = %d, want 0 without tenant", len(report.Income.ByMonth))
	}
	if len(repo.invoiceQueries)+len(repo.expenseQueries)+len(repo.budgetQueries) != 0 {
		t.Error("no reads expected without tenant")
	}
}

func TestIncomeExpense_Validation(t *testing.T) {
	svc := NewService(&mockRepo{})
	ctx := tenantCtx(nil)

	if _, err := svc.IncomeExpense(ctx, Filter{Currency: CurrencyTRY}); err == nil {
		t.Error("expected error for missing year")
	}
	if _, err := svc.IncomeExpense(ctx, Filter{Year: 2025, Currency: "XXX"}); err == nil {
		t.Error("expected error for unsupported currency")
	}

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.IncomeExpense(ctx, Filter{Year: 2025, Currency: CurrencyTRY, StartDate: &start, EndDate: &end}); err == nil {
		t.Error("expected error for inverted period")
	}
}

func TestIncomeExpense_QueriesBothPeriods(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	f := Filter{Year: 2025, Currency: CurrencyEUR, StartDate: &start, EndDate: &end}

	if _, err := svc.IncomeExpense(tenantCtx(nil), f); err != nil {
		t.Fatalf("IncomeExpense failed: %v", err)
	}

	if len(repo.invoiceQueries) != 2 {
		t.Fatalf("invoice queries = %d, want 2", len(repo.invoiceQueries))
	}
	var current, prior *InvoiceQuery
	for i := range repo.invoiceQueries {
		q := &repo.invoiceQueries[i]
		switch q.From.Year() {
		case 2025:
			current = q
		case 2024:
			prior = q
		}
	}
	if current == nil || prior == nil {
		t.Fatalf("missing current or prior query: %+v", repo.invoiceQueries)
	}
	if !current.From.Equal(start) || !current.To.Equal(end) {
		t.Errorf("current period = %s..%s, want explicit override", current.From, current.To)
	}
	if current.Currency != CurrencyEUR {
		t.Errorf("currency = %s, want EUR", current.Currency)
	}
	// Prior-year range ignores the override and covers the full year.
	if prior.From.Month() != time.January || prior.To.Month() != time.December {
		t.Errorf("prior period = %s..%s, want full calendar year", prior.From, prior.To)
	}

	if len(repo.budgetQueries) != 1 || repo.budgetQueries[0].Year != 2025 {
		t.Fatalf("budget queries = %+v, want one for 2025", repo.budgetQueries)
	}
}

func TestIncomeExpense_PriorYearExpensesUnfiltered(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	catID := id.New()
	f := validFilter()
	f.CategoryID = &catID

	if _, err := svc.IncomeExpense(tenantCtx(nil), f); err != nil {
		t.Fatalf("IncomeExpense failed: %v", err)
	}

	if len(repo.expenseQueries) != 2 {
		t.Fatalf("expense queries = %d, want 2", len(repo.expenseQueries))
	}
	for _, q := range repo.expenseQueries {
		switch q.From.Year() {
		case 2025:
			if q.CategoryID == nil || *q.CategoryID != catID.String() {
				t.Errorf("current-year query category = %v, want %s", q.CategoryID, catID)
			}
		case 2024:
			// Year-over-year compares against all spend.
			if q.CategoryID != nil {
				t.Errorf("prior-year query category = %s, want none", *q.CategoryID)
			}
		}
	}
}

func TestIncomeExpense_PrimaryReadFailure(t *testing.T) {
	repo := &mockRepo{
		invoiceErr: map[int]error{2025: errors.New("connection refused")},
	}
	svc := NewService(repo)

	_, err := svc.IncomeExpense(tenantCtx(nil), validFilter())
	if err == nil {
		t.Fatal("expected error when invoice read fails")
	}
	if !apperror.IsSourceRead(err) {
		t.Errorf("error = %v, want SOURCE_READ_FAILURE", err)
	}
}

func TestIncomeExpense_SecondaryReadsDegrade(t *testing.T) {
	repo := &mockRepo{
		invoices: map[int][]SalesInvoice{
			2025: {invoice(1, amount("1000"), nil, nil)},
		},
		invoiceErr: map[int]error{2024: errors.New("timeout")},
		expenseErr: map[int]error{2024: errors.New("timeout")},
		budgetErr:  errors.New("relation does not exist"),
	}
	svc := NewService(repo)

	report, err := svc.IncomeExpense(tenantCtx(nil), validFilter())
	if err != nil {
		t.Fatalf("IncomeExpense failed: %v", err)
	}
	if !report.Income.Total.Equal(types.MustMoney("1000")) {
		t.Errorf("income total = %s, want 1000", report.Income.Total)
	}
	// Comparison sections degrade to zeros instead of failing the report.
	if !report.Comparisons.VsPreviousYear.Income.Previous.IsZero() {
		t.Error("prior-year income should be zero after degraded read")
	}
	if !report.Comparisons.VsBudget.Income.Budget.IsZero() {
		t.Error("budget should be zero after degraded read")
	}
}

func TestIncomeExpense_TenantClassifierSetting(t *testing.T) {
	repo := &mockRepo{
		budget: []BudgetEntry{
			{Year: 2025, CategoryName: "Fon Getirileri", Amount: amount("500")},
		},
	}
	svc := NewService(repo)

	ctx := tenantCtx(map[string]any{
		"budget_classifier": `category.startsWith("Fon") ? "income" : "expense"`,
	})
	report, err := svc.IncomeExpense(ctx, validFilter())
	if err != nil {
		t.Fatalf("IncomeExpense failed: %v", err)
	}
	if !report.Comparisons.VsBudget.Income.Budget.Equal(types.MustMoney("500")) {
		t.Errorf("income budget = %s, want 500 via tenant classifier", report.Comparisons.VsBudget.Income.Budget)
	}

	// An invalid expression falls back to the default classifier.
	ctx = tenantCtx(map[string]any{"budget_classifier": "category +"})
	report, err = svc.IncomeExpense(ctx, validFilter())
	if err != nil {
		t.Fatalf("IncomeExpense failed: %v", err)
	}
	if !report.Comparisons.VsBudget.Expenses.Budget.Equal(types.MustMoney("500")) {
		t.Errorf("expense budget = %s, want 500 via default classifier", report.Comparisons.VsBudget.Expenses.Budget)
	}
}
