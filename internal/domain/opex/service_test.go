package opex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
	"finsight/internal/core/tenant"
	"finsight/internal/core/types"
)

type mockRepo struct {
	mu sync.Mutex

	matrix []MatrixEntry
	ledger []LedgerExpense
	budget []BudgetAmount

	matrixErr error
	ledgerErr error
	budgetErr error

	matrixQueries []MatrixQuery
	ledgerQueries []LedgerQuery
	budgetQueries []BudgetQuery
}

func (m *mockRepo) ListMatrixEntries(_ context.Context, q MatrixQuery) ([]MatrixEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matrixQueries = append(m.matrixQueries, q)
	return m.matrix, m.matrixErr
}

func (m *mockRepo) ListLedgerExpenses(_ context.Context, q LedgerQuery) ([]LedgerExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgerQueries = append(m.ledgerQueries, q)
	return m.ledger, m.ledgerErr
}

func (m *mockRepo) ListBudgetAmounts(_ context.Context, q BudgetQuery) ([]BudgetAmount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgetQueries = append(m.budgetQueries, q)
	return m.budget, m.budgetErr
}

func amount(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: types.MustMoney(s), Valid: true}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func tenantCtx() context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{Slug: "acme"})
}

func matrixEntry(month int, category, subcategory string, amt string) MatrixEntry {
	e := MatrixEntry{ID: id.New(), Year: 2025, Month: month, Amount: amount(amt)}
	if category != "" {
		e.Category = &category
	}
	if subcategory != "" {
		e.Subcategory = &subcategory
	}
	return e
}

func ledgerExpense(month int, category, subcategory string, amt string) LedgerExpense {
	e := LedgerExpense{
		ID:          id.New(),
		ExpenseDate: time.Date(2025, time.Month(month), 12, 0, 0, 0, 0, time.UTC),
		Amount:      amount(amt),
	}
	if category != "" {
		e.CategoryName = &category
		cid := id.New()
		e.CategoryID = &cid
	}
	if subcategory != "" {
		e.Subcategory = &subcategory
	}
	return e
}

func TestAnalyze_NoTenant(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	report, err := svc.Analyze(context.Background(), Filter{Year: 2025, Currency: "TRY"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !report.TotalExpenses.IsZero() || len(report.ByCategory) != 0 || len(report.MonthlyData) != 0 {
		t.Error("expected empty report without tenant")
	}
	if len(repo.matrixQueries)+len(repo.ledgerQueries) != 0 {
		t.Error("no reads expected without tenant")
	}
}

func TestAnalyze_MergesMatrixAndLedger(t *testing.T) {
	repo := &mockRepo{
		matrix: []MatrixEntry{
			matrixEntry(1, "Kira", "Ofis", "500"),
			matrixEntry(2, "Kira", "Ofis", "500"),
			matrixEntry(1, "", "", "100"),
		},
		ledger: []LedgerExpense{
			ledgerExpense(1, "Kira", "Depo", "200"),
			ledgerExpense(3, "", "", "300"),
		},
	}
	svc := NewService(repo)

	report, err := svc.Analyze(tenantCtx(), Filter{Year: 2025, Currency: "TRY"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !report.TotalExpenses.Equal(types.MustMoney("1600")) {
		t.Fatalf("total = %s, want 1600", report.TotalExpenses)
	}

	if len(report.ByCategory) != 2 {
		t.Fatalf("categories = %d, want 2", len(report.ByCategory))
	}
	top := report.ByCategory[0]
	if top.CategoryName != "Kira" || !top.Amount.Equal(types.MustMoney("1200")) {
		t.Errorf("top category = %s %s, want Kira 1200", top.CategoryName, top.Amount)
	}
	if top.Percentage != 75 {
		t.Errorf("Kira percentage = %f, want 75", top.Percentage)
	}
	if len(top.Subcategories) != 2 {
		t.Fatalf("Kira subcategories = %d, want 2", len(top.Subcategories))
	}
	if top.Subcategories[0].SubcategoryName != "Ofis" {
		t.Errorf("top subcategory = %s, want Ofis", top.Subcategories[0].SubcategoryName)
	}
	if top.Subcategories[0].SubcategoryID != "Kira_Ofis" {
		t.Errorf("subcategory id = %s, want Kira_Ofis", top.Subcategories[0].SubcategoryID)
	}

	// Rows without a category collapse into the fallback bucket.
	fallback := report.ByCategory[1]
	if fallback.CategoryName != FallbackCategory || !fallback.Amount.Equal(types.MustMoney("400")) {
		t.Errorf("fallback category = %s %s, want %s 400", fallback.CategoryName, fallback.Amount, FallbackCategory)
	}
	if fallback.Subcategories[0].SubcategoryName != FallbackSubcategory {
		t.Errorf("fallback subcategory = %s, want %s", fallback.Subcategories[0].SubcategoryName, FallbackSubcategory)
	}

	// Flattened rows follow category order.
	if len(report.BySubcategory) != 3 {
		t.Fatalf("bySubcategory rows = %d, want 3", len(report.BySubcategory))
	}
	if report.BySubcategory[0].SubcategoryName != "Ofis" {
		t.Errorf("first flattened row = %s, want Ofis", report.BySubcategory[0].SubcategoryName)
	}

	// Sparse monthly breakdown sorted by month.
	ofis := top.Subcategories[0]
	if len(ofis.MonthlyBreakdown) != 2 {
		t.Fatalf("Ofis months = %d, want 2", len(ofis.MonthlyBreakdown))
	}
	if ofis.MonthlyBreakdown[0].Month != 1 || ofis.MonthlyBreakdown[1].Month != 2 {
		t.Errorf("Ofis months = %+v, want [1 2]", ofis.MonthlyBreakdown)
	}

	// Dense monthly data.
	if len(report.MonthlyData) != 12 {
		t.Fatalf("monthlyData rows = %d, want 12", len(report.MonthlyData))
	}
	jan := report.MonthlyData[0]
	if jan.MonthName != "Ocak" || !jan.Total.Equal(types.MustMoney("800")) {
		t.Errorf("january = %s %s, want Ocak 800", jan.MonthName, jan.Total)
	}
	if jan.ByCategory[0].CategoryName != "Kira" {
		t.Errorf("january top category = %s, want Kira", jan.ByCategory[0].CategoryName)
	}
	if !report.MonthlyData[3].Total.IsZero() {
		t.Errorf("april total = %s, want 0", report.MonthlyData[3].Total)
	}
}

func TestAnalyze_MonthFilterBounds(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	_, err := svc.Analyze(tenantCtx(), Filter{Year: 2025, Currency: "TRY", Month: intPtr(2)})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	q := repo.ledgerQueries[0]
	wantFrom := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !q.From.Equal(wantFrom) || !q.To.Equal(wantTo) {
		t.Errorf("ledger bounds = %s..%s, want %s..%s", q.From, q.To, wantFrom, wantTo)
	}
	if repo.matrixQueries[0].Month == nil || *repo.matrixQueries[0].Month != 2 {
		t.Errorf("matrix month filter not forwarded: %+v", repo.matrixQueries[0])
	}
}

func TestAnalyze_PrimaryReadFailure(t *testing.T) {
	svc := NewService(&mockRepo{matrixErr: errors.New("boom")})
	if _, err := svc.Analyze(tenantCtx(), Filter{Year: 2025, Currency: "TRY"}); !apperror.IsSourceRead(err) {
		t.Errorf("error = %v, want SOURCE_READ_FAILURE", err)
	}

	svc = NewService(&mockRepo{ledgerErr: errors.New("boom")})
	if _, err := svc.Analyze(tenantCtx(), Filter{Year: 2025, Currency: "TRY"}); !apperror.IsSourceRead(err) {
		t.Errorf("error = %v, want SOURCE_READ_FAILURE", err)
	}
}

func TestAnalyze_BudgetComparison(t *testing.T) {
	dept := id.New()
	repo := &mockRepo{
		ledger: []LedgerExpense{ledgerExpense(1, "Kira", "", "600")},
		budget: []BudgetAmount{
			{Category: "Personel", Amount: amount("700")},
			{Category: "Kira", Amount: amount("300")},
			{Category: "Gelirler", Amount: amount("5000")},
		},
	}
	svc := NewService(repo)

	report, err := svc.Analyze(tenantCtx(), Filter{Year: 2025, Currency: "TRY", DepartmentID: &dept})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	bc := report.BudgetComparison
	if bc == nil {
		t.Fatal("expected budget comparison with department filter")
	}
	// Planned income rows are excluded from the budget sum.
	if !bc.Budgeted.Equal(types.MustMoney("1000")) {
		t.Errorf("budgeted = %s, want 1000", bc.Budgeted)
	}
	if !bc.Variance.Equal(types.MustMoney("400")) {
		t.Errorf("variance = %s, want 400 (under budget)", bc.Variance)
	}
	if bc.VariancePercent != 40 {
		t.Errorf("variancePercent = %f, want 40", bc.VariancePercent)
	}

	if q := repo.budgetQueries[0]; q.Currency != "TRY" || q.DepartmentID != dept.String() {
		t.Errorf("budget query = %+v", q)
	}
}

func TestAnalyze_BudgetOmittedWithoutDepartment(t *testing.T) {
	repo := &mockRepo{budget: []BudgetAmount{{Category: "Kira", Amount: amount("100")}}}
	svc := NewService(repo)

	report, err := svc.Analyze(tenantCtx(), Filter{Year: 2025, Currency: "TRY"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.BudgetComparison != nil {
		t.Error("budget comparison should be omitted without department filter")
	}
	if len(repo.budgetQueries) != 0 {
		t.Error("budget should not be read without department filter")
	}
}

func TestAnalyze_BudgetReadDegrades(t *testing.T) {
	dept := id.New()
	repo := &mockRepo{budgetErr: errors.New("boom")}
	svc := NewService(repo)

	report, err := svc.Analyze(tenantCtx(), Filter{Year: 2025, Currency: "TRY", DepartmentID: &dept})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.BudgetComparison != nil {
		t.Error("budget comparison should be omitted when the read fails")
	}
}
