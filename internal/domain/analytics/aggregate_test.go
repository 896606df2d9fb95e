package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core/id"
	"finsight/internal/core/types"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: types.MustMoney(s), Valid: true}
}

func nullAmount() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

func strPtr(s string) *string { return &s }

func invoice(month int, amt decimal.NullDecimal, customerID *id.ID, customerName *string) SalesInvoice {
	return SalesInvoice{
		ID:           id.New(),
		InvoiceDate:  time.Date(2025, time.Month(month), 15, 0, 0, 0, 0, time.UTC),
		Amount:       amt,
		Currency:     CurrencyTRY,
		Status:       InvoiceStatusApproved,
		CustomerID:   customerID,
		CustomerName: customerName,
	}
}

func expense(month int, amt decimal.NullDecimal, categoryID *id.ID, category, subcategory *string) ExpenseRecord {
	return ExpenseRecord{
		ID:           id.New(),
		ExpenseDate:  time.Date(2025, time.Month(month), 10, 0, 0, 0, 0, time.UTC),
		Amount:       amt,
		CategoryID:   categoryID,
		CategoryName: category,
		Subcategory:  subcategory,
	}
}

func TestBuildReport_EmptyInput(t *testing.T) {
	report := BuildReport(SourceData{}, nil)

	if !report.Income.Total.IsZero() {
		t.Errorf("income total = %s, want 0", report.Income.Total)
	}
	if !report.Expenses.Total.IsZero() {
		t.Errorf("expense total = %s, want 0", report.Expenses.Total)
	}
	if !report.Profit.Total.IsZero() {
		t.Errorf("profit total = %s, want 0", report.Profit.Total)
	}
	if report.Profit.Margin != 0 {
		t.Errorf("margin = %f, want 0", report.Profit.Margin)
	}
	if len(report.Income.ByCustomer) != 0 {
		t.Errorf("byCustomer rows = %d, want 0", len(report.Income.ByCustomer))
	}

	// Monthly arrays stay dense even with no input.
	if len(report.Income.ByMonth) != 12 {
		t.Fatalf("income byMonth rows = %d, want 12", len(report.Income.ByMonth))
	}
	if len(report.Expenses.ByMonth) != 12 {
		t.Fatalf("expense byMonth rows = %d, want 12", len(report.Expenses.ByMonth))
	}
	if len(report.Profit.ByMonth) != 12 {
		t.Fatalf("profit byMonth rows = %d, want 12", len(report.Profit.ByMonth))
	}
	if report.Income.ByMonth[0].MonthName != "Ocak" || report.Income.ByMonth[11].MonthName != "Aralık" {
		t.Errorf("month names = %q..%q, want Ocak..Aralık",
			report.Income.ByMonth[0].MonthName, report.Income.ByMonth[11].MonthName)
	}
	if report.Comparisons.VsBudget.Income.VariancePercent != 0 {
		t.Errorf("variancePercent = %f, want 0", report.Comparisons.VsBudget.Income.VariancePercent)
	}
}

func TestBuildReport_IncomeGrouping(t *testing.T) {
	acme := id.New()
	beta := id.New()
	src := SourceData{
		Invoices: []SalesInvoice{
			invoice(1, amount("600"), &acme, strPtr("Acme")),
			invoice(2, amount("200"), &acme, strPtr("Acme")),
			invoice(1, amount("150"), &beta, strPtr("Beta")),
			invoice(3, amount("50"), nil, nil),
			invoice(3, nullAmount(), nil, nil),
		},
	}

	report := BuildReport(src, nil)

	if got, want := report.Income.Total, types.MustMoney("1000"); !got.Equal(want) {
		t.Fatalf("income total = %s, want %s", got, want)
	}

	rows := report.Income.ByCustomer
	if len(rows) != 3 {
		t.Fatalf("byCustomer rows = %d, want 3", len(rows))
	}
	if rows[0].CustomerName != "Acme" || !rows[0].Amount.Equal(types.MustMoney("800")) {
		t.Errorf("top customer = %s %s, want Acme 800", rows[0].CustomerName, rows[0].Amount)
	}
	if rows[0].InvoiceCount != 2 {
		t.Errorf("Acme invoice count = %d, want 2", rows[0].InvoiceCount)
	}
	if rows[0].Percentage != 80 {
		t.Errorf("Acme percentage = %f, want 80", rows[0].Percentage)
	}
	if rows[2].CustomerID != UnknownCustomerKey || rows[2].CustomerName != UnknownCustomerName {
		t.Errorf("fallback row = %s/%s, want %s/%s",
			rows[2].CustomerID, rows[2].CustomerName, UnknownCustomerKey, UnknownCustomerName)
	}
	// Null amount rows still count invoices but contribute 0.
	if rows[2].InvoiceCount != 2 || !rows[2].Amount.Equal(types.MustMoney("50")) {
		t.Errorf("fallback row = count %d amount %s, want 2 and 50", rows[2].InvoiceCount, rows[2].Amount)
	}

	if got := report.Income.ByMonth[0].Amount; !got.Equal(types.MustMoney("750")) {
		t.Errorf("january income = %s, want 750", got)
	}
	if got := report.Income.ByMonth[3].Amount; !got.IsZero() {
		t.Errorf("april income = %s, want 0", got)
	}
}

func TestBuildReport_CustomerCap(t *testing.T) {
	var src SourceData
	for i := 0; i < 14; i++ {
		cid := id.New()
		name := fmt.Sprintf("Customer %02d", i)
		src.Invoices = append(src.Invoices,
			invoice(1, amount(fmt.Sprintf("%d", 100+i)), &cid, &name))
	}

	report := BuildReport(src, nil)

	if len(report.Income.ByCustomer) != maxCustomerRows {
		t.Fatalf("byCustomer rows = %d, want %d", len(report.Income.ByCustomer), maxCustomerRows)
	}
	for i := 1; i < len(report.Income.ByCustomer); i++ {
		prev, cur := report.Income.ByCustomer[i-1].Amount, report.Income.ByCustomer[i].Amount
		if prev.LessThan(cur) {
			t.Fatalf("rows not descending at index %d: %s < %s", i, prev, cur)
		}
	}
}

func TestBuildReport_ExpenseGrouping(t *testing.T) {
	personel := id.New()
	kira := id.New()
	src := SourceData{
		Expenses: []ExpenseRecord{
			expense(1, amount("300"), &personel, strPtr("Personel"), strPtr("Maaş")),
			expense(2, amount("100"), &personel, strPtr("Personel"), strPtr("Prim")),
			expense(2, amount("100"), &kira, strPtr("Kira"), nil),
			expense(5, nullAmount(), nil, nil, nil),
		},
	}

	report := BuildReport(src, nil)

	if got, want := report.Expenses.Total, types.MustMoney("500"); !got.Equal(want) {
		t.Fatalf("expense total = %s, want %s", got, want)
	}

	cats := report.Expenses.ByCategory
	if len(cats) != 3 {
		t.Fatalf("byCategory rows = %d, want 3", len(cats))
	}
	if cats[0].Category != "Personel" || !cats[0].Amount.Equal(types.MustMoney("400")) {
		t.Errorf("top category = %s %s, want Personel 400", cats[0].Category, cats[0].Amount)
	}
	if cats[0].CategoryID != personel.String() {
		t.Errorf("top category id = %s, want %s", cats[0].CategoryID, personel)
	}
	if cats[0].Percentage != 80 {
		t.Errorf("Personel percentage = %f, want 80", cats[0].Percentage)
	}
	if cats[0].RecordCount != 2 {
		t.Errorf("Personel record count = %d, want 2", cats[0].RecordCount)
	}

	var foundFallback bool
	for _, c := range cats {
		if c.CategoryID == UnknownCategoryKey && c.Category == UnknownCategoryName {
			foundFallback = true
		}
	}
	if !foundFallback {
		t.Errorf("missing %s/%s fallback category", UnknownCategoryKey, UnknownCategoryName)
	}

	// Only subcategorized spend appears in the breakdown; the Kira row
	// counts toward its category but produces no subcategory row.
	subs := report.Expenses.BySubcategory
	if len(subs) != 2 {
		t.Fatalf("bySubcategory rows = %d, want 2", len(subs))
	}
	if subs[0].Category != "Personel" || subs[0].Subcategory != "Maaş" {
		t.Errorf("top subcategory = %s/%s, want Personel/Maaş", subs[0].Category, subs[0].Subcategory)
	}
	for _, s := range subs {
		if s.Category == "Kira" {
			t.Errorf("unexpected subcategory row for Kira: %q", s.Subcategory)
		}
	}
}

func TestBuildReport_SubcategoryCap(t *testing.T) {
	genel := id.New()
	var src SourceData
	for i := 0; i < 20; i++ {
		sub := fmt.Sprintf("Sub %02d", i)
		src.Expenses = append(src.Expenses,
			expense(1, amount(fmt.Sprintf("%d", 50+i)), &genel, strPtr("Genel"), &sub))
	}

	report := BuildReport(src, nil)

	if len(report.Expenses.BySubcategory) != maxSubcategoryRows {
		t.Fatalf("bySubcategory rows = %d, want %d", len(report.Expenses.BySubcategory), maxSubcategoryRows)
	}
	// Categories are never capped.
	if len(report.Expenses.ByCategory) != 1 {
		t.Fatalf("byCategory rows = %d, want 1", len(report.Expenses.ByCategory))
	}
}

func TestBuildReport_MonthlyProfit(t *testing.T) {
	src := SourceData{
		Invoices: []SalesInvoice{invoice(1, amount("1000"), nil, nil)},
		Expenses: []ExpenseRecord{
			expense(1, amount("400"), nil, strPtr("Genel"), nil),
			expense(2, amount("300"), nil, strPtr("Genel"), nil),
		},
	}

	report := BuildReport(src, nil)

	jan := report.Profit.ByMonth[0]
	if !jan.Profit.Equal(types.MustMoney("600")) {
		t.Errorf("january profit = %s, want 600", jan.Profit)
	}
	if jan.Margin != 60 {
		t.Errorf("january margin = %f, want 60", jan.Margin)
	}

	// No income in February: margin stays 0 even with a loss.
	feb := report.Profit.ByMonth[1]
	if !feb.Profit.Equal(types.MustMoney("-300")) {
		t.Errorf("february profit = %s, want -300", feb.Profit)
	}
	if feb.Margin != 0 {
		t.Errorf("february margin = %f, want 0", feb.Margin)
	}

	if !report.Profit.Total.Equal(types.MustMoney("300")) {
		t.Errorf("profit total = %s, want 300", report.Profit.Total)
	}
	if report.Profit.Margin != 30 {
		t.Errorf("overall margin = %f, want 30", report.Profit.Margin)
	}
}

func TestBuildReport_BudgetComparison(t *testing.T) {
	src := SourceData{
		Invoices: []SalesInvoice{invoice(1, amount("1200"), nil, nil)},
		Expenses: []ExpenseRecord{expense(1, amount("200"), nil, strPtr("Genel"), nil)},
		Budget: []BudgetEntry{
			{Year: 2025, CategoryName: "Satış Gelirleri", Amount: amount("1000")},
			{Year: 2025, CategoryName: "Personel", Amount: amount("1000")},
		},
	}

	report := BuildReport(src, nil)
	vb := report.Comparisons.VsBudget

	if !vb.Income.Budget.Equal(types.MustMoney("1000")) {
		t.Errorf("income budget = %s, want 1000", vb.Income.Budget)
	}
	if !vb.Income.Variance.Equal(types.MustMoney("200")) {
		t.Errorf("income variance = %s, want 200", vb.Income.Variance)
	}
	if vb.Income.VariancePercent != 20 {
		t.Errorf("income variancePercent = %f, want 20", vb.Income.VariancePercent)
	}

	if !vb.Expenses.Variance.Equal(types.MustMoney("-800")) {
		t.Errorf("expense variance = %s, want -800", vb.Expenses.Variance)
	}
	if vb.Expenses.VariancePercent != -80 {
		t.Errorf("expense variancePercent = %f, want -80", vb.Expenses.VariancePercent)
	}

	// Budget profit is 0: percent stays 0 regardless of variance.
	if !vb.Profit.Budget.IsZero() {
		t.Errorf("profit budget = %s, want 0", vb.Profit.Budget)
	}
	if vb.Profit.VariancePercent != 0 {
		t.Errorf("profit variancePercent = %f, want 0", vb.Profit.VariancePercent)
	}
}

func TestBuildReport_ProfitVarianceNegativeReference(t *testing.T) {
	src := SourceData{
		Invoices: []SalesInvoice{invoice(1, amount("500"), nil, nil)},
		Budget: []BudgetEntry{
			{CategoryName: "Personel", Amount: amount("1000")},
		},
	}

	report := BuildReport(src, nil)
	line := report.Comparisons.VsBudget.Profit

	// Budget profit -1000, actual 500, variance 1500 over abs(-1000).
	if !line.Budget.Equal(types.MustMoney("-1000")) {
		t.Fatalf("profit budget = %s, want -1000", line.Budget)
	}
	if !line.Variance.Equal(types.MustMoney("1500")) {
		t.Fatalf("profit variance = %s, want 1500", line.Variance)
	}
	if line.VariancePercent != 150 {
		t.Errorf("profit variancePercent = %f, want 150", line.VariancePercent)
	}
}

func TestBuildReport_PreviousYearComparison(t *testing.T) {
	prior := invoice(6, amount("800"), nil, nil)
	prior.InvoiceDate = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	priorExp := expense(6, amount("1000"), nil, strPtr("Genel"), nil)
	priorExp.ExpenseDate = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	src := SourceData{
		Invoices:          []SalesInvoice{invoice(1, amount("1000"), nil, nil)},
		Expenses:          []ExpenseRecord{expense(1, amount("500"), nil, strPtr("Genel"), nil)},
		PriorYearInvoices: []SalesInvoice{prior},
		PriorYearExpenses: []ExpenseRecord{priorExp},
	}

	report := BuildReport(src, nil)
	vy := report.Comparisons.VsPreviousYear

	if !vy.Income.Change.Equal(types.MustMoney("200")) {
		t.Errorf("income change = %s, want 200", vy.Income.Change)
	}
	if vy.Income.ChangePercent != 25 {
		t.Errorf("income changePercent = %f, want 25", vy.Income.ChangePercent)
	}

	// Prior profit -200, current 500, change 700 over abs(-200).
	if !vy.Profit.Previous.Equal(types.MustMoney("-200")) {
		t.Fatalf("prior profit = %s, want -200", vy.Profit.Previous)
	}
	if !vy.Profit.Change.Equal(types.MustMoney("700")) {
		t.Fatalf("profit change = %s, want 700", vy.Profit.Change)
	}
	if vy.Profit.ChangePercent != 350 {
		t.Errorf("profit changePercent = %f, want 350", vy.Profit.ChangePercent)
	}
}

func TestBuildReport_PreviousYearZeroReference(t *testing.T) {
	src := SourceData{
		Invoices: []SalesInvoice{invoice(1, amount("1000"), nil, nil)},
	}

	report := BuildReport(src, nil)
	vy := report.Comparisons.VsPreviousYear

	if vy.Income.ChangePercent != 0 {
		t.Errorf("income changePercent = %f, want 0", vy.Income.ChangePercent)
	}
	if vy.Profit.ChangePercent != 0 {
		t.Errorf("profit changePercent = %f, want 0", vy.Profit.ChangePercent)
	}
}
