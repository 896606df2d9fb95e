package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core/types"
)

// Row caps applied to the ranked breakdowns. Category rows are uncapped.
const (
	maxCustomerRows    = 10
	maxSubcategoryRows = 15
)

var hundred = decimal.NewFromInt(100)

// BuildReport aggregates the source rows into a full report. It is a
// pure function: all filtering besides the grouping below has already
// happened at the read layer.
func BuildReport(src SourceData, classify Classifier) *Report {
	if classify == nil {
		classify = DefaultClassifier
	}

	income := buildIncome(src.Invoices)
	expenses := buildExpenses(src.Expenses)
	profit := buildProfit(income, expenses)

	prevIncome := sumInvoices(src.PriorYearInvoices)
	prevExpenses := sumExpenses(src.PriorYearExpenses)

	return &Report{
		Income:   income,
		Expenses: expenses,
		Profit:   profit,
		Comparisons: Comparisons{
			VsBudget:       buildBudgetComparison(src.Budget, classify, income.Total, expenses.Total, profit.Total),
			VsPreviousYear: buildYearComparison(prevIncome, prevExpenses, income.Total, expenses.Total, profit.Total),
		},
	}
}

func buildIncome(invoices []SalesInvoice) IncomeSummary {
	total := types.Zero()
	months := newMonthSums()

	type bucket struct {
		name   string
		amount types.Money
		count  int
	}
	byCustomer := make(map[string]*bucket)

	for _, inv := range invoices {
		amount := types.AmountOrZero(inv.Amount)
		total = total.Add(amount)
		months.add(inv.InvoiceDate, amount)

		key := UnknownCustomerKey
		if inv.CustomerID != nil {
			key = inv.CustomerID.String()
		}
		b, ok := byCustomer[key]
		if !ok {
			name := UnknownCustomerName
			if inv.CustomerName != nil && *inv.CustomerName != "" {
				name = *inv.CustomerName
			}
			b = &bucket{name: name}
			byCustomer[key] = b
		}
		b.amount = b.amount.Add(amount)
		b.count++
	}

	rows := make([]CustomerIncome, 0, len(byCustomer))
	for key, b := range byCustomer {
		rows = append(rows, CustomerIncome{
			CustomerID:   key,
			CustomerName: b.name,
			Amount:       b.amount,
			Percentage:   types.PercentOf(b.amount, total),
			InvoiceCount: b.count,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Amount.Equal(rows[j].Amount) {
			return rows[i].Amount.GreaterThan(rows[j].Amount)
		}
		return rows[i].CustomerName < rows[j].CustomerName
	})
	if len(rows) > maxCustomerRows {
		rows = rows[:maxCustomerRows]
	}

	return IncomeSummary{
		Total:      total,
		ByCustomer: rows,
		ByMonth:    months.rows(),
	}
}

func buildExpenses(records []ExpenseRecord) ExpenseSummary {
	total := types.Zero()
	months := newMonthSums()

	type catBucket struct {
		name   string
		amount types.Money
		count  int
	}
	byCategory := make(map[string]*catBucket)
	type subKey struct{ category, subcategory string }
	bySubcategory := make(map[subKey]types.Money)

	for _, rec := range records {
		amount := types.AmountOrZero(rec.Amount)
		total = total.Add(amount)
		months.add(rec.ExpenseDate, amount)

		key := UnknownCategoryKey
		if rec.CategoryID != nil {
			key = rec.CategoryID.String()
		}
		cb, ok := byCategory[key]
		if !ok {
			name := UnknownCategoryName
			if rec.CategoryName != nil && *rec.CategoryName != "" {
				name = *rec.CategoryName
			}
			cb = &catBucket{name: name, amount: types.Zero()}
			byCategory[key] = cb
		}
		cb.amount = cb.amount.Add(amount)
		cb.count++

		// Un-subcategorized spend stays out of this breakdown; it still
		// counts toward the category and month totals above.
		if rec.Subcategory != nil && *rec.Subcategory != "" {
			k := subKey{category: cb.name, subcategory: *rec.Subcategory}
			bySubcategory[k] = bySubcategory[k].Add(amount)
		}
	}

	catRows := make([]CategoryExpense, 0, len(byCategory))
	for key, cb := range byCategory {
		catRows = append(catRows, CategoryExpense{
			CategoryID:  key,
			Category:    cb.name,
			Amount:      cb.amount,
			Percentage:  types.PercentOf(cb.amount, total),
			RecordCount: cb.count,
		})
	}
	sort.SliceStable(catRows, func(i, j int) bool {
		if !catRows[i].Amount.Equal(catRows[j].Amount) {
			return catRows[i].Amount.GreaterThan(catRows[j].Amount)
		}
		return catRows[i].Category < catRows[j].Category
	})

	subRows := make([]SubcategoryExpense, 0, len(bySubcategory))
	for k, amount := range bySubcategory {
		subRows = append(subRows, SubcategoryExpense{
			Category:    k.category,
			Subcategory: k.subcategory,
			Amount:      amount,
			Percentage:  types.PercentOf(amount, total),
		})
	}
	sort.SliceStable(subRows, func(i, j int) bool {
		if !subRows[i].Amount.Equal(subRows[j].Amount) {
			return subRows[i].Amount.GreaterThan(subRows[j].Amount)
		}
		if subRows[i].Category != subRows[j].Category {
			return subRows[i].Category < subRows[j].Category
		}
		return subRows[i].Subcategory < subRows[j].Subcategory
	})
	if len(subRows) > maxSubcategoryRows {
		subRows = subRows[:maxSubcategoryRows]
	}

	return ExpenseSummary{
		Total:         total,
		ByCategory:    catRows,
		BySubcategory: subRows,
		ByMonth:       months.rows(),
	}
}

func buildProfit(income IncomeSummary, expenses ExpenseSummary) ProfitSummary {
	byMonth := make([]MonthlyProfit, 0, 12)
	for i := 0; i < 12; i++ {
		in := income.ByMonth[i].Amount
		out := expenses.ByMonth[i].Amount
		profit := in.Sub(out)
		byMonth = append(byMonth, MonthlyProfit{
			Month:     i + 1,
			MonthName: monthNames[i],
			Income:    in,
			Expenses:  out,
			Profit:    profit,
			Margin:    types.PercentOf(profit, in),
		})
	}

	total := income.Total.Sub(expenses.Total)
	return ProfitSummary{
		Total:   total,
		Margin:  types.PercentOf(total, income.Total),
		ByMonth: byMonth,
	}
}

func buildBudgetComparison(entries []BudgetEntry, classify Classifier, actualIncome, actualExpenses, actualProfit types.Money) BudgetComparison {
	budgetIncome := types.Zero()
	budgetExpenses := types.Zero()
	for _, e := range entries {
		amount := types.AmountOrZero(e.Amount)
		if classify(e) == ClassIncome {
			budgetIncome = budgetIncome.Add(amount)
		} else {
			budgetExpenses = budgetExpenses.Add(amount)
		}
	}
	budgetProfit := budgetIncome.Sub(budgetExpenses)

	return BudgetComparison{
		Income:   budgetLine(budgetIncome, actualIncome, false),
		Expenses: budgetLine(budgetExpenses, actualExpenses, false),
		Profit:   budgetLine(budgetProfit, actualProfit, true),
	}
}

func buildYearComparison(prevIncome, prevExpenses, curIncome, curExpenses, curProfit types.Money) PreviousYearComparison {
	prevProfit := prevIncome.Sub(prevExpenses)
	return PreviousYearComparison{
		Income:   yearLine(prevIncome, curIncome, false),
		Expenses: yearLine(prevExpenses, curExpenses, false),
		Profit:   yearLine(prevProfit, curProfit, true),
	}
}

func budgetLine(budget, actual types.Money, signedRef bool) BudgetLine {
	variance := actual.Sub(budget)
	return BudgetLine{
		Budget:          budget,
		Actual:          actual,
		Variance:        variance,
		VariancePercent: referencePercent(variance, budget, signedRef),
	}
}

func yearLine(previous, current types.Money, signedRef bool) YearLine {
	change := current.Sub(previous)
	return YearLine{
		Previous:      previous,
		Current:       current,
		Change:        change,
		ChangePercent: referencePercent(change, previous, signedRef),
	}
}

// referencePercent expresses delta as a percentage of ref. Income and
// expense references are non-negative sums guarded with > 0; profit
// references can be negative, so they divide by the absolute value and
// guard against exact zero instead.
func referencePercent(delta, ref types.Money, signedRef bool) float64 {
	if signedRef {
		if ref.IsZero() {
			return 0
		}
		return delta.Div(ref.Abs()).Mul(hundred).InexactFloat64()
	}
	if !ref.IsPositive() {
		return 0
	}
	return delta.Div(ref).Mul(hundred).InexactFloat64()
}

func sumInvoices(invoices []SalesInvoice) types.Money {
	total := types.Zero()
	for _, inv := range invoices {
		total = total.Add(types.AmountOrZero(inv.Amount))
	}
	return total
}

func sumExpenses(records []ExpenseRecord) types.Money {
	total := types.Zero()
	for _, rec := range records {
		total = total.Add(types.AmountOrZero(rec.Amount))
	}
	return total
}

// monthSums is a dense January..December accumulator.
type monthSums [12]types.Money

func newMonthSums() *monthSums {
	var m monthSums
	for i := range m {
		m[i] = types.Zero()
	}
	return &m
}

func (m *monthSums) add(date time.Time, amount types.Money) {
	idx := int(date.Month()) - 1
	m[idx] = m[idx].Add(amount)
}

func (m *monthSums) rows() []MonthlyAmount {
	rows := make([]MonthlyAmount, 0, 12)
	for i, amount := range m {
		rows = append(rows, MonthlyAmount{
			Month:     i + 1,
			MonthName: monthNames[i],
			Amount:    amount,
		})
	}
	return rows
}
