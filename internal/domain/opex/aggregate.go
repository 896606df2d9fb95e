package opex

import (
	"sort"

	"github.com/shopspring/decimal"

	"finsight/internal/core/types"
)

// Turkish calendar month names, index 0 = January.
var monthNames = [12]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

var hundred = decimal.NewFromInt(100)

type subAccum struct {
	id     string
	name   string
	amount types.Money
	months map[int]types.Money
}

type catAccum struct {
	id     string
	name   string
	amount types.Money
	subs   map[string]*subAccum
}

type monthAccum struct {
	total      types.Money
	byCategory map[string]types.Money
}

// accumulator merges matrix and ledger rows into one category tree.
type accumulator struct {
	categories map[string]*catAccum
	months     [12]monthAccum
}

func newAccumulator() *accumulator {
	acc := &accumulator{categories: make(map[string]*catAccum)}
	for i := range acc.months {
		acc.months[i] = monthAccum{total: types.Zero(), byCategory: make(map[string]types.Money)}
	}
	return acc
}

// add records one amount under category/subcategory in month 1..12.
// categoryID is the identifier stored on the category row; the first
// writer of a category name wins.
func (a *accumulator) add(categoryID, category, subcategory string, month int, amount types.Money) {
	if month < 1 || month > 12 {
		return
	}

	cat, ok := a.categories[category]
	if !ok {
		cat = &catAccum{id: categoryID, name: category, amount: types.Zero(), subs: make(map[string]*subAccum)}
		a.categories[category] = cat
	}
	cat.amount = cat.amount.Add(amount)

	sub, ok := cat.subs[subcategory]
	if !ok {
		sub = &subAccum{
			id:     category + "_" + subcategory,
			name:   subcategory,
			amount: types.Zero(),
			months: make(map[int]types.Money),
		}
		cat.subs[subcategory] = sub
	}
	sub.amount = sub.amount.Add(amount)
	sub.months[month] = sub.months[month].Add(amount)

	m := &a.months[month-1]
	m.total = m.total.Add(amount)
	m.byCategory[category] = m.byCategory[category].Add(amount)
}

func (a *accumulator) addMatrix(entries []MatrixEntry) {
	for _, e := range entries {
		category := FallbackCategory
		if e.Category != nil && *e.Category != "" {
			category = *e.Category
		}
		sub := FallbackSubcategory
		if e.Subcategory != nil && *e.Subcategory != "" {
			sub = *e.Subcategory
		}
		// Matrix rows have no separate category id; the name stands in.
		a.add(category, category, sub, e.Month, types.AmountOrZero(e.Amount))
	}
}

func (a *accumulator) addLedger(expenses []LedgerExpense) {
	for _, e := range expenses {
		category := FallbackCategory
		if e.CategoryName != nil && *e.CategoryName != "" {
			category = *e.CategoryName
		}
		categoryID := UnknownCategoryID
		if e.CategoryID != nil {
			categoryID = e.CategoryID.String()
		}
		sub := FallbackSubcategory
		if e.Subcategory != nil && *e.Subcategory != "" {
			sub = *e.Subcategory
		}
		a.add(categoryID, category, sub, int(e.ExpenseDate.Month()), types.AmountOrZero(e.Amount))
	}
}

func (a *accumulator) total() types.Money {
	total := types.Zero()
	for _, cat := range a.categories {
		total = total.Add(cat.amount)
	}
	return total
}

// report renders the accumulated tree. BySubcategory flattens the
// nested rows in category order.
func (a *accumulator) report() *Report {
	total := a.total()

	byCategory := make([]CategoryBreakdown, 0, len(a.categories))
	for _, cat := range a.categories {
		subs := make([]SubcategoryBreakdown, 0, len(cat.subs))
		for _, sub := range cat.subs {
			breakdown := make([]MonthAmount, 0, len(sub.months))
			for month, amount := range sub.months {
				breakdown = append(breakdown, MonthAmount{Month: month, Amount: amount})
			}
			sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Month < breakdown[j].Month })

			subs = append(subs, SubcategoryBreakdown{
				SubcategoryID:    sub.id,
				SubcategoryName:  sub.name,
				CategoryName:     cat.name,
				Amount:           sub.amount,
				Percentage:       types.PercentOf(sub.amount, total),
				MonthlyBreakdown: breakdown,
			})
		}
		sort.SliceStable(subs, func(i, j int) bool {
			if !subs[i].Amount.Equal(subs[j].Amount) {
				return subs[i].Amount.GreaterThan(subs[j].Amount)
			}
			return subs[i].SubcategoryName < subs[j].SubcategoryName
		})

		byCategory = append(byCategory, CategoryBreakdown{
			CategoryID:    cat.id,
			CategoryName:  cat.name,
			Amount:        cat.amount,
			Percentage:    types.PercentOf(cat.amount, total),
			Subcategories: subs,
		})
	}
	sort.SliceStable(byCategory, func(i, j int) bool {
		if !byCategory[i].Amount.Equal(byCategory[j].Amount) {
			return byCategory[i].Amount.GreaterThan(byCategory[j].Amount)
		}
		return byCategory[i].CategoryName < byCategory[j].CategoryName
	})

	bySubcategory := make([]SubcategoryBreakdown, 0)
	for _, cat := range byCategory {
		bySubcategory = append(bySubcategory, cat.Subcategories...)
	}

	monthlyData := make([]MonthlyExpense, 0, 12)
	for i := range a.months {
		m := &a.months[i]
		rows := make([]CategoryAmount, 0, len(m.byCategory))
		for name, amount := range m.byCategory {
			rows = append(rows, CategoryAmount{CategoryName: name, Amount: amount})
		}
		sort.SliceStable(rows, func(x, y int) bool {
			if !rows[x].Amount.Equal(rows[y].Amount) {
				return rows[x].Amount.GreaterThan(rows[y].Amount)
			}
			return rows[x].CategoryName < rows[y].CategoryName
		})
		monthlyData = append(monthlyData, MonthlyExpense{
			Month:      i + 1,
			MonthName:  monthNames[i],
			Total:      m.total,
			ByCategory: rows,
		})
	}

	return &Report{
		TotalExpenses: total,
		ByCategory:    byCategory,
		BySubcategory: bySubcategory,
		MonthlyData:   monthlyData,
	}
}

// compareBudget sums budget rows excluding planned income and compares
// against actual spend.
func compareBudget(rows []BudgetAmount, actual types.Money) *BudgetComparison {
	budgeted := types.Zero()
	for _, row := range rows {
		if row.Category == incomeBudgetCategory {
			continue
		}
		budgeted = budgeted.Add(types.AmountOrZero(row.Amount))
	}

	variance := budgeted.Sub(actual)
	percent := 0.0
	if budgeted.IsPositive() {
		percent = variance.Div(budgeted).Mul(hundred).InexactFloat64()
	}
	return &BudgetComparison{
		Budgeted:        budgeted,
		Actual:          actual,
		Variance:        variance,
		VariancePercent: percent,
	}
}
