package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"finsight/internal/domain/opex"
	"finsight/internal/infrastructure/storage/postgres"
)

// OpexRepo implements opex.Repository.
type OpexRepo struct{}

func NewOpexRepo() *OpexRepo {
	return &OpexRepo{}
}

var _ opex.Repository = (*OpexRepo)(nil)

// ListMatrixEntries returns planned opex rows for the year.
func (r *OpexRepo) ListMatrixEntries(ctx context.Context, q opex.MatrixQuery) ([]opex.MatrixEntry, error) {
	qb := builder().
		Select("id", "year", "month", "category", "subcategory", "amount").
		From("opex_matrix").
		Where(squirrel.Eq{"year": q.Year})
	if q.Month != nil {
		qb = qb.Where(squirrel.Eq{"month": *q.Month})
	}
	if q.Category != nil {
		qb = qb.Where(squirrel.Eq{"category": *q.Category})
	}

	sql, args, err := qb.OrderBy("month").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build matrix select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []opex.MatrixEntry
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select opex matrix: %w", err)
	}
	return rows, nil
}

// ListLedgerExpenses returns actual expense rows in the period.
func (r *OpexRepo) ListLedgerExpenses(ctx context.Context, q opex.LedgerQuery) ([]opex.LedgerExpense, error) {
	qb := builder().
		Select(
			"e.id",
			"e.expense_date",
			"e.amount",
			"e.category_id",
			"cc.name AS category_name",
			"e.subcategory",
		).
		From("expenses e").
		LeftJoin("cashflow_categories cc ON cc.id = e.category_id").
		Where(squirrel.Eq{"e.type": "expense"}).
		Where(squirrel.GtOrEq{"e.expense_date": q.From}).
		Where(squirrel.LtOrEq{"e.expense_date": q.To})
	if q.CategoryID != nil {
		qb = qb.Where(squirrel.Eq{"e.category_id": *q.CategoryID})
	}

	sql, args, err := qb.OrderBy("e.expense_date").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ledger select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []opex.LedgerExpense
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger expenses: %w", err)
	}
	return rows, nil
}

// ListBudgetAmounts returns department budget rows for the year and
// currency.
func (r *OpexRepo) ListBudgetAmounts(ctx context.Context, q opex.BudgetQuery) ([]opex.BudgetAmount, error) {
	sql, args, err := builder().
		Select("category", "budget_amount").
		From("budgets").
		Where(squirrel.Eq{"year": q.Year}).
		Where(squirrel.Eq{"currency": q.Currency}).
		Where(squirrel.Eq{"department_id": q.DepartmentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build budget select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []opex.BudgetAmount
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select budget amounts: %w", err)
	}
	return rows, nil
}
