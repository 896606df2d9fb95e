// Package report_repo provides PostgreSQL repositories for the report
// domains. TxManager is obtained from context per-request; there is no
// tenant filtering in queries because isolation is physical.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"finsight/internal/domain/analytics"
	"finsight/internal/infrastructure/storage/postgres"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// AnalyticsRepo implements analytics.Repository.
type AnalyticsRepo struct{}

// NewAnalyticsRepo creates the repository. TxManager comes from context.
func NewAnalyticsRepo() *AnalyticsRepo {
	return &AnalyticsRepo{}
}

var _ analytics.Repository = (*AnalyticsRepo)(nil)

// ListSalesInvoices returns approved invoices in the period with an
// exact currency match. The customer name is joined in so the engine
// needs no second read.
func (r *AnalyticsRepo) ListSalesInvoices(ctx context.Context, q analytics.InvoiceQuery) ([]analytics.SalesInvoice, error) {
	sql, args, err := builder().
		Select(
			"i.id",
			"i.invoice_date",
			"i.amount",
			"i.currency",
			"i.status",
			"i.customer_id",
			"c.name AS customer_name",
		).
		From("sales_invoices i").
		LeftJoin("customers c ON c.id = i.customer_id").
		Where(squirrel.GtOrEq{"i.invoice_date": q.From}).
		Where(squirrel.LtOrEq{"i.invoice_date": q.To}).
		Where(squirrel.Eq{"i.currency": string(q.Currency)}).
		Where(squirrel.Eq{"i.status": []string{analytics.InvoiceStatusApproved, analytics.InvoiceStatusPaid}}).
		OrderBy("i.invoice_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []analytics.SalesInvoice
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales invoices: %w", err)
	}
	return rows, nil
}

// ListExpenses returns expense ledger rows in the period with the
// category name joined in.
func (r *AnalyticsRepo) ListExpenses(ctx context.Context, q analytics.ExpenseQuery) ([]analytics.ExpenseRecord, error) {
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
		return nil, fmt.Errorf("build expense select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []analytics.ExpenseRecord
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	return rows, nil
}

// ListBudgetEntries returns budget matrix rows for the year.
func (r *AnalyticsRepo) ListBudgetEntries(ctx context.Context, q analytics.BudgetQuery) ([]analytics.BudgetEntry, error) {
	qb := builder().
		Select("id", "year", "category AS category_name", "entry_type", "budget_amount AS amount", "department_id").
		From("budgets").
		Where(squirrel.Eq{"year": q.Year})
	if q.DepartmentID != nil {
		qb = qb.Where(squirrel.Eq{"department_id": *q.DepartmentID})
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build budget select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []analytics.BudgetEntry
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select budget entries: %w", err)
	}
	return rows, nil
}
