package analytics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
	"finsight/internal/core/tenant"
	"finsight/pkg/logger"
)

var tracer = otel.Tracer("finsight/analytics")

// Tenant setting key holding the optional classifier expression.
const classifierSettingKey = "budget_classifier"

// Service builds income and expense analysis reports.
type Service struct {
	repo Repository
}

// NewService creates a new analytics service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// IncomeExpense builds the report for the filtered period.
//
// Invoice and expense reads are primary: a failure fails the whole
// report. Prior-year and budget reads are secondary: a failure degrades
// the matching comparison section to zeros. Without a tenant in ctx the
// result is an all-zero report, not an error.
func (s *Service) IncomeExpense(ctx context.Context, f Filter) (*Report, error) {
	ctx, span := tracer.Start(ctx, "analytics.income_expense",
		trace.WithAttributes(
			attribute.Int("report.year", f.Year),
			attribute.String("report.currency", string(f.Currency)),
		))
	defer span.End()

	if f.Year <= 0 {
		return nil, apperror.NewInvalidPeriod("year must be positive")
	}
	if !f.Currency.Valid() {
		return nil, apperror.NewInvalidCurrency(string(f.Currency))
	}
	start, end := f.Bounds()
	if end.Before(start) {
		return nil, apperror.NewInvalidPeriod("end date before start date")
	}

	t := tenant.GetTenant(ctx)
	if t == nil {
		return ZeroReport(), nil
	}

	priorStart, priorEnd := f.PriorBounds()

	var src SourceData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.repo.ListSalesInvoices(gctx, InvoiceQuery{From: start, To: end, Currency: f.Currency})
		if err != nil {
			return apperror.NewSourceRead("sales_invoices", err)
		}
		src.Invoices = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListExpenses(gctx, ExpenseQuery{From: start, To: end, CategoryID: idString(f.CategoryID)})
		if err != nil {
			return apperror.NewSourceRead("expenses", err)
		}
		src.Expenses = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListSalesInvoices(gctx, InvoiceQuery{From: priorStart, To: priorEnd, Currency: f.Currency})
		if err != nil {
			logger.Warn(gctx, "prior-year invoice read failed, comparison degraded", "error", err)
			return nil
		}
		src.PriorYearInvoices = rows
		return nil
	})
	g.Go(func() error {
		// The year-over-year comparison covers all spend, so the category
		// filter never applies to the prior-year read.
		rows, err := s.repo.ListExpenses(gctx, ExpenseQuery{From: priorStart, To: priorEnd})
		if err != nil {
			logger.Warn(gctx, "prior-year expense read failed, comparison degraded", "error", err)
			return nil
		}
		src.PriorYearExpenses = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListBudgetEntries(gctx, BudgetQuery{Year: f.Year, DepartmentID: idString(f.DepartmentID)})
		if err != nil {
			logger.Warn(gctx, "budget read failed, comparison degraded", "error", err)
			return nil
		}
		src.Budget = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildReport(src, s.classifierFor(ctx, t)), nil
}

// classifierFor resolves the tenant's classifier, falling back to the
// default on a missing or invalid expression.
func (s *Service) classifierFor(ctx context.Context, t *tenant.Tenant) Classifier {
	expr := t.Setting(classifierSettingKey)
	if expr == "" {
		return DefaultClassifier
	}
	classify, err := NewCELClassifier(expr)
	if err != nil {
		logger.Warn(ctx, "invalid budget classifier expression, using default", "tenant", t.Slug, "error", err)
		return DefaultClassifier
	}
	return classify
}

func idString(v *id.ID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}
