package opex

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"finsight/internal/core/apperror"
	"finsight/internal/core/tenant"
	"finsight/pkg/logger"
)

var tracer = otel.Tracer("finsight/opex")

// Service builds operating-expense analysis reports.
type Service struct {
	repo Repository
}

// NewService creates a new opex service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Analyze merges planned matrix rows and actual ledger rows into one
// expense breakdown. Matrix and ledger reads are primary; the budget
// read only happens with a department filter and degrades to a missing
// comparison section on failure. Without a tenant in ctx the result is
// an all-zero report.
func (s *Service) Analyze(ctx context.Context, f Filter) (*Report, error) {
	ctx, span := tracer.Start(ctx, "opex.analyze",
		trace.WithAttributes(
			attribute.Int("report.year", f.Year),
			attribute.String("report.currency", f.Currency),
		))
	defer span.End()

	if f.Year <= 0 {
		return nil, apperror.NewInvalidPeriod("year must be positive")
	}
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		return nil, apperror.NewInvalidPeriod("month must be in 1..12")
	}

	t := tenant.GetTenant(ctx)
	if t == nil {
		return ZeroReport(), nil
	}

	from, to := f.ledgerBounds()

	var (
		matrix   []MatrixEntry
		ledger   []LedgerExpense
		budget   []BudgetAmount
		budgetOK bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.repo.ListMatrixEntries(gctx, MatrixQuery{Year: f.Year, Month: f.Month, Category: f.CategoryID})
		if err != nil {
			return apperror.NewSourceRead("opex_matrix", err)
		}
		matrix = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ListLedgerExpenses(gctx, LedgerQuery{From: from, To: to, CategoryID: f.CategoryID})
		if err != nil {
			return apperror.NewSourceRead("expenses", err)
		}
		ledger = rows
		return nil
	})
	if f.DepartmentID != nil {
		g.Go(func() error {
			rows, err := s.repo.ListBudgetAmounts(gctx, BudgetQuery{
				Year:         f.Year,
				Currency:     f.Currency,
				DepartmentID: f.DepartmentID.String(),
			})
			if err != nil {
				logger.Warn(gctx, "budget read failed, comparison omitted", "error", err)
				return nil
			}
			budget = rows
			budgetOK = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	acc := newAccumulator()
	acc.addMatrix(matrix)
	acc.addLedger(ledger)
	report := acc.report()

	if budgetOK {
		report.BudgetComparison = compareBudget(budget, report.TotalExpenses)
	}
	return report, nil
}

// ledgerBounds returns the ledger date range: the full year, or the
// single filtered month.
func (f Filter) ledgerBounds() (time.Time, time.Time) {
	if f.Month != nil {
		m := time.Month(*f.Month)
		start := time.Date(f.Year, m, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		return start, end
	}
	return time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(f.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
