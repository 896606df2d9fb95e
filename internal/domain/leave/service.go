package leave

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"finsight/internal/core/id"
	"finsight/internal/core/tenant"
	"finsight/pkg/logger"
)

var tracer = otel.Tracer("finsight/leave")

const daysPerYear = 365.25

// Service computes leave entitlement balances.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new leave service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Entitlements computes the per-type balance for one employee.
//
// For each active leave type the first rule (by priority) whose service
// band contains the employee's years of service grants the entitlement.
// Used days count approved and pending requests starting in the current
// calendar year. A failed rule read skips that type; a failed request
// read degrades that type's used days to zero. Without a tenant in ctx
// the result is empty.
func (s *Service) Entitlements(ctx context.Context, employeeID id.ID) ([]Entitlement, error) {
	ctx, span := tracer.Start(ctx, "leave.entitlements",
		trace.WithAttributes(attribute.String("employee.id", employeeID.String())))
	defer span.End()

	if tenant.GetTenant(ctx) == nil {
		return []Entitlement{}, nil
	}

	employee, err := s.repo.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	years := YearsOfService(employee.HireDate, now)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)

	types, err := s.repo.ListActiveTypes(ctx)
	if err != nil {
		return nil, err
	}

	entitlements := make([]Entitlement, 0, len(types))
	for _, lt := range types {
		rules, err := s.repo.ListRules(ctx, lt.ID)
		if err != nil {
			logger.Error(ctx, "leave rule read failed, type skipped", "leave_type", lt.Name, "error", err)
			continue
		}

		daysEntitled := 0
		ruleName := NoRuleName
		if rule := matchRule(rules, years); rule != nil {
			daysEntitled = rule.DaysEntitled
			ruleName = rule.Name
		}

		daysUsed := 0
		requests, err := s.repo.ListRequests(ctx, RequestQuery{
			EmployeeID: employeeID,
			LeaveType:  lt.Name,
			From:       yearStart,
			To:         yearEnd,
			Statuses:   []string{StatusApproved, StatusPending},
		})
		if err != nil {
			logger.Error(ctx, "leave request read failed, used days zeroed", "leave_type", lt.Name, "error", err)
		} else {
			for _, req := range requests {
				daysUsed += RequestDays(req.StartDate, req.EndDate)
			}
		}

		entitlements = append(entitlements, Entitlement{
			LeaveType:     lt,
			RuleName:      ruleName,
			DaysEntitled:  daysEntitled,
			DaysUsed:      daysUsed,
			DaysRemaining: max(0, daysEntitled-daysUsed),
		})
	}
	return entitlements, nil
}

// matchRule returns the first rule whose band contains years, or nil.
// Rules are already ordered by priority.
func matchRule(rules []Rule, years int) *Rule {
	for i := range rules {
		r := &rules[i]
		minYears := 0
		if r.MinYears != nil {
			minYears = *r.MinYears
		}
		if years < minYears {
			continue
		}
		if r.MaxYears != nil && years >= *r.MaxYears {
			continue
		}
		return r
	}
	return nil
}

// YearsOfService returns whole years since hire, averaging leap years
// at 365.25 days. A missing hire date counts as zero.
func YearsOfService(hireDate *time.Time, now time.Time) int {
	if hireDate == nil {
		return 0
	}
	diff := now.Sub(*hireDate)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Floor(diff.Hours() / 24 / daysPerYear))
}

// RequestDays returns the day span of a request, inclusive of both
// edges: a one-day leave spans one day.
func RequestDays(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours()/24)) + 1
}
