// Package hr_repo provides PostgreSQL repositories for the HR domain.
package hr_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
	"finsight/internal/domain/leave"
	"finsight/internal/infrastructure/storage/postgres"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// LeaveRepo implements leave.Repository.
type LeaveRepo struct{}

func NewLeaveRepo() *LeaveRepo {
	return &LeaveRepo{}
}

var _ leave.Repository = (*LeaveRepo)(nil)

// GetEmployee returns the employee row needed for entitlement math.
func (r *LeaveRepo) GetEmployee(ctx context.Context, employeeID id.ID) (*leave.Employee, error) {
	sql, args, err := builder().
		Select("id", "hire_date").
		From("employees").
		Where(squirrel.Eq{"id": employeeID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build employee select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var emp leave.Employee
	if err := pgxscan.Get(ctx, querier, &emp, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("employee", employeeID.String())
		}
		return nil, fmt.Errorf("select employee: %w", err)
	}
	return &emp, nil
}

// ListActiveTypes returns active leave types ordered by name.
func (r *LeaveRepo) ListActiveTypes(ctx context.Context) ([]leave.Type, error) {
	sql, args, err := builder().
		Select("id", "name", "color", "is_active").
		From("leave_types").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build leave type select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []leave.Type
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select leave types: %w", err)
	}
	return rows, nil
}

// ListRules returns the entitlement rules of one leave type ordered by
// priority, so the first match wins.
func (r *LeaveRepo) ListRules(ctx context.Context, leaveTypeID id.ID) ([]leave.Rule, error) {
	sql, args, err := builder().
		Select(
			"id",
			"leave_type_id",
			"name",
			"min_years_of_service",
			"max_years_of_service",
			"days_entitled",
			"priority",
		).
		From("leave_type_rules").
		Where(squirrel.Eq{"leave_type_id": leaveTypeID}).
		OrderBy("priority").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build leave rule select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []leave.Rule
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select leave rules: %w", err)
	}
	return rows, nil
}

// ListRequests returns requests whose start date falls in the range.
func (r *LeaveRepo) ListRequests(ctx context.Context, q leave.RequestQuery) ([]leave.Request, error) {
	qb := builder().
		Select("id", "employee_id", "leave_type", "start_date", "end_date", "status").
		From("employee_leaves").
		Where(squirrel.Eq{"employee_id": q.EmployeeID}).
		Where(squirrel.Eq{"leave_type": q.LeaveType}).
		Where(squirrel.GtOrEq{"start_date": q.From}).
		Where(squirrel.LtOrEq{"start_date": q.To})
	if len(q.Statuses) > 0 {
		qb = qb.Where(squirrel.Eq{"status": q.Statuses})
	}

	sql, args, err := qb.OrderBy("start_date").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build leave request select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []leave.Request
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select leave requests: %w", err)
	}
	return rows, nil
}
