package leave

import (
	"context"
	"time"

	"finsight/internal/core/id"
)

// RequestQuery selects leave requests for one employee and type.
type RequestQuery struct {
	EmployeeID id.ID
	LeaveType  string
	From       time.Time
	To         time.Time
	Statuses   []string
}

// Repository reads leave configuration and requests. All reads are
// tenant-scoped through the transaction manager in ctx.
type Repository interface {
	// GetEmployee returns the employee or a not-found error.
	GetEmployee(ctx context.Context, employeeID id.ID) (*Employee, error)

	// ListActiveTypes returns active leave types ordered by name.
	ListActiveTypes(ctx context.Context) ([]Type, error)

	// ListRules returns the rules of one leave type ordered by priority.
	ListRules(ctx context.Context, leaveTypeID id.ID) ([]Rule, error)

	// ListRequests returns requests whose start date falls in the range.
	ListRequests(ctx context.Context, q RequestQuery) ([]Request, error)
}
