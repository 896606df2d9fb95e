package leave

import (
	"time"

	"finsight/internal/core/id"
)

// Shown when no rule matches the employee's years of service.
const NoRuleName = "Kural tanımlı değil"

// Request statuses that consume entitlement days.
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// Type is a configured leave type, e.g. annual or sick leave.
type Type struct {
	ID       id.ID   `db:"id"`
	Name     string  `db:"name"`
	Color    *string `db:"color"`
	IsActive bool    `db:"is_active"`
}

// Rule grants an entitlement for a service-length band. MinYears nil
// means 0 and MaxYears nil means unbounded; the band is inclusive on
// the lower edge and exclusive on the upper.
type Rule struct {
	ID           id.ID  `db:"id"`
	LeaveTypeID  id.ID  `db:"leave_type_id"`
	Name         string `db:"name"`
	MinYears     *int   `db:"min_years_of_service"`
	MaxYears     *int   `db:"max_years_of_service"`
	DaysEntitled int    `db:"days_entitled"`
	Priority     int    `db:"priority"`
}

// Request is one leave request row.
type Request struct {
	ID         id.ID     `db:"id"`
	EmployeeID id.ID     `db:"employee_id"`
	LeaveType  string    `db:"leave_type"`
	StartDate  time.Time `db:"start_date"`
	EndDate    time.Time `db:"end_date"`
	Status     string    `db:"status"`
}

// Employee carries the fields entitlement needs.
type Employee struct {
	ID       id.ID      `db:"id"`
	HireDate *time.Time `db:"hire_date"`
}

// Entitlement is the computed balance for one leave type.
type Entitlement struct {
	LeaveType     Type   `json:"leaveType"`
	RuleName      string `json:"ruleName"`
	DaysEntitled  int    `json:"daysEntitled"`
	DaysUsed      int    `json:"daysUsed"`
	DaysRemaining int    `json:"daysRemaining"`
}
