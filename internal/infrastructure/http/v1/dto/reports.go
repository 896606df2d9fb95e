package dto

import (
	"time"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
	"finsight/internal/domain/analytics"
	"finsight/internal/domain/opex"
)

// IncomeExpenseRequest holds query parameters for the income and
// expense report.
type IncomeExpenseRequest struct {
	Year         int        `form:"year" binding:"required,min=2000,max=2100"`
	Currency     string     `form:"currency"`
	StartDate    *time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"endDate" time_format:"2006-01-02"`
	CategoryID   string     `form:"categoryId"`
	DepartmentID string     `form:"departmentId"`
}

// ToFilter converts the request to a domain filter. Currency defaults
// to TRY.
func (r IncomeExpenseRequest) ToFilter() (analytics.Filter, error) {
	f := analytics.Filter{
		Year:      r.Year,
		Currency:  analytics.CurrencyTRY,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
	if r.Currency != "" {
		f.Currency = analytics.Currency(r.Currency)
	}

	var err error
	if f.CategoryID, err = parseOptionalID(r.CategoryID, "categoryId"); err != nil {
		return analytics.Filter{}, err
	}
	if f.DepartmentID, err = parseOptionalID(r.DepartmentID, "departmentId"); err != nil {
		return analytics.Filter{}, err
	}
	return f, nil
}

// OpexRequest holds query parameters for the operating-expense report.
type OpexRequest struct {
	Year         int    `form:"year" binding:"required,min=2000,max=2100"`
	Currency     string `form:"currency"`
	Month        *int   `form:"month" binding:"omitempty,min=1,max=12"`
	CategoryID   string `form:"categoryId"`
	DepartmentID string `form:"departmentId"`
}

// ToFilter converts the request to a domain filter. Currency defaults
// to TRY.
func (r OpexRequest) ToFilter() (opex.Filter, error) {
	f := opex.Filter{
		Year:     r.Year,
		Currency: "TRY",
		Month:    r.Month,
	}
	if r.Currency != "" {
		f.Currency = r.Currency
	}
	if r.CategoryID != "" {
		categoryID := r.CategoryID
		f.CategoryID = &categoryID
	}

	var err error
	if f.DepartmentID, err = parseOptionalID(r.DepartmentID, "departmentId"); err != nil {
		return opex.Filter{}, err
	}
	return f, nil
}

// ExportRequest holds query parameters for the report download.
type ExportRequest struct {
	IncomeExpenseRequest
	Format string `form:"format"`
}

func parseOptionalID(raw, field string) (*id.ID, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid id").
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return &parsed, nil
}
