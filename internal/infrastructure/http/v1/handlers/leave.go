package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
	"finsight/internal/domain/leave"
	"finsight/internal/infrastructure/storage/postgres"
)

// LeaveHandler serves leave entitlement balances.
type LeaveHandler struct {
	*BaseHandler
	leave *leave.Service
}

// NewLeaveHandler creates a leave handler.
func NewLeaveHandler(base *BaseHandler, leaveService *leave.Service) *LeaveHandler {
	return &LeaveHandler{
		BaseHandler: base,
		leave:       leaveService,
	}
}

// Entitlements returns the per-type leave balances of one employee.
// GET /api/v1/hr/employees/:id/leave-entitlements
func (h *LeaveHandler) Entitlements(c *gin.Context) {
	employeeID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid employee id").
			WithDetail("value", c.Param("id")))
		return
	}

	var entitlements []leave.Entitlement
	err = postgres.MustGetTxManager(c.Request.Context()).ReadOnly(c.Request.Context(), func(ctx context.Context) error {
		var innerErr error
		entitlements, innerErr = h.leave.Entitlements(ctx, employeeID)
		return innerErr
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"entitlements": entitlements})
}
