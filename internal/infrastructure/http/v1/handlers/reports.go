package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"finsight/internal/core/apperror"
	"finsight/internal/domain/analytics"
	"finsight/internal/domain/export"
	"finsight/internal/domain/opex"
	"finsight/internal/infrastructure/http/v1/dto"
	"finsight/internal/infrastructure/storage/postgres"
)

// ReportsHandler serves the analysis reports.
type ReportsHandler struct {
	*BaseHandler
	analytics *analytics.Service
	opex      *opex.Service
	exporter  *export.Exporter
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, analyticsService *analytics.Service, opexService *opex.Service, exporter *export.Exporter) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		analytics:   analyticsService,
		opex:        opexService,
		exporter:    exporter,
	}
}

// IncomeExpense returns the income and expense report.
// GET /api/v1/reports/income-expense
func (h *ReportsHandler) IncomeExpense(c *gin.Context) {
	var req dto.IncomeExpenseRequest
	if !h.BindQuery(c, &req) {
		return
	}

	f, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	var report *analytics.Report
	err = postgres.MustGetTxManager(c.Request.Context()).ReadOnly(c.Request.Context(), func(ctx context.Context) error {
		var innerErr error
		report, innerErr = h.analytics.IncomeExpense(ctx, f)
		return innerErr
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// Opex returns the operating-expense report.
// GET /api/v1/reports/opex
func (h *ReportsHandler) Opex(c *gin.Context) {
	var req dto.OpexRequest
	if !h.BindQuery(c, &req) {
		return
	}

	f, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	var report *opex.Report
	err = postgres.MustGetTxManager(c.Request.Context()).ReadOnly(c.Request.Context(), func(ctx context.Context) error {
		var innerErr error
		report, innerErr = h.opex.Analyze(ctx, f)
		return innerErr
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// ExportIncomeExpense streams the income and expense report as a file
// download.
// GET /api/v1/reports/income-expense/export
func (h *ReportsHandler) ExportIncomeExpense(c *gin.Context) {
	var req dto.ExportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	f, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	format := export.FormatCSV
	if req.Format != "" {
		format = export.Format(req.Format)
	}
	if !format.Valid() {
		h.Error(c, apperror.NewValidation("unsupported export format").
			WithDetail("field", "format").
			WithDetail("value", req.Format))
		return
	}

	var result *export.Result
	err = postgres.MustGetTxManager(c.Request.Context()).ReadOnly(c.Request.Context(), func(ctx context.Context) error {
		var innerErr error
		result, innerErr = h.exporter.IncomeExpense(ctx, f, format)
		return innerErr
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Data)
}
