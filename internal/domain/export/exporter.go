package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"finsight/internal/domain/analytics"
)

var tracer = otel.Tracer("finsight/export")

// Format selects the export encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatCSVZstd Format = "csv+zstd"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f == FormatCSV || f == FormatCSVZstd
}

// Result is a rendered report file.
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
	Compressed  bool
}

// ReportService builds the report an export is rendered from.
type ReportService interface {
	IncomeExpense(ctx context.Context, f analytics.Filter) (*analytics.Report, error)
}

// Exporter renders reports as downloadable files.
type Exporter struct {
	reports ReportService
	encoder *zstd.Encoder
}

// NewExporter creates an exporter backed by the analytics service.
func NewExporter(reports ReportService) (*Exporter, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Exporter{reports: reports, encoder: encoder}, nil
}

// IncomeExpense renders the income and expense report as CSV, optionally
// zstd-compressed.
func (e *Exporter) IncomeExpense(ctx context.Context, f analytics.Filter, format Format) (*Result, error) {
	ctx, span := tracer.Start(ctx, "export.income_expense",
		trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	if !format.Valid() {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	report, err := e.reports.IncomeExpense(ctx, f)
	if err != nil {
		return nil, err
	}

	data, err := renderCSV(report, f)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}

	result := &Result{
		Filename:    fmt.Sprintf("gelir-gider-raporu-%d.csv", f.Year),
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
	}
	if format == FormatCSVZstd {
		result.Data = e.encoder.EncodeAll(data, nil)
		result.Filename += ".zst"
		result.ContentType = "application/zstd"
		result.Compressed = true
	}
	return result, nil
}

// renderCSV writes the report sections top to bottom, separated by
// blank rows. Headers and labels are Turkish to match the report body.
func renderCSV(report *analytics.Report, f analytics.Filter) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Gelir Gider Raporu", strconv.Itoa(f.Year), string(f.Currency)},
		{},
		{"Özet"},
		{"Toplam Gelir", report.Income.Total.StringFixed(2)},
		{"Toplam Gider", report.Expenses.Total.StringFixed(2)},
		{"Kar/Zarar", report.Profit.Total.StringFixed(2)},
		{"Kar Marjı %", formatPercent(report.Profit.Margin)},
		{},
		{"Müşteri Bazında Gelirler"},
		{"Müşteri", "Tutar", "Yüzde", "Fatura Sayısı"},
	}
	for _, c := range report.Income.ByCustomer {
		rows = append(rows, []string{
			c.CustomerName, c.Amount.StringFixed(2), formatPercent(c.Percentage), strconv.Itoa(c.InvoiceCount),
		})
	}

	rows = append(rows, []string{}, []string{"Kategori Bazında Giderler"}, []string{"Kategori", "Tutar", "Yüzde", "Kayıt Sayısı"})
	for _, c := range report.Expenses.ByCategory {
		rows = append(rows, []string{c.Category, c.Amount.StringFixed(2), formatPercent(c.Percentage), strconv.Itoa(c.RecordCount)})
	}

	rows = append(rows, []string{}, []string{"Alt Kategori Giderleri"}, []string{"Kategori", "Alt Kategori", "Tutar", "Yüzde"})
	for _, s := range report.Expenses.BySubcategory {
		rows = append(rows, []string{s.Category, s.Subcategory, s.Amount.StringFixed(2), formatPercent(s.Percentage)})
	}

	rows = append(rows, []string{}, []string{"Aylık Kar/Zarar"}, []string{"Ay", "Gelir", "Gider", "Kar", "Marj %"})
	for _, m := range report.Profit.ByMonth {
		rows = append(rows, []string{
			m.MonthName,
			m.Income.StringFixed(2),
			m.Expenses.StringFixed(2),
			m.Profit.StringFixed(2),
			formatPercent(m.Margin),
		})
	}

	vb := report.Comparisons.VsBudget
	vy := report.Comparisons.VsPreviousYear
	rows = append(rows,
		[]string{},
		[]string{"Bütçe Karşılaştırması"},
		[]string{"Kalem", "Bütçe", "Gerçekleşen", "Fark", "Fark %"},
		budgetRow("Gelir", vb.Income),
		budgetRow("Gider", vb.Expenses),
		budgetRow("Kar", vb.Profit),
		[]string{},
		[]string{"Önceki Yıl Karşılaştırması"},
		[]string{"Kalem", "Önceki Yıl", "Bu Yıl", "Değişim", "Değişim %"},
		yearRow("Gelir", vy.Income),
		yearRow("Gider", vy.Expenses),
		yearRow("Kar", vy.Profit),
	)

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func budgetRow(label string, line analytics.BudgetLine) []string {
	return []string{
		label,
		line.Budget.StringFixed(2),
		line.Actual.StringFixed(2),
		line.Variance.StringFixed(2),
		formatPercent(line.VariancePercent),
	}
}

func yearRow(label string, line analytics.YearLine) []string {
	return []string{
		label,
		line.Previous.StringFixed(2),
		line.Current.StringFixed(2),
		line.Change.StringFixed(2),
		formatPercent(line.ChangePercent),
	}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
