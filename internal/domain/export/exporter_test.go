package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"finsight/internal/core/types"
	"finsight/internal/domain/analytics"
)

type mockReports struct {
	report *analytics.Report
	err    error
}

func (m *mockReports) IncomeExpense(_ context.Context, _ analytics.Filter) (*analytics.Report, error) {
	return m.report, m.err
}

func sampleReport() *analytics.Report {
	report := analytics.BuildReport(analytics.SourceData{}, nil)
	report.Income.Total = types.MustMoney("1500.5")
	report.Income.ByCustomer = []analytics.CustomerIncome{
		{CustomerID: "c1", CustomerName: "Acme", Amount: types.MustMoney("1500.5"), Percentage: 100, InvoiceCount: 3},
	}
	return report
}

func TestIncomeExpense_CSV(t *testing.T) {
	exp, err := NewExporter(&mockReports{report: sampleReport()})
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}

	result, err := exp.IncomeExpense(context.Background(), analytics.Filter{Year: 2025, Currency: analytics.CurrencyTRY}, FormatCSV)
	if err != nil {
		t.Fatalf("IncomeExpense failed: %v", err)
	}

	if result.Filename != "gelir-gider-raporu-2025.csv" {
		t.Errorf("filename = %s", result.Filename)
	}
	if result.Compressed {
		t.Error("plain csv should not be marked compressed")
	}

	content := string(result.Data)
	for _, want := range []string{
		"Gelir Gider Raporu,2025,TRY",
		"Toplam Gelir,1500.50",
		"Acme,1500.50,100.00,3",
		"Müşteri Bazında Gelirler",
		"Ocak",
		"Aralık",
		"Bütçe Karşılaştırması",
		"Önceki Yıl Karşılaştırması",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("csv missing %q", want)
		}
	}

	// Whole file must stay parseable csv.
	r := csv.NewReader(bytes.NewReader(result.Data))
	r.FieldsPerRecord = -1
	if _, err := r.ReadAll(); err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
}

func TestIncomeExpense_Zstd(t *testing.T) {
	exp, err := NewExporter(&mockReports{report: sampleReport()})
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}

	result, err := exp.IncomeExpense(context.Background(), analytics.Filter{Year: 2025, Currency: analytics.CurrencyTRY}, FormatCSVZstd)
	if err != nil {
		t.Fatalf("IncomeExpense failed: %v", err)
	}
	if !result.Compressed || !strings.HasSuffix(result.Filename, ".csv.zst") {
		t.Errorf("result = %s compressed=%v, want .csv.zst compressed", result.Filename, result.Compressed)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("create decoder: %v", err)
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(result.Data, nil)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if !strings.Contains(string(plain), "Toplam Gelir,1500.50") {
		t.Error("decompressed csv missing summary row")
	}
}

func TestIncomeExpense_Errors(t *testing.T) {
	exp, err := NewExporter(&mockReports{err: errors.New("boom")})
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}

	if _, err := exp.IncomeExpense(context.Background(), analytics.Filter{Year: 2025, Currency: analytics.CurrencyTRY}, FormatCSV); err == nil {
		t.Error("expected report error to propagate")
	}
	if _, err := exp.IncomeExpense(context.Background(), analytics.Filter{Year: 2025, Currency: analytics.CurrencyTRY}, Format("pdf")); err == nil {
		t.Error("expected error for unsupported format")
	}
}
