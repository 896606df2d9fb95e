// Package main provides a CLI tool for seeding a tenant database with
// demo data: customers, categories, a year of invoices and expenses,
// opex and budget matrices, and leave configuration.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"finsight/internal/core/id"
	"finsight/internal/core/tenant"
	"finsight/internal/infrastructure/storage/postgres"
	"finsight/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedTenantRegistry(ctx, dbURL, log); err != nil {
		log.Warnw("failed to seed tenant registry", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	year := time.Now().Year()
	rng := rand.New(rand.NewSource(int64(year)))

	// 1. Customers
	customers := []struct {
		name string
		id   id.ID
	}{
		{"Acme Yazılım A.Ş.", id.New()},
		{"Kuzey Lojistik Ltd.", id.New()},
		{"Marmara İnşaat A.Ş.", id.New()},
		{"Ege Tekstil San.", id.New()},
	}
	for _, c := range customers {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO customers (id, name)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, c.id, c.name)
		if err != nil {
			log.Warnw("failed to seed customer", "name", c.name, "error", err)
		}
	}

	// 2. Cashflow categories with subcategories
	categories := []struct {
		id   id.ID
		code string
		name string
		typ  string
		subs []string
	}{
		{id.New(), "CAT-00001", "Satış Gelirleri", "income", nil},
		{id.New(), "CAT-00002", "Personel Giderleri", "expense", []string{"Maaşlar", "SGK", "Yemek"}},
		{id.New(), "CAT-00003", "Kira Giderleri", "expense", []string{"Ofis", "Depo"}},
		{id.New(), "CAT-00004", "Pazarlama", "expense", []string{"Reklam", "Etkinlik"}},
	}
	for _, c := range categories {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cashflow_categories (id, code, name, type, is_default, is_active)
			VALUES ($1, $2, $3, $4, false, true)
			ON CONFLICT (name) DO NOTHING
		`, c.id, c.code, c.name, c.typ)
		if err != nil {
			log.Warnw("failed to seed category", "name", c.name, "error", err)
			continue
		}
		for _, sub := range c.subs {
			_, err := pool.Pool.Exec(ctx, `
				INSERT INTO cashflow_subcategories (id, category_id, name, is_default)
				VALUES ($1, $2, $3, false)
				ON CONFLICT (category_id, name) DO NOTHING
			`, id.New(), c.id, sub)
			if err != nil {
				log.Warnw("failed to seed subcategory", "name", sub, "error", err)
			}
		}
	}

	// 3. A year of invoices and expenses, bulk-loaded with COPY.
	// Fixture volume is controlled by SEED_ROWS_PER_MONTH.
	rowsPerMonth := 20
	if v := os.Getenv("SEED_ROWS_PER_MONTH"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &rowsPerMonth); err != nil || rowsPerMonth <= 0 {
			rowsPerMonth = 20
		}
	}

	txm := postgres.NewTxManagerFromRawPool(pool.Pool)
	inserter := postgres.NewBatchInserter(txm)

	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		invoiceRows := make([][]any, 0, 12*rowsPerMonth)
		expenseRows := make([][]any, 0, 12*rowsPerMonth)

		for month := 1; month <= 12; month++ {
			for i := 0; i < rowsPerMonth; i++ {
				day := 1 + rng.Intn(28)
				date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

				customer := customers[rng.Intn(len(customers))]
				amount := decimal.NewFromInt(int64(500 + rng.Intn(20000)))
				status := "approved"
				if rng.Intn(4) == 0 {
					status = "paid"
				}
				invoiceRows = append(invoiceRows, []any{
					id.New(), date, amount, "TRY", status, customer.id,
				})

				cat := categories[1+rng.Intn(len(categories)-1)]
				var sub any
				if len(cat.subs) > 0 {
					sub = cat.subs[rng.Intn(len(cat.subs))]
				}
				expenseRows = append(expenseRows, []any{
					id.New(), date, decimal.NewFromInt(int64(200 + rng.Intn(8000))), cat.id, sub, "expense",
				})
			}
		}

		n, err := inserter.CopyFromSlice(ctx, "sales_invoices",
			[]string{"id", "invoice_date", "amount", "currency", "status", "customer_id"},
			invoiceRows)
		if err != nil {
			return fmt.Errorf("copy sales invoices: %w", err)
		}
		log.Infow("sales invoices loaded", "rows", n)

		n, err = inserter.CopyFromSlice(ctx, "expenses",
			[]string{"id", "expense_date", "amount", "category_id", "subcategory", "type"},
			expenseRows)
		if err != nil {
			return fmt.Errorf("copy expenses: %w", err)
		}
		log.Infow("expenses loaded", "rows", n)

		return nil
	})
	if err != nil {
		return err
	}

	// 4. Opex matrix and budgets
	for month := 1; month <= 12; month++ {
		for _, c := range categories[1:] {
			sub := "Diğer"
			if len(c.subs) > 0 {
				sub = c.subs[0]
			}
			_, err := pool.Pool.Exec(ctx, `
				INSERT INTO opex_matrix (id, year, month, category, subcategory, amount)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (year, month, category, subcategory) DO NOTHING
			`, id.New(), year, month, c.name, sub, decimal.NewFromInt(int64(1000+rng.Intn(5000))))
			if err != nil {
				log.Warnw("failed to seed opex matrix row", "category", c.name, "error", err)
			}
		}
	}

	departmentID := id.New()
	for _, c := range categories {
		entryType := ""
		if c.typ == "income" {
			entryType = "income"
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO budgets (id, year, category, entry_type, budget_amount, currency, department_id)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, 'TRY', $6)
			ON CONFLICT (year, category, currency, department_id) DO NOTHING
		`, id.New(), year, c.name, entryType, decimal.NewFromInt(int64(50000+rng.Intn(100000))), departmentID)
		if err != nil {
			log.Warnw("failed to seed budget row", "category", c.name, "error", err)
		}
	}

	// 5. Leave configuration and one demo employee
	if err := seedLeaveData(ctx, pool, log, year); err != nil {
		return err
	}

	log.Info("demo data seeded successfully")
	return nil
}

func seedLeaveData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, year int) error {
	annualTypeID := id.New()
	_, err := pool.Pool.Exec(ctx, `
		INSERT INTO leave_types (id, name, color, is_active)
		VALUES ($1, 'Yıllık İzin', '#4caf50', true)
		ON CONFLICT (name) DO NOTHING
	`, annualTypeID)
	if err != nil {
		log.Warnw("failed to seed leave type", "error", err)
		return nil
	}

	rules := []struct {
		name     string
		min, max any
		days     int
		priority int
	}{
		{"1-5 yıl", 1, 5, 14, 1},
		{"5-15 yıl", 5, 15, 20, 2},
		{"15+ yıl", 15, nil, 26, 3},
	}
	for _, r := range rules {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO leave_type_rules (id, leave_type_id, name, min_years_of_service, max_years_of_service, days_entitled, priority)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (leave_type_id, name) DO NOTHING
		`, id.New(), annualTypeID, r.name, r.min, r.max, r.days, r.priority)
		if err != nil {
			log.Warnw("failed to seed leave rule", "name", r.name, "error", err)
		}
	}

	employeeID := id.New()
	hireDate := time.Date(year-6, time.March, 15, 0, 0, 0, 0, time.UTC)
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO employees (id, full_name, hire_date)
		VALUES ($1, 'Ayşe Demir', $2)
		ON CONFLICT (full_name) DO NOTHING
	`, employeeID, hireDate)
	if err != nil {
		log.Warnw("failed to seed employee", "error", err)
		return nil
	}

	leaveStart := time.Date(year, time.June, 10, 0, 0, 0, 0, time.UTC)
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO employee_leaves (id, employee_id, leave_type, start_date, end_date, status)
		VALUES ($1, $2, 'Yıllık İzin', $3, $4, 'approved')
		ON CONFLICT DO NOTHING
	`, id.New(), employeeID, leaveStart, leaveStart.AddDate(0, 0, 4))
	if err != nil {
		log.Warnw("failed to seed leave request", "error", err)
	}

	return nil
}

func seedTenantRegistry(ctx context.Context, dbURL string, log *logger.Logger) error {
	metaDSN := os.Getenv("META_DATABASE_URL")
	if metaDSN == "" {
		log.Warn("META_DATABASE_URL is not set; skipping tenant registry seed")
		return nil
	}

	metaPool, err := pgxpool.New(ctx, metaDSN)
	if err != nil {
		return fmt.Errorf("connect meta database: %w", err)
	}
	defer metaPool.Close()

	if err := metaPool.Ping(ctx); err != nil {
		return fmt.Errorf("ping meta database: %w", err)
	}

	tenantSlug := os.Getenv("TENANT_SLUG")
	if tenantSlug == "" {
		tenantSlug = "demo"
	}

	tenantName := os.Getenv("TENANT_NAME")
	if tenantName == "" {
		tenantName = "Demo Tenant"
	}

	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("parse tenant database url: %w", err)
	}

	dbHost := dbConfig.ConnConfig.Host
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := int(dbConfig.ConnConfig.Port)
	if dbPort == 0 {
		dbPort = 5432
	}

	dbName := dbConfig.ConnConfig.Database
	if dbName == "" {
		dbName = "finsight"
	}

	var existingID string
	err = metaPool.QueryRow(ctx, `SELECT id FROM tenants WHERE slug = $1`, tenantSlug).Scan(&existingID)
	if err == nil {
		log.Infow("tenant already exists in registry", "slug", tenantSlug, "tenant_id", existingID)
		return nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check tenant exists: %w", err)
	}

	registry := tenant.NewPostgresRegistry(metaPool)
	newTenant := &tenant.Tenant{
		Slug:        tenantSlug,
		DisplayName: tenantName,
		DBName:      dbName,
		DBHost:      dbHost,
		DBPort:      dbPort,
		Status:      tenant.StatusActive,
		Settings:    map[string]any{},
	}

	if err := registry.Create(ctx, newTenant); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	log.Infow("tenant seeded in registry", "slug", tenantSlug, "tenant_id", newTenant.ID)
	return nil
}
