// Package catalog_repo provides PostgreSQL repositories for the
// catalogs.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
	"finsight/internal/domain/catalogs/category"
	"finsight/internal/infrastructure/storage/postgres"
)

const (
	categoryTable    = "cashflow_categories"
	subcategoryTable = "cashflow_subcategories"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// CategoryRepo implements category.Repository.
type CategoryRepo struct{}

func NewCategoryRepo() *CategoryRepo {
	return &CategoryRepo{}
}

var _ category.Repository = (*CategoryRepo)(nil)

// Create inserts a category. Timestamps are set by the database.
func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	values := postgres.StructToMap(c)
	delete(values, "created_at")
	delete(values, "updated_at")

	sql, args, err := builder().
		Insert(categoryTable).
		SetMap(values).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build category insert: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// Update rewrites a category row and bumps updated_at.
func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	values := postgres.StructToMap(c)
	delete(values, "id")
	delete(values, "created_at")
	delete(values, "updated_at")

	sql, args, err := builder().
		Update(categoryTable).
		SetMap(values).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build category update: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFound("category", c.ID.String())
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	return r.getBy(ctx, squirrel.Eq{"id": categoryID}, categoryID.String())
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*category.Category, error) {
	return r.getBy(ctx, squirrel.Eq{"name": name}, name)
}

func (r *CategoryRepo) getBy(ctx context.Context, cond squirrel.Eq, key string) (*category.Category, error) {
	sql, args, err := builder().
		Select(postgres.ExtractDBColumns[category.Category]()...).
		From(categoryTable).
		Where(cond).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category select: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var c category.Category
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("category", key)
		}
		return nil, fmt.Errorf("select category: %w", err)
	}
	return &c, nil
}

// List returns categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context, f category.ListFilter) ([]category.Category, error) {
	qb := builder().
		Select(postgres.ExtractDBColumns[category.Category]()...).
		From(categoryTable)
	if f.Type != nil {
		qb = qb.Where(squirrel.Eq{"type": string(*f.Type)})
	}
	if f.ActiveOnly {
		qb = qb.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := qb.OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category list: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []category.Category
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return rows, nil
}

// ListSubcategories returns the subcategories of one category ordered by
// name.
func (r *CategoryRepo) ListSubcategories(ctx context.Context, categoryID id.ID) ([]category.Subcategory, error) {
	sql, args, err := builder().
		Select(postgres.ExtractDBColumns[category.Subcategory]()...).
		From(subcategoryTable).
		Where(squirrel.Eq{"category_id": categoryID}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build subcategory list: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	var rows []category.Subcategory
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select subcategories: %w", err)
	}
	return rows, nil
}

func (r *CategoryRepo) CreateSubcategory(ctx context.Context, s *category.Subcategory) error {
	sql, args, err := builder().
		Insert(subcategoryTable).
		SetMap(postgres.StructToMap(s)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build subcategory insert: %w", err)
	}

	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert subcategory: %w", err)
	}
	return nil
}
