// Package category provides the cashflow category catalog. Categories
// label income and expense rows and carry the subcategories the expense
// breakdowns group by.
package category

import (
	"context"
	"time"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
)

// Type is the side of the cashflow a category belongs to.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is a known category type.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Category is one cashflow category.
type Category struct {
	ID        id.ID     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Type      Type      `db:"type" json:"type"`
	IsDefault bool      `db:"is_default" json:"isDefault"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Subcategory is one nested label under a category.
type Subcategory struct {
	ID         id.ID  `db:"id" json:"id"`
	CategoryID id.ID  `db:"category_id" json:"categoryId"`
	Name       string `db:"name" json:"name"`
	IsDefault  bool   `db:"is_default" json:"isDefault"`
}

// NewCategory creates an active category with a generated ID.
func NewCategory(name string, typ Type) *Category {
	return &Category{
		ID:       id.New(),
		Name:     name,
		Type:     typ,
		IsActive: true,
	}
}

// Validate checks category invariants.
func (c *Category) Validate(_ context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if !c.Type.Valid() {
		return apperror.NewValidation("type must be income or expense").
			WithDetail("field", "type").
			WithDetail("value", string(c.Type))
	}
	return nil
}
