package category

import (
	"context"

	"finsight/internal/core/id"
)

// ListFilter narrows category listings.
type ListFilter struct {
	Type       *Type
	ActiveOnly bool
}

// Repository defines Category persistence.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, categoryID id.ID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)

	// List returns categories ordered by name.
	List(ctx context.Context, f ListFilter) ([]Category, error)

	// ListSubcategories returns the subcategories of one category
	// ordered by name.
	ListSubcategories(ctx context.Context, categoryID id.ID) ([]Subcategory, error)

	CreateSubcategory(ctx context.Context, s *Subcategory) error
}
