package dto

import (
	"finsight/internal/core/id"
	"finsight/internal/domain/catalogs/category"
)

// CreateCategoryRequest for creating cashflow categories.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required,oneof=income expense"`
}

// ToModel converts the request to a new category.
func (r CreateCategoryRequest) ToModel() *category.Category {
	return category.NewCategory(r.Name, category.Type(r.Type))
}

// UpdateCategoryRequest for updating cashflow categories. Nil fields
// keep their current value.
type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	Type     *string `json:"type" binding:"omitempty,oneof=income expense"`
	IsActive *bool   `json:"isActive"`
}

// Apply merges the request into an existing category.
func (r UpdateCategoryRequest) Apply(c *category.Category) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Type != nil {
		c.Type = category.Type(*r.Type)
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
}

// ListCategoriesRequest narrows category listings.
type ListCategoriesRequest struct {
	Type       string `form:"type" binding:"omitempty,oneof=income expense"`
	ActiveOnly bool   `form:"activeOnly"`
}

// ToFilter converts the request to a repository filter.
func (r ListCategoriesRequest) ToFilter() category.ListFilter {
	f := category.ListFilter{ActiveOnly: r.ActiveOnly}
	if r.Type != "" {
		t := category.Type(r.Type)
		f.Type = &t
	}
	return f
}

// CreateSubcategoryRequest for adding a subcategory to a category.
type CreateSubcategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ToModel converts the request to a new subcategory.
func (r CreateSubcategoryRequest) ToModel(categoryID id.ID) *category.Subcategory {
	return &category.Subcategory{
		ID:         id.New(),
		CategoryID: categoryID,
		Name:       r.Name,
	}
}
