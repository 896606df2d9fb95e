package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
	"finsight/internal/domain/catalogs/category"
	"finsight/internal/infrastructure/http/v1/dto"
	"finsight/internal/infrastructure/storage/postgres"
)

// CategoryHandler serves the cashflow category catalog.
type CategoryHandler struct {
	*BaseHandler
	categories *category.Service
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(base *BaseHandler, categoryService *category.Service) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler: base,
		categories:  categoryService,
	}
}

// List returns categories ordered by name.
// GET /api/v1/catalog/categories
func (h *CategoryHandler) List(c *gin.Context) {
	var req dto.ListCategoriesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	categories, err := h.categories.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"categories": categories})
}

// Create adds a category with a generated code.
// POST /api/v1/catalog/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	model := req.ToModel()
	err := postgres.MustGetTxManager(c.Request.Context()).RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.categories.Create(ctx, model)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, model.ID.String())
}

// Get returns one category.
// GET /api/v1/catalog/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	categoryID, ok := h.parseID(c)
	if !ok {
		return
	}

	cat, err := h.categories.Get(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cat)
}

// Update merges changed fields into a category.
// PUT /api/v1/catalog/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := postgres.MustGetTxManager(c.Request.Context()).RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		cat, err := h.categories.Get(ctx, categoryID)
		if err != nil {
			return err
		}
		req.Apply(cat)
		return h.categories.Update(ctx, cat)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "category updated")
}

// Subcategories returns the subcategories of one category.
// GET /api/v1/catalog/categories/:id/subcategories
func (h *CategoryHandler) Subcategories(c *gin.Context) {
	categoryID, ok := h.parseID(c)
	if !ok {
		return
	}

	subs, err := h.categories.Subcategories(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"subcategories": subs})
}

// AddSubcategory adds a subcategory to a category.
// POST /api/v1/catalog/categories/:id/subcategories
func (h *CategoryHandler) AddSubcategory(c *gin.Context) {
	categoryID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.CreateSubcategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sub := req.ToModel(categoryID)
	err := postgres.MustGetTxManager(c.Request.Context()).RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.categories.AddSubcategory(ctx, sub)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sub.ID.String())
}

func (h *CategoryHandler) parseID(c *gin.Context) (id.ID, bool) {
	categoryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid category id").
			WithDetail("value", c.Param("id")))
		return id.Nil(), false
	}
	return categoryID, true
}
