package category

import (
	"context"
	"time"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
	"finsight/pkg/numerator"
)

// Code series for generated category codes, e.g. CAT-00001.
var codeConfig = numerator.Config{Prefix: "CAT", PadWidth: 5, ResetPeriod: "never"}

// Service provides business logic for the category catalog.
type Service struct {
	repo  Repository
	codes *numerator.Generator
}

// NewService creates a new category service. The generator may be nil;
// categories then require an explicit code.
func NewService(repo Repository, codes *numerator.Generator) *Service {
	return &Service{repo: repo, codes: codes}
}

// Create validates and stores a new category, generating a code when
// none is given.
func (s *Service) Create(ctx context.Context, c *Category) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if existing, err := s.repo.GetByName(ctx, c.Name); err == nil && existing != nil {
		return apperror.NewConflict("category with this name already exists").
			WithDetail("name", c.Name)
	}

	if c.Code == "" {
		if s.codes == nil {
			return apperror.NewValidation("code is required").
				WithDetail("field", "code")
		}
		code, err := s.codes.Next(ctx, codeConfig, nil, time.Now())
		if err != nil {
			return err
		}
		c.Code = code
	}
	if id.IsNil(c.ID) {
		c.ID = id.New()
	}
	return s.repo.Create(ctx, c)
}

// Update validates and stores category changes.
func (s *Service) Update(ctx context.Context, c *Category) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// Get returns one category.
func (s *Service) Get(ctx context.Context, categoryID id.ID) (*Category, error) {
	return s.repo.GetByID(ctx, categoryID)
}

// List returns categories matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Category, error) {
	return s.repo.List(ctx, f)
}

// Subcategories returns the nested labels of one category.
func (s *Service) Subcategories(ctx context.Context, categoryID id.ID) ([]Subcategory, error) {
	return s.repo.ListSubcategories(ctx, categoryID)
}

// AddSubcategory stores a new subcategory under an existing category.
func (s *Service) AddSubcategory(ctx context.Context, sub *Subcategory) error {
	if sub.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if _, err := s.repo.GetByID(ctx, sub.CategoryID); err != nil {
		return err
	}
	if id.IsNil(sub.ID) {
		sub.ID = id.New()
	}
	return s.repo.CreateSubcategory(ctx, sub)
}
