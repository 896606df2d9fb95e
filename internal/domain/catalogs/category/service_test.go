package category

import (
	"context"
	"testing"

	"finsight/internal/core/apperror"
	"finsight/internal/core/id"
)

type mockRepo struct {
	byName  map[string]*Category
	byID    map[string]*Category
	created []*Category
	subs    []*Subcategory
}

func newMockRepo() *mockRepo {
	return &mockRepo{byName: make(map[string]*Category), byID: make(map[string]*Category)}
}

func (m *mockRepo) Create(_ context.Context, c *Category) error {
	m.created = append(m.created, c)
	m.byName[c.Name] = c
	m.byID[c.ID.String()] = c
	return nil
}

func (m *mockRepo) Update(_ context.Context, c *Category) error { return nil }

func (m *mockRepo) GetByID(_ context.Context, categoryID id.ID) (*Category, error) {
	if c, ok := m.byID[categoryID.String()]; ok {
		return c, nil
	}
	return nil, apperror.NewNotFound("category", categoryID)
}

func (m *mockRepo) GetByName(_ context.Context, name string) (*Category, error) {
	if c, ok := m.byName[name]; ok {
		return c, nil
	}
	return nil, apperror.NewNotFound("category", name)
}

func (m *mockRepo) List(_ context.Context, _ ListFilter) ([]Category, error) { return nil, nil }

func (m *mockRepo) ListSubcategories(_ context.Context, _ id.ID) ([]Subcategory, error) {
	return nil, nil
}

func (m *mockRepo) CreateSubcategory(_ context.Context, s *Subcategory) error {
	m.subs = append(m.subs, s)
	return nil
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		category *Category
	}{
		{"missing name", &Category{Type: TypeExpense, Code: "CAT-1"}},
		{"bad type", &Category{Name: "Kira", Type: "other", Code: "CAT-1"}},
		{"missing code without generator", NewCategory("Kira", TypeExpense)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Create(ctx, tt.category); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	first := NewCategory("Kira", TypeExpense)
	first.Code = "CAT-00001"
	if err := svc.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := NewCategory("Kira", TypeExpense)
	dup.Code = "CAT-00002"
	err := svc.Create(ctx, dup)
	if err == nil {
		t.Fatal("expected conflict for duplicate name")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.HTTPStatus != 409 {
		t.Errorf("error = %v, want 409 conflict", err)
	}
}

func TestAddSubcategory(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	parent := NewCategory("Personel", TypeExpense)
	parent.Code = "CAT-00001"
	if err := svc.Create(ctx, parent); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.AddSubcategory(ctx, &Subcategory{CategoryID: parent.ID, Name: "Maaş"}); err != nil {
		t.Fatalf("AddSubcategory failed: %v", err)
	}
	if len(repo.subs) != 1 || id.IsNil(repo.subs[0].ID) {
		t.Error("subcategory not stored with generated id")
	}

	// Unknown parent is rejected.
	if err := svc.AddSubcategory(ctx, &Subcategory{CategoryID: id.New(), Name: "Prim"}); err == nil {
		t.Error("expected not-found for unknown parent category")
	}
	if err := svc.AddSubcategory(ctx, &Subcategory{CategoryID: parent.ID}); err == nil {
		t.Error("expected validation error for empty name")
	}
}
