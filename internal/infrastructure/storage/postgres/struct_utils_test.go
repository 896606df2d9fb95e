package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"finsight/internal/core/id"
)

type baseRow struct {
	ID        id.ID     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

type mockRow struct {
	baseRow
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Internal string `db:"-"`
	skipped  string
}

func TestExtractDBColumns_EmbeddedFields(t *testing.T) {
	cols := ExtractDBColumns[mockRow]()

	expectedCols := []string{"id", "created_at", "code", "name"}
	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.Len(t, cols, len(expectedCols))
}

func TestStructToMap_EmbeddedFields(t *testing.T) {
	now := time.Now().UTC()
	row := mockRow{
		baseRow: baseRow{
			ID:        id.New(),
			CreatedAt: now,
		},
		Code:     "CAT-00001",
		Name:     "Satış Gelirleri",
		Internal: "hidden",
		skipped:  "hidden",
	}

	m := StructToMap(row)

	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "CAT-00001", m["code"])
	assert.Equal(t, "Satış Gelirleri", m["name"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 4)
}

func TestStructToMap_Pointer(t *testing.T) {
	row := &mockRow{Code: "CAT-00002", Name: "Kira"}

	m := StructToMap(row)

	assert.Equal(t, "CAT-00002", m["code"])
	assert.Equal(t, "Kira", m["name"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("text"))
}
