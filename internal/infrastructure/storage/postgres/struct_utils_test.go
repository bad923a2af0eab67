package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stocktrack/internal/core/id"
)

type mockOwnedRow struct {
	ID        id.ID     `db:"id" json:"id"`
	OwnerID   id.ID     `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type mockProductRow struct {
	mockOwnedRow
	Name     string `db:"product_name" json:"product_name"`
	Quantity int64  `db:"quantity" json:"quantity"`
	Internal string `db:"-" json:"-"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockProductRow]()

	expectedCols := []string{
		"id", "owner_id", "created_at", "product_name", "quantity",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expectedCols))
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	row := mockProductRow{
		mockOwnedRow: mockOwnedRow{
			ID:        id.New(),
			OwnerID:   id.New(),
			CreatedAt: now,
		},
		Name:     "Rice",
		Quantity: 42,
		Internal: "ignored",
		NoTag:    "ignored too",
	}

	m := StructToMap(row)

	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, row.OwnerID, m["owner_id"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "Rice", m["product_name"])
	assert.Equal(t, int64(42), m["quantity"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 5)
}

func TestStructToMap_Pointer(t *testing.T) {
	row := &mockProductRow{Name: "Oil", Quantity: 7}
	m := StructToMap(row)

	assert.Equal(t, "Oil", m["product_name"])
	assert.Equal(t, int64(7), m["quantity"])
}
