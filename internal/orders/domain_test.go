package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFlattenPreservesDocumentOrder(t *testing.T) {
	order := SalesOrder{
		Reference: "SO-1001",
		Sections: []JobSection{
			{ID: 1, Name: "Shopfront", Lines: []Line{
				{ID: 10, ProductCode: "GLS-001", Qty: decimal.NewFromInt(5)},
				{ID: 11, ProductCode: "STL-204", Qty: decimal.NewFromInt(2)},
			}},
			{ID: 2, Name: "Back office", Lines: []Line{
				{ID: 12, ProductCode: "GLS-002", Qty: decimal.NewFromInt(1)},
			}},
		},
	}

	lines := order.Flatten()
	require.Len(t, lines, 3)
	require.Equal(t, []int64{10, 11, 12}, []int64{lines[0].ID, lines[1].ID, lines[2].ID})
}

func TestFlattenEmptyOrder(t *testing.T) {
	require.Empty(t, SalesOrder{Reference: "SO-1002"}.Flatten())
}
