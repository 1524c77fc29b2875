package inventory

import (
	"testing"

	"mazal-backend/internal/domain"
	"mazal-backend/internal/infrastructure/inventoryapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func TestNormalizeForDisplay_FiltersByOwnership(t *testing.T) {
	stones := []inventoryapi.Stone{
		{ID: i64(1), StockNumber: "A1", Owners: []int64{7, 9}},
		{ID: i64(2), StockNumber: "A2", OwnerID: i64(7)},
		{ID: i64(3), StockNumber: "A3", Owners: []int64{8}},
		{ID: i64(4), StockNumber: "A4", OwnerID: i64(8)},
	}

	out := NormalizeForDisplay(stones, 7)
	require.Len(t, out, 2)
	assert.Equal(t, "A1", out[0].StockNumber)
	assert.Equal(t, "A2", out[1].StockNumber)
}

// Stones carrying no ownership information at all pass the visibility check
// for every user. That is the upstream policy this service reproduces, not a
// bug in the filter; the strict variant (FilterOwned) excludes them.
func TestNormalizeForDisplay_UnownedStonesVisibleToEveryUser(t *testing.T) {
	stones := []inventoryapi.Stone{
		{ID: i64(1), StockNumber: "NOBODY"},
	}

	for _, userID := range []int64{7, 8, 424242} {
		out := NormalizeForDisplay(stones, userID)
		require.Len(t, out, 1, "user %d", userID)
		assert.Equal(t, "NOBODY", out[0].StockNumber)
	}
}

// A present-but-empty owners list is an ownership claim that matches nobody,
// unlike an absent field which means no ownership info at all.
func TestNormalizeForDisplay_EmptyOwnersListExcluded(t *testing.T) {
	stones := []inventoryapi.Stone{
		{ID: i64(1), StockNumber: "CLAIMED", Owners: []int64{}},
		{ID: i64(2), StockNumber: "NOBODY"},
	}

	out := NormalizeForDisplay(stones, 7)
	require.Len(t, out, 1)
	assert.Equal(t, "NOBODY", out[0].StockNumber)
}

func TestNormalizeForDisplay_ZeroUserIDDisablesFiltering(t *testing.T) {
	stones := []inventoryapi.Stone{
		{ID: i64(1), Owners: []int64{8}},
		{ID: i64(2), OwnerID: i64(9)},
	}
	assert.Len(t, NormalizeForDisplay(stones, 0), 2)
}

func TestFilterOwned_ExcludesUnownedStones(t *testing.T) {
	stones := []inventoryapi.Stone{
		{ID: i64(1), Owners: []int64{7}},
		{ID: i64(2), OwnerID: i64(7)},
		{ID: i64(3)}, // no ownership info
		{ID: i64(4), Owners: []int64{8}},
	}

	out := FilterOwned(stones, 7)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), *out[0].ID)
	assert.Equal(t, int64(2), *out[1].ID)
}

func TestNormalizeStone_WeightPreferredOverCarat(t *testing.T) {
	d := normalizeStone(inventoryapi.Stone{Weight: f64(1.52), Carat: f64(9.99)})
	assert.Equal(t, 1.52, d.Carat)

	d = normalizeStone(inventoryapi.Stone{Carat: f64(2.01)})
	assert.Equal(t, 2.01, d.Carat)
}

func TestNormalizeStone_PriceDerivedFromPricePerCarat(t *testing.T) {
	// No total price: round(ppc * carat).
	d := normalizeStone(inventoryapi.Stone{Weight: f64(2.0), PricePerCarat: f64(5500.3)})
	assert.Equal(t, int64(11001), d.Price)

	// Explicit price wins over the derivation.
	d = normalizeStone(inventoryapi.Stone{Weight: f64(2.0), Price: i64(9000), PricePerCarat: f64(5500.3)})
	assert.Equal(t, int64(9000), d.Price)
}

func TestNormalizeStone_StockNumberFallbacks(t *testing.T) {
	d := normalizeStone(inventoryapi.Stone{StockNumber: "S1", Stock: "S2", ID: i64(5)})
	assert.Equal(t, "S1", d.StockNumber)

	d = normalizeStone(inventoryapi.Stone{Stock: "S2", ID: i64(5)})
	assert.Equal(t, "S2", d.StockNumber)

	d = normalizeStone(inventoryapi.Stone{ID: i64(5)})
	assert.Equal(t, "D5", d.StockNumber)

	d = normalizeStone(inventoryapi.Stone{})
	assert.NotEmpty(t, d.StockNumber)
	assert.Equal(t, byte('D'), d.StockNumber[0])
}

func TestNormalizeStone_Defaults(t *testing.T) {
	d := normalizeStone(inventoryapi.Stone{ID: i64(1)})
	assert.Equal(t, "Unknown", d.Shape)
	assert.Equal(t, "Unknown", d.Color)
	assert.Equal(t, "Unknown", d.Clarity)
	assert.Equal(t, "Excellent", d.Cut)
	assert.Equal(t, "Excellent", d.Polish)
	assert.Equal(t, "Excellent", d.Symmetry)
	assert.Equal(t, domain.StatusAvailable, d.Status)
	assert.Equal(t, "1", d.ID)
}

func TestNormalizeForDisplay_PreservesOrder(t *testing.T) {
	stones := []inventoryapi.Stone{
		{StockNumber: "C"},
		{StockNumber: "A"},
		{StockNumber: "B"},
	}
	out := NormalizeForDisplay(stones, 0)
	require.Len(t, out, 3)
	assert.Equal(t, "C", out[0].StockNumber)
	assert.Equal(t, "A", out[1].StockNumber)
	assert.Equal(t, "B", out[2].StockNumber)
}
