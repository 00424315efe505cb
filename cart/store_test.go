package cart

import (
	"testing"

	"dine-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRestaurant(id, name string) models.Restaurant {
	return models.Restaurant{
		ID:       id,
		Name:     name,
		Cuisine:  "Local Favorite",
		ImageURL: "https://picsum.photos/seed/" + name + "/600/400",
	}
}

func TestAddRestaurant_SynthesizesDefaultLine(t *testing.T) {
	s := NewStore()

	s.AddRestaurant(testRestaurant("res-0", "Alpha"))

	items := s.Items()
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "res-0-special", item.ID)
	assert.Equal(t, "Local Favorite Special Platter", item.Name)
	assert.Equal(t, 18.99, item.Price)
	assert.Equal(t, DefaultItemDescription, item.Description)
	assert.Equal(t, "Main", item.Category)
	assert.Equal(t, "https://picsum.photos/seed/Alpha/600/400", item.ImageURL)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "res-0", item.RestaurantID)
	assert.Equal(t, "Alpha", item.RestaurantName)
	assert.True(t, s.IsOpen())
}

func TestAddRestaurant_TwiceMergesIntoOneLine(t *testing.T) {
	s := NewStore()
	r := testRestaurant("res-3", "Gamma")

	s.AddRestaurant(r)
	s.AddRestaurant(r)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, s.Count())
}

func TestAddRestaurant_KeepsInsertionOrder(t *testing.T) {
	s := NewStore()

	s.AddRestaurant(testRestaurant("res-1", "B"))
	s.AddRestaurant(testRestaurant("res-0", "A"))
	s.AddRestaurant(testRestaurant("res-1", "B"))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "res-1-special", items[0].ID)
	assert.Equal(t, "res-0-special", items[1].ID)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{name: "increment", start: 1, delta: 1, want: 2},
		{name: "decrement", start: 3, delta: -1, want: 2},
		{name: "floor at one", start: 2, delta: -100, want: 1},
		{name: "decrement from one", start: 1, delta: -1, want: 1},
		{name: "zero delta", start: 4, delta: 0, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			r := testRestaurant("res-0", "A")
			for i := 0; i < tt.start; i++ {
				s.AddRestaurant(r)
			}

			s.UpdateQuantity("res-0-special", tt.delta)

			assert.Equal(t, tt.want, s.Items()[0].Quantity)
		})
	}
}

func TestUpdateQuantity_UnknownIDIsNoop(t *testing.T) {
	s := NewStore()
	s.AddRestaurant(testRestaurant("res-0", "A"))

	s.UpdateQuantity("does-not-exist", 5)

	assert.Equal(t, 1, s.Count())
}

func TestRemove_ThenUpdateDoesNotResurrect(t *testing.T) {
	s := NewStore()
	s.AddRestaurant(testRestaurant("res-0", "A"))
	s.AddRestaurant(testRestaurant("res-1", "B"))

	s.Remove("res-0-special")
	s.UpdateQuantity("res-0-special", 1)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "res-1-special", items[0].ID)
}

func TestRemove_UnknownIDIsNoop(t *testing.T) {
	s := NewStore()
	s.AddRestaurant(testRestaurant("res-0", "A"))

	s.Remove("nope")

	assert.Equal(t, 1, s.Len())
}

func TestTotals(t *testing.T) {
	s := NewStore()
	r := testRestaurant("res-0", "A")
	s.AddRestaurant(r)
	s.AddRestaurant(r)

	assert.InDelta(t, 37.98, s.Subtotal(), 1e-9)
	assert.Equal(t, 3.99, s.DeliveryFee())
	assert.InDelta(t, 41.97, s.Total(), 1e-9)
	assert.Equal(t, 2, s.Count())
}

func TestTotals_EmptyCart(t *testing.T) {
	s := NewStore()

	assert.Equal(t, 0.0, s.Subtotal())
	assert.Equal(t, 0.0, s.DeliveryFee())
	assert.Equal(t, 0.0, s.Total())
	assert.Equal(t, 0, s.Count())
}

func TestTotals_FeeDropsWhenLastLineRemoved(t *testing.T) {
	s := NewStore()
	s.AddRestaurant(testRestaurant("res-0", "A"))
	require.Equal(t, 3.99, s.DeliveryFee())

	s.Remove("res-0-special")

	assert.Equal(t, 0.0, s.DeliveryFee())
	assert.Equal(t, 0.0, s.Total())
}

func TestCheckout_ClearsAndCloses(t *testing.T) {
	var submitted []models.CartItem
	s := NewStore(WithCheckoutHook(func(items []models.CartItem) {
		submitted = items
	}))
	s.AddRestaurant(testRestaurant("res-0", "A"))
	s.AddRestaurant(testRestaurant("res-1", "B"))
	s.AddRestaurant(testRestaurant("res-1", "B"))

	s.Checkout()

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.IsOpen())
	require.Len(t, submitted, 2)
	assert.Equal(t, 2, submitted[1].Quantity)
}

func TestCheckout_EmptyCartDoesNotPanic(t *testing.T) {
	s := NewStore()

	assert.NotPanics(t, s.Checkout)
	assert.Equal(t, 0, s.Count())
}

func TestOpenClose(t *testing.T) {
	s := NewStore()
	assert.False(t, s.IsOpen())

	s.Open()
	assert.True(t, s.IsOpen())

	s.Close()
	assert.False(t, s.IsOpen())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddRestaurant(testRestaurant("res-0", "A"))

	items := s.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestWithLineItemPolicy(t *testing.T) {
	s := NewStore(WithLineItemPolicy(func(r models.Restaurant) models.MenuItem {
		return models.MenuItem{ID: r.ID + "-tasting", Name: "Tasting Menu", Price: 55}
	}))

	s.AddRestaurant(testRestaurant("res-0", "A"))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "res-0-tasting", items[0].ID)
	assert.Equal(t, 55.0, s.Subtotal())
}

func TestSubscribe_NotifiedOnMutation(t *testing.T) {
	s := NewStore()
	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })

	s.AddRestaurant(testRestaurant("res-0", "A"))
	s.UpdateQuantity("res-0-special", 1)
	s.UpdateQuantity("missing", 1)
	s.Remove("res-0-special")
	assert.Equal(t, 3, calls)

	unsubscribe()
	s.AddRestaurant(testRestaurant("res-0", "A"))
	assert.Equal(t, 3, calls)
}
