package cart

import (
	"fmt"

	"dine-server/models"
)

// RestaurantToDefaultLineItem maps every restaurant to a single platter. There is no
// per-restaurant menu behind the grounding search yet.
func RestaurantToDefaultLineItem(r models.Restaurant) models.MenuItem {
	return models.MenuItem{
		ID:          r.ID + DefaultItemSuffix,
		Name:        fmt.Sprintf(DefaultItemNameFormat, r.Cuisine),
		Price:       DefaultItemPrice,
		Description: DefaultItemDescription,
		Category:    DefaultItemCategory,
		ImageURL:    r.ImageURL,
	}
}
