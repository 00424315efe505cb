package models

type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

// CartItem is a purchasable line. ID alone is the merge key.
type CartItem struct {
	MenuItem
	Quantity       int    `json:"quantity"`
	RestaurantID   string `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
}

// LineTotal returns price times quantity for this line.
func (c CartItem) LineTotal() float64 {
	return c.Price * float64(c.Quantity)
}
