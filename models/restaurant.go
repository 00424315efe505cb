package models

import "fmt"

// Restaurant is a single search hit. Ids are only unique within one result set.
type Restaurant struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	Reviews     int     `json:"reviews"`
	Cuisine     string  `json:"cuisine"`
	PriceLevel  string  `json:"price_level"`
	Address     string  `json:"address"`
	MapsURL     string  `json:"maps_url,omitempty"`
	ImageURL    string  `json:"image_url"`
}

func (r *Restaurant) ToString() string {
	return fmt.Sprintf("Restaurant(id=%s, name=%s, rating=%.2f, reviews=%d)",
		r.ID, r.Name, r.Rating, r.Reviews)
}

// SearchResult is what the normalizer hands back to the session.
type SearchResult struct {
	Restaurants []Restaurant `json:"restaurants"`
	Insight     string       `json:"insight"`
}
