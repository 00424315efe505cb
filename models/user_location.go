package models

// UserLocation holds the coordinate pair reported by the browser.
type UserLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
