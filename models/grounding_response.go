// models/grounding_response.go
package models

// MapsPlace is the maps annotation a grounding chunk may carry.
type MapsPlace struct {
	URI     string `json:"uri,omitempty"`
	Title   string `json:"title,omitempty"`
	PlaceID string `json:"placeId,omitempty"`
}

// WebSource is carried by chunks grounded on web pages instead of maps places.
type WebSource struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

type GroundingChunk struct {
	Maps *MapsPlace `json:"maps,omitempty"`
	Web  *WebSource `json:"web,omitempty"`
}

// GroundingResponse is the decoded subset of a generateContent reply we care about.
type GroundingResponse struct {
	Text   string           `json:"text"`
	Chunks []GroundingChunk `json:"grounding_chunks"`
}
