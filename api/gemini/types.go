package gemini

import (
	"strings"

	"dine-server/models"
)

type Part struct {
	Text string `json:"text,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GoogleMaps struct{}

type Tool struct {
	GoogleMaps *GoogleMaps `json:"googleMaps,omitempty"`
}

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type RetrievalConfig struct {
	LatLng LatLng `json:"latLng"`
}

type ToolConfig struct {
	RetrievalConfig RetrievalConfig `json:"retrievalConfig"`
}

// GenerateContentRequest is the body of models/{model}:generateContent.
type GenerateContentRequest struct {
	Contents   []Content   `json:"contents"`
	Tools      []Tool      `json:"tools"`
	ToolConfig *ToolConfig `json:"toolConfig,omitempty"`
}

type GroundingMetadata struct {
	GroundingChunks []models.GroundingChunk `json:"groundingChunks"`
}

type Candidate struct {
	Content           Content            `json:"content"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

type GenerateContentResponse struct {
	Candidates   []Candidate `json:"candidates"`
	ModelVersion string      `json:"modelVersion,omitempty"`
}

// ToGroundingResponse keeps the first candidate's text and grounding chunks.
// A reply without candidates is an empty, valid response.
func (r *GenerateContentResponse) ToGroundingResponse() *models.GroundingResponse {
	out := &models.GroundingResponse{}
	if len(r.Candidates) == 0 {
		return out
	}

	first := r.Candidates[0]
	var sb strings.Builder
	for _, p := range first.Content.Parts {
		sb.WriteString(p.Text)
	}
	out.Text = sb.String()

	if first.GroundingMetadata != nil {
		out.Chunks = first.GroundingMetadata.GroundingChunks
	}
	return out
}

func newGenerateContentRequest(prompt string, location *models.UserLocation) GenerateContentRequest {
	req := GenerateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
		Tools:    []Tool{{GoogleMaps: &GoogleMaps{}}},
	}
	if location != nil {
		req.ToolConfig = &ToolConfig{
			RetrievalConfig: RetrievalConfig{
				LatLng: LatLng{Latitude: location.Latitude, Longitude: location.Longitude},
			},
		}
	}
	return req
}
