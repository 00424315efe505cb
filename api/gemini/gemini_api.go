package gemini

import (
	"context"
	"fmt"

	"dine-server/models"
)

const PROMPT_FORMAT = "Find popular restaurants for: %s. For each restaurant, provide the name, cuisine type, an estimated rating, and a brief description. Focus on places currently open and highly rated near my location."

// GroundingAPI defines the interface for the maps-grounded generation call
type GroundingAPI interface {
	Search(ctx context.Context, prompt string, location *models.UserLocation) (*models.GroundingResponse, error)
	SetCredentials(apiKey string)
}

// BuildPrompt wraps a free-text user query into the grounding prompt.
func BuildPrompt(query string) string {
	return fmt.Sprintf(PROMPT_FORMAT, query)
}
