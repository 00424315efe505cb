package gemini

import (
	"context"
	"fmt"
	"net/url"

	"dine-server/api"
	"dine-server/models"
)

const API_KEY_HEADER = "x-goog-api-key"

// GeminiApiClient embeds the common HTTPClient
type GeminiApiClient struct {
	*api.HTTPClient
	model  string
	apiKey string
}

// NewGeminiApiClient creates a client for the given model
func NewGeminiApiClient(httpClient *api.HTTPClient, model string) *GeminiApiClient {
	return &GeminiApiClient{
		HTTPClient: httpClient,
		model:      model,
	}
}

func (c *GeminiApiClient) SetCredentials(apiKey string) {
	c.apiKey = apiKey
}

// Search runs a maps-grounded generation. The location, when given, biases retrieval.
func (c *GeminiApiClient) Search(ctx context.Context, prompt string, location *models.UserLocation) (*models.GroundingResponse, error) {
	endpoint := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model))
	headers := map[string]string{API_KEY_HEADER: c.apiKey}

	var response GenerateContentResponse
	err := c.Request(ctx, "POST", endpoint, headers, newGenerateContentRequest(prompt, location), &response)
	if err != nil {
		return nil, err
	}
	return response.ToGroundingResponse(), nil
}
