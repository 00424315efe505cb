package gemini

import (
	"context"
	"fmt"

	"dine-server/models"
	"dine-server/util"
)

// GeminiApiClientMock answers every search from a recorded response on disk
type GeminiApiClientMock struct {
	responsePath string
}

// NewGeminiApiClientMock creates a mock backed by the fixture at responsePath
func NewGeminiApiClientMock(responsePath string) *GeminiApiClientMock {
	return &GeminiApiClientMock{responsePath: responsePath}
}

func (c *GeminiApiClientMock) Search(ctx context.Context, prompt string, location *models.UserLocation) (*models.GroundingResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var response GenerateContentResponse
	if err := util.ReadJSONFile(c.responsePath, &response); err != nil {
		return nil, fmt.Errorf("could not read grounding fixture: %w", err)
	}
	return response.ToGroundingResponse(), nil
}

func (c *GeminiApiClientMock) SetCredentials(string) {}
