package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"dine-server/api"
	"dine-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groundedReply = `{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": "Great picks.\n"}, {"text": "More detail."}]},
    "groundingMetadata": {"groundingChunks": [
      {"maps": {"uri": "https://maps.example/a", "title": "A Place"}},
      {"web": {"uri": "https://example.com"}},
      {"maps": {"title": "B Place"}}
    ]}
  }]
}`

func TestSearch_SendsGroundedRequest(t *testing.T) {
	var received map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST; got %s", r.Method)
		}
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get(API_KEY_HEADER); got != "secret" {
			t.Errorf("api key header = %q; want secret", got)
		}

		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &received)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(groundedReply))
	}))
	defer srv.Close()

	client := NewGeminiApiClient(api.NewHTTPClient(srv.URL), "gemini-2.5-flash")
	client.SetCredentials("secret")

	got, err := client.Search(context.Background(), BuildPrompt("tacos"), &models.UserLocation{Latitude: 1.5, Longitude: -2.25})
	require.NoError(t, err)

	assert.Equal(t, "Great picks.\nMore detail.", got.Text)
	require.Len(t, got.Chunks, 3)
	assert.Equal(t, "A Place", got.Chunks[0].Maps.Title)
	assert.Nil(t, got.Chunks[1].Maps)
	assert.Empty(t, got.Chunks[2].Maps.URI)

	tools := received["tools"].([]interface{})
	require.Len(t, tools, 1)
	assert.Contains(t, tools[0].(map[string]interface{}), "googleMaps")

	latLng := received["toolConfig"].(map[string]interface{})["retrievalConfig"].(map[string]interface{})["latLng"].(map[string]interface{})
	assert.Equal(t, 1.5, latLng["latitude"])
	assert.Equal(t, -2.25, latLng["longitude"])

	contents := received["contents"].([]interface{})
	parts := contents[0].(map[string]interface{})["parts"].([]interface{})
	assert.Contains(t, parts[0].(map[string]interface{})["text"], "Find popular restaurants for: tacos.")
}

func TestSearch_NoLocationOmitsToolConfig(t *testing.T) {
	var received map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := NewGeminiApiClient(api.NewHTTPClient(srv.URL), "gemini-2.5-flash")

	got, err := client.Search(context.Background(), BuildPrompt("popular restaurants"), nil)
	require.NoError(t, err)

	assert.NotContains(t, received, "toolConfig")
	assert.Empty(t, got.Text)
	assert.Empty(t, got.Chunks)
}

func TestSearch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	client := NewGeminiApiClient(api.NewHTTPClient(srv.URL), "gemini-2.5-flash")

	got, err := client.Search(context.Background(), "q", nil)

	assert.Nil(t, got)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestToGroundingResponse_CandidateWithoutMetadata(t *testing.T) {
	resp := GenerateContentResponse{Candidates: []Candidate{{Content: Content{Parts: []Part{{Text: "only text"}}}}}}

	got := resp.ToGroundingResponse()

	assert.Equal(t, "only text", got.Text)
	assert.Nil(t, got.Chunks)
}

func TestGeminiApiClientMock_ReadsFixture(t *testing.T) {
	client := NewGeminiApiClientMock(filepath.Join("..", "..", "resources", "grounding_response.json"))

	got, err := client.Search(context.Background(), BuildPrompt("anything"), nil)
	require.NoError(t, err)

	require.Len(t, got.Chunks, 4)
	assert.Equal(t, "Joe's Diner", got.Chunks[0].Maps.Title)
	assert.Nil(t, got.Chunks[1].Maps)
	assert.Contains(t, got.Text, "highly rated spots")
}

func TestGeminiApiClientMock_MissingFixture(t *testing.T) {
	client := NewGeminiApiClientMock(filepath.Join(t.TempDir(), "nope.json"))

	_, err := client.Search(context.Background(), "q", nil)

	assert.ErrorContains(t, err, "could not read grounding fixture")
}
