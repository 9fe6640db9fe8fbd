package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

// Meme is one entry returned by the meme API
type Meme struct {
	ID          int    `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// MemeClient fetches random memes from the Humor API
type MemeClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewMemeClient creates a new meme client
func NewMemeClient(apiKey, baseURL string) *MemeClient {
	return &MemeClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Random fetches a random meme, optionally filtered by keywords
func (c *MemeClient) Random(ctx context.Context, keywords string) (*Meme, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no meme API key configured")
	}

	query := url.Values{}
	query.Set("api-key", c.apiKey)
	if keywords != "" {
		query.Set("keywords", keywords)
	}
	endpoint := fmt.Sprintf("%s/memes/random?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build meme request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meme request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Warn("Meme API returned non-OK status")
		return nil, fmt.Errorf("meme API returned status %d", resp.StatusCode)
	}

	var meme Meme
	if err := json.NewDecoder(resp.Body).Decode(&meme); err != nil {
		return nil, fmt.Errorf("failed to decode meme response: %w", err)
	}
	if meme.URL == "" {
		return nil, fmt.Errorf("meme API returned no image")
	}
	return &meme, nil
}
