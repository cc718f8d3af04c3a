package songlink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// oembedResponse is the subset of the oEmbed payload the services share.
type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// fetchOEmbed queries an oEmbed endpoint for the target URL's metadata.
func fetchOEmbed(ctx context.Context, client *http.Client, endpoint, targetURL string) (*oembedResponse, error) {
	reqURL := fmt.Sprintf("%s?url=%s&format=json", endpoint, url.QueryEscape(targetURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oEmbed endpoint returned status %d", resp.StatusCode)
	}

	var decoded oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode oEmbed response: %w", err)
	}
	return &decoded, nil
}
