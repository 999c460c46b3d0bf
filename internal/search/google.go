package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const defaultSearchAPI = "https://customsearch.googleapis.com/customsearch/v1"

// ErrNotConfigured means the API key or engine ID is missing. It is returned
// before any network call.
var ErrNotConfigured = errors.New("search: Google Custom Search key or engine ID not configured")

type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type Client struct {
	apiKey  string
	cx      string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, cx string) *Client {
	return &Client{
		apiKey:  apiKey,
		cx:      cx,
		baseURL: defaultSearchAPI,
		http:    &http.Client{},
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != "" && c.cx != ""
}

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
}

// Search runs a Custom Search query, returning at most 10 results.
// Non-2xx responses surface as errors carrying the status and body.
func (c *Client) Search(ctx context.Context, query string, numResults int) ([]Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if numResults <= 0 {
		numResults = 5
	}
	if numResults > 10 {
		numResults = 10
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(numResults))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("search: %s %s", resp.Status, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}
	return results, nil
}
