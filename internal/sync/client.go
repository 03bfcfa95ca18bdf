package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
)

// batchResult mirrors the fields of the server's ingest response that the
// sync CLI reports on, without importing server-side packages.
type batchResult struct {
	SetsInserted int `json:"sets_inserted"`
	SetsSkipped  int `json:"sets_skipped"`
	SetsRejected int `json:"sets_rejected"`
	Records      []struct {
		Exercise   models.ExerciseRef `json:"exercise"`
		RecordType string             `json:"record_type"`
		Value      float64            `json:"value"`
	} `json:"records"`
}

// Client sends set batches to the PulseLift server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the PulseLift server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SendBatch POSTs a set batch to the server's ingest endpoint.
// Retries up to 3 times with exponential backoff on failure.
func (c *Client) SendBatch(batch *models.SetBatch) (*batchResult, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshaling batch: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/sets", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var result batchResult
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding ingest response: %w", err)
			}
			return &result, nil
		}
		lastErr = fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, body)
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
