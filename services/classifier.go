package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"prophecy-badge-system/utils"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ClassifierClient talks to the external AI content classifier. The whole
// path is advisory: callers retry a little, then log and drop.
type ClassifierClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClassifierClient(baseURL string, log *zap.Logger) *ClassifierClient {
	return &ClassifierClient{baseURL: baseURL, http: utils.HTTPClient, log: log}
}

// Classification is the classifier's verdict on one prophecy text.
type Classification struct {
	Confidence float64  `json:"confidence"`
	Categories []string `json:"categories"`
}

type classifyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Classify maps a prophecy's text to category tags with a confidence score.
// Transient failures are retried with exponential backoff before giving up.
func (c *ClassifierClient) Classify(ctx context.Context, title, description string) (*Classification, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("classifier URL not configured")
	}

	body, err := json.Marshal(classifyRequest{Title: title, Description: description})
	if err != nil {
		return nil, fmt.Errorf("encode classify request: %w", err)
	}

	var result Classification
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/classify", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("classifier returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("classifier returned %d", resp.StatusCode))
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return backoff.Permanent(fmt.Errorf("decode classifier response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return &result, nil
}
