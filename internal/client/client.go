// Package client talks to the configuration API of a modelcfg server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"modelcfg/config/models"
	"modelcfg/internal/utils"
)

// Client is a configuration API client
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the server at baseURL. Requests carry no timeout
// of their own; callers bound them through the context.
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{}}
}

// StatusError is returned when the server answers with a non-2xx status.
// Transport failures are returned as plain errors.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, utils.JoinURL(c.baseURL, path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(data, "error").String(),
		}
	}

	return data, nil
}

// FetchConfig retrieves the configuration document
func (c *Client) FetchConfig(ctx context.Context) (models.Document, error) {
	data, err := c.do(ctx, http.MethodGet, "/config", nil)
	if err != nil {
		return models.Document{}, err
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return doc, nil
}

// SaveConfig submits the full configuration document. The response message
// is returned for display but carries no meaning.
func (c *Client) SaveConfig(ctx context.Context, doc models.Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/config", body)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(data, "message").String(), nil
}

// FetchModels retrieves the model listings
func (c *Client) FetchModels(ctx context.Context) (models.ModelsResponse, error) {
	data, err := c.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return models.ModelsResponse{}, err
	}

	var listing models.ModelsResponse
	if err := json.Unmarshal(data, &listing); err != nil {
		return models.ModelsResponse{}, fmt.Errorf("failed to decode models: %w", err)
	}
	return listing, nil
}
