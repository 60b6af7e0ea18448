package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ops-console/internal/config"
	"ops-console/internal/logger"

	"github.com/sirupsen/logrus"
)

// ChatRequest is the single outbound request body the routing backend accepts
type ChatRequest struct {
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Provider string `json:"provider"`
	Context  string `json:"context"`
}

// Client issues chat requests against the routing backend
type Client interface {
	SendMessage(req ChatRequest) ([]byte, error)
}

// BackendError reports a non-success status from the routing backend
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// HTTPClient implements Client over plain HTTPS with a bounded timeout.
// A hung backend resolves as a transport error instead of blocking forever.
type HTTPClient struct {
	config *config.RouterConfig
	client *http.Client
}

// NewHTTPClient creates a new HTTPClient with config
func NewHTTPClient(routerConfig *config.RouterConfig) *HTTPClient {
	return &HTTPClient{
		config: routerConfig,
		client: &http.Client{Timeout: routerConfig.Timeout},
	}
}

// SendMessage posts the chat request and returns the raw response body.
// There is exactly one attempt per call; retrying is the operator's decision.
func (c *HTTPClient) SendMessage(chatReq ChatRequest) ([]byte, error) {
	if c.config.ChatURL == "" {
		return nil, fmt.Errorf("ROUTER_CHAT_URL not configured")
	}

	jsonData, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", c.config.ChatURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	logger.Log.WithFields(logrus.Fields{
		"provider": chatReq.Provider,
		"context":  chatReq.Context,
		"user_id":  chatReq.UserID,
	}).Info("Calling chat-routing backend")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{Status: resp.StatusCode, Body: string(body)}
	}

	logger.Log.WithField("response_length", len(body)).Debug("Received raw backend response")

	return body, nil
}
