package wisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wishsender/internal/model"
	"wishsender/pkg/circuitbreaker"
)

// GroqClient renders wishes through an OpenAI-compatible chat completions API.
// Calls are bounded by the client timeout and guarded by a circuit breaker so
// a degraded generator fails fast instead of stalling every dispatch.
type GroqClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewGroqClient(baseURL, apiKey, model string, timeout time.Duration) *GroqClient {
	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}

	return &GroqClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cb: circuitbreaker.NewCircuitBreaker(cbConfig),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Render asks the model for a short personalized wish. Any failure, including
// an open breaker, is returned to the caller; the dispatcher falls back to the
// static template.
func (c *GroqClient) Render(ctx context.Context, contact model.Contact) (string, error) {
	var body string

	err := c.cb.Execute(func() error {
		prompt := fmt.Sprintf(
			"Write a warm, short birthday wish (2-3 sentences) for %s. Plain text only, no quotes.",
			contact.Name,
		)
		reqBody := chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "user", Content: prompt},
			},
		}

		b, marshalErr := json.Marshal(reqBody)
		if marshalErr != nil {
			return marshalErr
		}

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("wish generator returned status %d", resp.StatusCode)
		}

		var parsed chatResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
			return decodeErr
		}
		if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
			return fmt.Errorf("wish generator returned empty completion")
		}

		body = parsed.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}

	return body, nil
}
