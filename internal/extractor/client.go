// Package extractor calls an OpenAI-compatible chat completion gateway and
// turns the model's reply into a raw prediction record.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"lead-extract-eval/internal/logger"
	"lead-extract-eval/internal/types"
)

// Request is one extraction call.
type Request struct {
	Model  string
	Prompt string
}

// Usage is the token accounting reported by the gateway.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add returns the element-wise sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

// Response carries the parsed record plus the raw model text.
type Response struct {
	Record  types.RawRecord
	Content string
	Usage   Usage
}

// Extractor produces a raw prediction record for a prompt.
type Extractor interface {
	Extract(ctx context.Context, req Request) (Response, error)
}

// ClientConfig configures the gateway client.
type ClientConfig struct {
	GatewayURL   string
	APIKey       string
	HTTPTimeout  time.Duration
	MaxRetryTime time.Duration
}

// Client talks to the chat completion endpoint with retry/backoff.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg ClientConfig, log *logger.Logger) (*Client, error) {
	if cfg.GatewayURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("llm gateway not configured")
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 25 * time.Second
	}
	if cfg.MaxRetryTime <= 0 {
		cfg.MaxRetryTime = 45 * time.Second
	}
	if log == nil {
		log = logger.New()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		log:        log,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Extract sends the prompt and parses the first choice. A reply that holds
// no JSON object is not an error: it comes back as an empty record.
func (c *Client) Extract(ctx context.Context, req Request) (Response, error) {
	log := c.log.WithField("component", "extractor").WithField("model", req.Model)

	data, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: 0,
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	var (
		parsed  chatResponse
		lastErr error
	)
	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.HTTPTimeout)
		defer cancel()

		httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.GatewayURL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		log.WithField("http_status", resp.StatusCode).Debug("llm raw:\n" + string(body))

		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, string(body))
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				// Permanent: don't retry on client errors
				return backoff.Permanent(lastErr)
			}
			return lastErr
		}

		parsed = chatResponse{}
		if err := json.Unmarshal(body, &parsed); err != nil {
			lastErr = fmt.Errorf("decode llm response: %w", err)
			return lastErr
		}
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.cfg.MaxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return Response{}, fmt.Errorf("llm extract failed: %w", lastErr)
	}

	out := Response{Usage: parsed.Usage, Record: types.RawRecord{}}
	if len(parsed.Choices) > 0 {
		out.Content = parsed.Choices[0].Message.Content
		out.Record = ParseRecord(out.Content)
	}
	if len(out.Record) == 0 {
		log.Warn("no JSON object in model output, using empty record")
	}
	return out, nil
}

// Mock returns the same record for every request. Used with USE_MOCK_LLM.
type Mock struct {
	Record types.RawRecord
}

// NewMock returns a Mock with a fixed sample lead.
func NewMock() *Mock {
	return &Mock{Record: types.RawRecord{
		"first_name":            "Asha",
		"last_name":             "Rao",
		"email":                 "asha.rao@example.com",
		"phone_number":          "9876543210",
		"budget":                float64(10000000),
		"current_location":      "Pune",
		"preferred_location":    "Baner",
		"profession":            "salaried",
		"visit_date":            "2026-03-01",
		"buying_timeline_weeks": float64(2),
	}}
}

// Extract implements Extractor.
func (m *Mock) Extract(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	rec := make(types.RawRecord, len(m.Record))
	for k, v := range m.Record {
		rec[k] = v
	}
	content, _ := json.Marshal(rec)
	return Response{Record: rec, Content: string(content)}, nil
}
