package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	ChatPath         = "/chat"
	ClearHistoryPath = "/clear-history"
	HistoryPath      = "/chat-history"
	HealthPath       = "/health"

	RequestIDHeader = "X-Request-ID"
)

// ChatRequest is the body posted to /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by /chat. Response is empty when the
// server omitted the field.
type ChatResponse struct {
	Response string `json:"response,omitempty"`
}

// HistoryItem is one exchange stored in the server-side session.
type HistoryItem struct {
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
	Timestamp   string `json:"timestamp"`
}

type HistoryResponse struct {
	History []HistoryItem `json:"history"`
	Count   int           `json:"count"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	CompaniesLoaded int    `json:"companies_loaded"`
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// IsStatusError reports whether err carries a non-success HTTP status.
func IsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Client talks to the chat backend. The backend keys history on a session
// cookie, so the underlying http.Client must keep a cookie jar.
type Client struct {
	baseURL string
	http    *http.Client
}

type ClientOption func(*Client) error

// WithHTTPClient uses a copy of hc for every request. A jar is attached to the
// copy if hc has none, so hc itself is never modified.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		cp := *hc
		c.http = &cp
		return nil
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d < 0 {
			return errors.Errorf("invalid timeout: %s", d)
		}
		c.http.Timeout = d
		return nil
	}
}

func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base url cannot be empty")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, errors.Errorf("base url must be http(s): %s", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "failed to apply client option")
		}
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create cookie jar")
		}
		c.http.Jar = jar
	}

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat posts a user message and returns the bot reply. Non-2xx statuses are
// returned as *StatusError.
func (c *Client) Chat(ctx context.Context, message string) (ChatResponse, error) {
	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return ChatResponse{}, errors.Wrap(err, "failed to encode chat request")
	}

	status, raw, err := c.do(ctx, http.MethodPost, ChatPath, bytes.NewReader(body))
	if err != nil {
		return ChatResponse{}, err
	}
	if status < 200 || status > 299 {
		return ChatResponse{}, &StatusError{Code: status, Path: ChatPath}
	}

	var resp *ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ChatResponse{}, errors.Wrap(err, "failed to decode chat response")
	}
	if resp == nil {
		return ChatResponse{}, errors.New("failed to decode chat response: body is null")
	}
	return *resp, nil
}

// ClearHistory asks the backend to drop the session history. The status code
// is not treated as a failure; only transport errors and an unparseable body
// are. Any JSON value is accepted and returned as decoded.
func (c *Client) ClearHistory(ctx context.Context) (any, error) {
	status, raw, err := c.do(ctx, http.MethodPost, ClearHistoryPath, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		log.Warn().Str("component", "chatapi").Int("status", status).Msg("clear-history returned non-success status")
	}

	var resp any
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to decode clear-history response")
	}
	return resp, nil
}

func (c *Client) History(ctx context.Context) (HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.getJSON(ctx, HistoryPath, &resp); err != nil {
		return HistoryResponse{}, err
	}
	return resp, nil
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	if err := c.getJSON(ctx, HealthPath, &resp); err != nil {
		return HealthResponse{}, err
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	status, raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &StatusError{Code: status, Path: path}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", path)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to build request")
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger := log.With().
		Str("component", "chatapi").
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Logger()

	start := time.Now()
	logger.Debug().Msg("sending request")
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("request failed")
		return 0, nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "failed to read response body")
	}
	logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("elapsed", time.Since(start)).
		Msg("received response")

	return resp.StatusCode, raw, nil
}
