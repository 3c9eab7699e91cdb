// Package client is the consumer side of the feedback API: the data-access
// layer used by the form and the panel, the session adapter, and the token
// store they share.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Feedback is the wire representation of one feedback record.
type Feedback struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	EventName  string    `json:"eventName"`
	Division   string    `json:"division"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PageMeta mirrors the server's pagination block.
type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ListResult is the normalized list response. Older API revisions returned a
// bare array in data, newer ones return {feedbacks, pagination}; both are
// folded into this one shape here and the ambiguity never travels upward.
type ListResult struct {
	Feedbacks  []Feedback
	Pagination *PageMeta
}

// CreateInput carries a new submission. Comment and Suggestion are pointers
// so empty optionals are omitted from the payload instead of sent as "".
type CreateInput struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	EventName  string  `json:"eventName"`
	Division   string  `json:"division"`
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment,omitempty"`
	Suggestion *string `json:"suggestion,omitempty"`
}

// UpdateInput is a partial patch; nil fields are left untouched by the server.
type UpdateInput struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	EventName  *string `json:"eventName,omitempty"`
	Division   *string `json:"division,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
	Comment    *string `json:"comment,omitempty"`
	Suggestion *string `json:"suggestion,omitempty"`
	Status     *string `json:"status,omitempty"`
}

// Filters are passed through as query parameters on List.
type Filters map[string]string

// APIError is a non-2xx response with the server's message attached.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client is the feedback data-access layer. Every call is independent and
// stateless; there is no retry, dedup or caching. Loading and LastError
// mirror what a view needs to render a spinner or a banner.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenStore

	mu      sync.Mutex
	loading bool
	lastErr string
}

func New(baseURL string, tokens TokenStore) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    http.DefaultClient,
		Tokens:  tokens,
	}
}

// Loading reports whether a call is in flight.
func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the message of the most recent failure, or "" after a
// successful call.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) begin() {
	c.mu.Lock()
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()
}

func (c *Client) end(err error) {
	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.lastErr = err.Error()
	}
	c.mu.Unlock()
}

// List fetches feedbacks, optionally filtered. Public, no auth header.
func (c *Client) List(ctx context.Context, filters Filters) (result ListResult, err error) {
	c.begin()
	defer func() { c.end(err) }()

	endpoint := c.BaseURL + "/feedback"
	if len(filters) > 0 {
		params := url.Values{}
		for k, v := range filters {
			params.Set(k, v)
		}
		endpoint += "?" + params.Encode()
	}

	var raw json.RawMessage
	if err = c.do(ctx, http.MethodGet, endpoint, nil, false, "Failed to fetch feedbacks", &raw); err != nil {
		return ListResult{}, err
	}
	return normalizeList(raw)
}

// Get fetches a single feedback by id. Public.
func (c *Client) Get(ctx context.Context, id uint) (fb Feedback, err error) {
	c.begin()
	defer func() { c.end(err) }()

	err = c.do(ctx, http.MethodGet, fmt.Sprintf("%s/feedback/%d", c.BaseURL, id), nil, false, "Failed to fetch feedback", &fb)
	return fb, err
}

// Create submits new feedback. Public.
func (c *Client) Create(ctx context.Context, input CreateInput) (fb Feedback, err error) {
	c.begin()
	defer func() { c.end(err) }()

	err = c.do(ctx, http.MethodPost, c.BaseURL+"/feedback", input, false, "Failed to create feedback", &fb)
	return fb, err
}

// Update patches a feedback record. Requires a bearer token.
func (c *Client) Update(ctx context.Context, id uint, input UpdateInput) (fb Feedback, err error) {
	c.begin()
	defer func() { c.end(err) }()

	err = c.do(ctx, http.MethodPut, fmt.Sprintf("%s/feedback/%d", c.BaseURL, id), input, true, "Failed to update feedback", &fb)
	return fb, err
}

// Delete removes a feedback record. Requires a bearer token.
func (c *Client) Delete(ctx context.Context, id uint) (fb Feedback, err error) {
	c.begin()
	defer func() { c.end(err) }()

	err = c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/feedback/%d", c.BaseURL, id), nil, true, "Failed to delete feedback", &fb)
	return fb, err
}

// do issues one request and decodes the data envelope into out. The bearer
// token is read from the store at call time, never cached on the client.
func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}, withAuth bool, fallback string, out interface{}) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if withAuth {
		if token, _ := c.Tokens.Get(KeyAccessToken); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var errBody struct {
			Message string `json:"message"`
		}
		message := fallback
		if decodeErr := json.NewDecoder(res.Body).Decode(&errBody); decodeErr == nil && errBody.Message != "" {
			message = errBody.Message
		}
		return &APIError{Status: res.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}

func normalizeList(raw json.RawMessage) (ListResult, error) {
	var shaped struct {
		Feedbacks  []Feedback `json:"feedbacks"`
		Pagination *PageMeta  `json:"pagination"`
	}
	if err := json.Unmarshal(raw, &shaped); err == nil && shaped.Feedbacks != nil {
		return ListResult{Feedbacks: shaped.Feedbacks, Pagination: shaped.Pagination}, nil
	}

	var bare []Feedback
	if err := json.Unmarshal(raw, &bare); err != nil {
		return ListResult{}, fmt.Errorf("unrecognized list response shape: %w", err)
	}
	return ListResult{Feedbacks: bare}, nil
}
