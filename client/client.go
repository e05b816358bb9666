// Package client talks to a bate-papo server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	userHeader = "user"
	// DefaultKeepAlive stays well under the default liveness timeout.
	DefaultKeepAlive = 5 * time.Second
)

type Participant struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// APIError is a non 2xx answer of the server.
type APIError struct {
	Status  int          `json:"-"`
	Message string       `json:"error"`
	Details []FieldError `json:"details"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	user    string
	http    *http.Client
	log     *slog.Logger
}

func New(baseURL, user string, log *slog.Logger, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		user:    strings.TrimSpace(user),
		http:    httpClient,
		log:     log,
	}
}

func (c *Client) User() string {
	return c.user
}

// Join registers the client user.
func (c *Client) Join(ctx context.Context) (Participant, error) {
	var out Participant
	err := c.do(ctx, http.MethodPost, "/participants", map[string]string{"name": c.user}, &out)
	return out, err
}

func (c *Client) Participants(ctx context.Context) ([]Participant, error) {
	var out []Participant
	err := c.do(ctx, http.MethodGet, "/participants", nil, &out)
	return out, err
}

// Heartbeat refreshes the liveness of the client user.
func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/status", nil, nil)
}

// Say posts a public message.
func (c *Client) Say(ctx context.Context, text string) (Message, error) {
	return c.Post(ctx, "all", text, "message")
}

// Whisper posts a private message to one participant.
func (c *Client) Whisper(ctx context.Context, to, text string) (Message, error) {
	return c.Post(ctx, to, text, "private_message")
}

func (c *Client) Post(ctx context.Context, to, text, kind string) (Message, error) {
	var out Message
	err := c.do(ctx, http.MethodPost, "/messages", messageBody(to, text, kind), &out)
	return out, err
}

// Messages returns what the client user may see. limit <= 0 fetches everything.
func (c *Client) Messages(ctx context.Context, limit int) ([]Message, error) {
	path := "/messages"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []Message
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Edit(ctx context.Context, id, to, text, kind string) (Message, error) {
	var out Message
	err := c.do(ctx, http.MethodPut, "/messages/"+url.PathEscape(id), messageBody(to, text, kind), &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/messages/"+url.PathEscape(id), nil, nil)
}

// KeepAlive sends a heartbeat every interval until ctx is done.
// It stops with an error once the server no longer knows the user.
func (c *Client) KeepAlive(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultKeepAlive
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := c.Heartbeat(ctx)
			if StatusOf(err) == http.StatusNotFound {
				return err
			}
			if err != nil && ctx.Err() == nil {
				c.log.Warn("Heartbeat failed", "user", c.user, "error", err)
			}
		}
	}
}

func messageBody(to, text, kind string) map[string]string {
	return map[string]string{"to": to, "text": text, "type": kind}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set(userHeader, c.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.log.Debug("Request rejected", "method", method, "path", path, "status", resp.StatusCode, "error", apiErr.Message)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
