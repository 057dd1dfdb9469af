// Package govlinesdk is a minimal govline HTTP API client.
package govlinesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Task represents the API task model (partial).
type Task struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// Signature is one signing act recorded against a task.
type Signature struct {
	KeyID    string `json:"key_id"`
	Role     string `json:"role"`
	Digest   string `json:"digest"`
	SignedAt string `json:"signed_at"`
}

// SignResult is the outcome of submitting a signature.
type SignResult struct {
	Task         Task `json:"task"`
	Transitioned bool `json:"transitioned"`
}

// Eligibility is the pre-flight answer for a would-be signature.
type Eligibility struct {
	Eligible     bool   `json:"eligible"`
	TransitionTo string `json:"transition_to,omitempty"`
}

// Event represents a log entry.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	ActorID    string `json:"actor_id"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// CreateTask creates a draft task.
func (c *Client) CreateTask(ctx context.Context, title string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, "v0/tasks", map[string]any{"title": title}, &resp)
	return resp, err
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodGet, "v0/tasks/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// ListTasks lists tasks, optionally filtered by status.
func (c *Client) ListTasks(ctx context.Context, status string) ([]Task, error) {
	endpoint := "v0/tasks"
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}
	var resp []Task
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// CheckEligibility asks whether an actor could sign toward a command.
func (c *Client) CheckEligibility(ctx context.Context, taskID, actorID, role, command string) (Eligibility, error) {
	endpoint := fmt.Sprintf("v0/tasks/%s/eligibility?actor_id=%s&role=%s&command=%s",
		url.PathEscape(taskID), url.QueryEscape(actorID), url.QueryEscape(role), url.QueryEscape(command))
	var resp Eligibility
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// SubmitSignature submits a locally produced signature toward a transition.
func (c *Client) SubmitSignature(ctx context.Context, taskID, command string, sig Signature, signatureBytes string) (SignResult, error) {
	body := map[string]any{
		"command":   command,
		"key_id":    sig.KeyID,
		"role":      sig.Role,
		"digest":    sig.Digest,
		"signature": signatureBytes,
		"signed_at": sig.SignedAt,
	}
	var resp SignResult
	err := c.do(ctx, http.MethodPost, "v0/tasks/"+url.PathEscape(taskID)+"/signatures", body, &resp)
	return resp, err
}

// RunCommand attempts a command-gated transition with the signatures already
// on the record.
func (c *Client) RunCommand(ctx context.Context, taskID, command string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, "v0/tasks/"+url.PathEscape(taskID)+"/commands", map[string]any{"command": command}, &resp)
	return resp, err
}

// ApplyEvent attempts an event-gated transition.
func (c *Client) ApplyEvent(ctx context.Context, taskID, event string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, "v0/tasks/"+url.PathEscape(taskID)+"/events", map[string]any{"event": event}, &resp)
	return resp, err
}

// Events returns recent events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	endpoint := "v0/events"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	target := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
