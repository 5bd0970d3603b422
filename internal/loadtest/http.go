package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the activities API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Roster returns the participants of one activity.
func (c *Client) Roster(ctx context.Context, activity string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/activities", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list activities returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var catalog map[string]activityView
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	a, ok := catalog[activity]
	if !ok {
		return nil, fmt.Errorf("activity %q not in catalog", activity)
	}
	return a.Participants, nil
}

// Signup posts a signup and returns the response status and body.
func (c *Client) Signup(ctx context.Context, activity, email string) (int, messageResponse, error) {
	return c.mutate(ctx, http.MethodPost, activity, "signup", email)
}

// Unregister deletes a signup and returns the response status and body.
func (c *Client) Unregister(ctx context.Context, activity, email string) (int, messageResponse, error) {
	return c.mutate(ctx, http.MethodDelete, activity, "unregister", email)
}

func (c *Client) mutate(ctx context.Context, method, activity, action, email string) (int, messageResponse, error) {
	var msg messageResponse
	target := c.baseURL + "/activities/" + url.PathEscape(activity) + "/" + action +
		"?email=" + url.QueryEscape(email)

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, msg, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, msg, fmt.Errorf("%s request failed: %w", action, err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return resp.StatusCode, msg, err
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return resp.StatusCode, msg, fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	return resp.StatusCode, msg, nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return b, nil
}
