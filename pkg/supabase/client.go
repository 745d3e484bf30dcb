package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds every request to Supabase
const DefaultTimeout = 15 * time.Second

// Client represents a Supabase client for the PostgREST and GoTrue APIs
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client
func NewClient(url, serviceKey string) *Client {
	return &Client{
		URL:        url,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Error is returned for any response with a status code >= 400
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, e.Body)
}

// User represents a Supabase user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Query executes a GET on a table. Each query value is sent as a PostgREST
// filter, e.g. {"user_id": "eq.123", "order": "timestamp.desc"}.
func (c *Client) Query(ctx context.Context, table string, query map[string]interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.restURL(table), query, nil, "")
}

// Insert inserts one or more records and returns the stored representation
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, c.restURL(table), nil, data, "return=representation")
}

// Update patches the record with the given id and returns its new
// representation. A nil map value clears the column.
func (c *Client) Update(ctx context.Context, table string, id string, data interface{}) ([]byte, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}
	return c.do(ctx, http.MethodPatch, c.restURL(table), query, data, "return=representation")
}

// VerifyToken verifies a user JWT with Supabase Auth
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/auth/v1/user", c.URL), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	body, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

func (c *Client) restURL(table string) string {
	return fmt.Sprintf("%s/rest/v1/%s", c.URL, table)
}

func (c *Client) do(ctx context.Context, method, endpoint string, query map[string]interface{}, data interface{}, prefer string) ([]byte, error) {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	if len(query) > 0 {
		q := url.Values{}
		for key, value := range query {
			q.Add(key, fmt.Sprintf("%v", value))
		}
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.ServiceKey))
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
