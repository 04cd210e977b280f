// Package client is a typed client for the social API plus a persisted
// login session that applies follow and save toggles optimistically.
package client

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

	"social-backend/internal/models"
	"social-backend/internal/services"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client calls the REST API with an optional bearer token
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a client for the API rooted at baseURL. A nil httpClient
// gets a client with a 15s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken sets the bearer token sent with every request
func (c *Client) SetToken(token string) {
	c.token = token
}

// Signup calls POST /api/auth/signup
func (c *Client) Signup(ctx context.Context, username, email, password string) (*services.AuthResult, error) {
	var result services.AuthResult
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login calls POST /api/auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	var result services.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Explore calls GET /api/posts
func (c *Client) Explore(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// FollowingFeed calls GET /api/posts/following
func (c *Client) FollowingFeed(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/following", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost calls POST /api/posts
func (c *Client) CreatePost(ctx context.Context, text, imageURL string) (*models.Post, error) {
	var post models.Post
	body := map[string]string{"text": text, "imageUrl": imageURL}
	if err := c.do(ctx, http.MethodPost, "/api/posts", body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ToggleFollow calls POST /api/users/{id}/follow and returns the server message
func (c *Client) ToggleFollow(ctx context.Context, userID string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/"+url.PathEscape(userID)+"/follow", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ToggleSave calls POST /api/posts/{id}/save and returns the saved post ids
func (c *Client) ToggleSave(ctx context.Context, postID string) ([]string, error) {
	var resp struct {
		SavedPosts []string `json:"savedPosts"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/save", nil, &resp); err != nil {
		return nil, err
	}
	return resp.SavedPosts, nil
}

// UnreadCount calls GET /api/notifications/count
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Search calls GET /api/search?q=
func (c *Client) Search(ctx context.Context, query string) (*services.SearchResult, error) {
	var result services.SearchResult
	if err := c.do(ctx, http.MethodGet, "/api/search?q="+url.QueryEscape(query), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil || msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
