package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/codecrafthq/codecraft/pkg/codecraft/logging"
	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
)

// DefaultBaseURL is the development API endpoint.
const DefaultBaseURL = "http://localhost:4000"

// Client is the HTTP JSON adapter for the project store API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenStore
}

var _ Store = (*Client)(nil)

// NewClient returns a client for the store at baseURL. An empty
// baseURL uses DefaultBaseURL, a nil tokens store uses the default
// token path.
func NewClient(baseURL string, tokens *TokenStore) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = NewTokenStore("")
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
}

// SignedIn reports whether a credential is present.
func (c *Client) SignedIn() bool {
	return c.tokens.Load() != ""
}

// Login authenticates against the store and persists the credential.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/auth/login", email, password)
}

// Register creates an account and persists the credential.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/auth/register", email, password)
}

// Logout clears the stored credential.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	return c.tokens.Save(resp.Token)
}

// ListProjects implements Store.
func (c *Client) ListProjects(ctx context.Context) ([]ProjectRecord, error) {
	var projects []ProjectRecord
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject implements Store.
func (c *Client) CreateProject(ctx context.Context, id, name string) (*ProjectRecord, error) {
	var record ProjectRecord
	body := map[string]string{"id": id, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/projects", body, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetProject implements Store. A 404 maps to (nil, nil).
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &project)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject implements Store.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil)
}

// UpsertFile implements Store. PUT-first against the record's key,
// falling back to POST when the record does not exist yet.
func (c *Client) UpsertFile(ctx context.Context, projectID string, record tree.FlatRecord) error {
	putPath := "/api/projects/" + url.PathEscape(projectID) + "/files/" + url.PathEscape(record.FileID)
	err := c.do(ctx, http.MethodPut, putPath, record, nil)
	if errors.Is(err, ErrNotFound) {
		postPath := "/api/projects/" + url.PathEscape(projectID) + "/files"
		return c.do(ctx, http.MethodPost, postPath, record, nil)
	}
	return err
}

// DeleteFile implements Store.
func (c *Client) DeleteFile(ctx context.Context, projectID, fileID string) error {
	path := "/api/projects/" + url.PathEscape(projectID) + "/files/" + url.PathEscape(fileID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do performs one JSON request and decodes the response into out when
// out is non-nil. HTTP status codes are mapped onto the package error
// taxonomy; a 401 additionally clears the stored credential so the next
// run starts signed out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Load(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		logging.Get("remote").Warn("credential rejected, signing out")
		_ = c.tokens.Clear()
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s %s: %w", method, path, ErrConflict)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%s %s: %w", method, path, ErrValidation)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}
