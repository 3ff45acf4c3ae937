package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Common constants
const (
	// Default timeout for HTTP requests
	DefaultTimeout = 60 * time.Second

	// Standard content types
	ContentTypeJSON = "application/json"
)

// Common error types
var (
	ErrNetworkError = errors.New("network error occurred")
	ErrNotFound     = errors.New("resource not found")
	ErrBadRequest   = errors.New("bad request")
	ErrServerError  = errors.New("server error")
)

// Page kinds returned by the server
const (
	PageRoot      = "root"
	PageDirectory = "directory"
	PageFile      = "file"
)

// Page is a resolved repository page
type Page struct {
	Kind         string       `json:"kind"`
	AccountID    string       `json:"account_id"`
	AccountName  string       `json:"account_name,omitempty"`
	RepositoryID string       `json:"repository_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Private      bool         `json:"private"`
	Path         string       `json:"path"`
	Heading      string       `json:"heading,omitempty"`
	Breadcrumbs  []Breadcrumb `json:"breadcrumbs"`
	Entries      []Entry      `json:"entries,omitempty"`
	File         *File        `json:"file,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Breadcrumb is one navigation step of a page
type Breadcrumb struct {
	Name string `json:"name"`
	Href string `json:"href,omitempty"`
}

// Entry is a child of a directory page
type Entry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Href      string    `json:"href"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// File describes the object shown by a file page
type File struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type,omitempty"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// errorBody is the JSON error shape returned by the server
type errorBody struct {
	Error  string `json:"error"`
	Digest string `json:"digest,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Client talks to a repository browser server
type Client struct {
	httpClient    *http.Client
	baseURL       string
	verbose       bool
	requestLogger func(string, ...interface{})
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithTimeout sets the timeout for HTTP requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithVerbose enables or disables verbose output
func WithVerbose(verbose bool) ClientOption {
	return func(c *Client) {
		c.verbose = verbose
	}
}

// WithLogger sets a custom logger function
func WithLogger(logger func(string, ...interface{})) ClientOption {
	return func(c *Client) {
		c.requestLogger = logger
	}
}

// NewClient creates a new client
func NewClient(baseURL string, options ...ClientOption) *Client {
	// Ensure baseURL ends with a slash
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: baseURL,
		verbose: false,
		requestLogger: func(format string, args ...interface{}) {
			// Default is to do nothing
		},
	}

	// Apply options
	for _, option := range options {
		option(client)
	}

	return client
}

// logRequest logs a request if verbose mode is enabled
func (c *Client) logRequest(format string, args ...interface{}) {
	if c.verbose {
		c.requestLogger(format, args...)
	}
}

// buildURL builds a full URL from the path
func (c *Client) buildURL(urlPath string) string {
	return c.baseURL + strings.TrimPrefix(urlPath, "/")
}

// Do performs an HTTP request and returns the response
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	// Add standard headers
	req.Header.Set("User-Agent", "Repo-Browser-Client/1.0")

	c.logRequest("Request: %s %s", req.Method, req.URL.String())

	// Send the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}

	// Check for errors
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()

		// Try to read error message
		body, _ := io.ReadAll(resp.Body)
		errMsg := strings.TrimSpace(string(body))
		var parsed errorBody
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
			errMsg = parsed.Error
			if parsed.Digest != "" {
				errMsg = parsed.Digest + ": " + errMsg
			}
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, errMsg)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s", ErrBadRequest, errMsg)
		default:
			return nil, fmt.Errorf("%w: %s (status code: %d)", ErrServerError, errMsg, resp.StatusCode)
		}
	}

	return resp, nil
}

// Get performs a GET request and returns the response body
func (c *Client) Get(ctx context.Context, urlPath string) ([]byte, error) {
	url := c.buildURL(urlPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", ContentTypeJSON)

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetRepositoryPage fetches the page of a repository path.
// A missing repository or object returns an error wrapping ErrNotFound.
func (c *Client) GetRepositoryPage(ctx context.Context, account, repository string, path ...string) (*Page, error) {
	segments := make([]string, 0, len(path)+2)
	for _, s := range append([]string{account, repository}, path...) {
		segments = append(segments, url.PathEscape(s))
	}

	data, err := c.Get(ctx, strings.Join(segments, "/"))
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}
	return &page, nil
}

// Health checks that the server and its database are reachable
func (c *Client) Health(ctx context.Context) error {
	data, err := c.Get(ctx, "healthz")
	if err != nil {
		return err
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("failed to parse health response: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrServerError, body.Status)
	}
	return nil
}
