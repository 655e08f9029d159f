package canvas

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

	"github.com/noah-isme/canvas-helper-api/internal/models"
)

const (
	favoriteCoursesPath = "/api/v1/users/self/favorites/courses"
	activeCoursesPath   = "/api/v1/courses?enrollment_state=active&per_page=50"
	assignmentsPathFmt  = "/api/v1/courses/%d/assignments?include[]=submission&per_page=50"

	maxErrorBody     = 4 << 10
	jsonHijackPrefix = "while(1);"
)

// Credentials carries the caller's Canvas session, forwarded verbatim.
type Credentials struct {
	Cookie        string
	Authorization string
}

// APIError is returned for any non-2xx response from Canvas.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canvas: %s %s returned HTTP %d", e.Method, e.Path, e.StatusCode)
}

// IsUnauthorized reports whether Canvas rejected the session.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// Client talks to a single Canvas instance on behalf of one session.
type Client struct {
	baseURL     string
	credentials Credentials
	httpClient  *http.Client
}

// NewClient builds a client for the Canvas origin (scheme://host).
func NewClient(baseURL string, credentials Credentials, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid canvas base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("canvas base url scheme must be http or https")
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("canvas base url must include a host")
	}

	c := &Client{
		baseURL:     parsed.Scheme + "://" + parsed.Host,
		credentials: credentials,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// FavoriteCourses lists the courses the user starred.
func (c *Client) FavoriteCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.get(ctx, favoriteCoursesPath, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ActiveCourses lists every course with an active enrollment.
func (c *Client) ActiveCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.get(ctx, activeCoursesPath, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// CourseAssignments lists a course's assignments including the user's submission.
func (c *Client) CourseAssignments(ctx context.Context, courseID int64) ([]models.RawAssignment, error) {
	var assignments []models.RawAssignment
	if err := c.get(ctx, fmt.Sprintf(assignmentsPathFmt, courseID), &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.credentials.Cookie != "" {
		req.Header.Set("Cookie", c.credentials.Cookie)
	}
	if c.credentials.Authorization != "" {
		req.Header.Set("Authorization", c.credentials.Authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("canvas: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     http.MethodGet,
			Path:       path,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("canvas: read %s: %w", path, err)
	}

	// Cookie-authenticated responses may carry an anti-hijacking prefix.
	body = bytes.TrimPrefix(bytes.TrimSpace(body), []byte(jsonHijackPrefix))

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("canvas: decode %s: %w", path, err)
	}

	return nil
}
