package tracker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kandev/archiver/internal/common/config"
	"github.com/kandev/archiver/internal/common/constants"
	"github.com/kandev/archiver/internal/common/tracing"
)

const (
	opListProjects   = "list projects"
	opGetLastUpdated = "get last updated"
	opArchiveProject = "archive project"

	maxErrorBody = 4096
)

// BasicAuthClient implements Client using an account email and API token
// sent as HTTP basic credentials.
type BasicAuthClient struct {
	baseURL        string
	authHeader     string
	archivedStatus string
	httpClient     *http.Client
}

// NewBasicAuthClient creates a tracker client from static configuration.
// The authorization header is built once here and reused for every call.
func NewBasicAuthClient(cfg config.TrackerConfig) *BasicAuthClient {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = constants.TrackerRequestTimeout
	}
	status := cfg.ArchivedStatus
	if status == "" {
		status = "archived"
	}
	return &BasicAuthClient{
		baseURL:        joinBaseURL(cfg.BaseURL, cfg.APIPath),
		authHeader:     BasicAuthHeader(cfg.Email, cfg.APIToken),
		archivedStatus: status,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// joinBaseURL appends apiPath to base. An empty apiPath means base already
// points at the API root.
func joinBaseURL(base, apiPath string) string {
	base = strings.TrimRight(base, "/")
	if apiPath = strings.Trim(apiPath, "/"); apiPath == "" {
		return base
	}
	return base + "/" + apiPath
}

// BasicAuthHeader returns the Authorization header value for email:token.
func BasicAuthHeader(email, token string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+token))
}

func (c *BasicAuthClient) ListProjects(ctx context.Context) ([]Project, error) {
	var result projectSearchResponse
	if err := c.do(ctx, opListProjects, http.MethodGet, "/project/search", nil, &result); err != nil {
		return nil, err
	}
	if result.Values == nil {
		return []Project{}, nil
	}
	return result.Values, nil
}

func (c *BasicAuthClient) GetLastUpdated(ctx context.Context, projectKey string) (*time.Time, error) {
	var result projectStatusResponse
	endpoint := fmt.Sprintf("/project/%s/statuses", url.PathEscape(projectKey))
	if err := c.do(ctx, opGetLastUpdated, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}
	return parseLastUpdated(result.LastUpdated), nil
}

func (c *BasicAuthClient) ArchiveProject(ctx context.Context, projectKey string) error {
	endpoint := fmt.Sprintf("/project/%s", url.PathEscape(projectKey))
	return c.do(ctx, opArchiveProject, http.MethodPut, endpoint, archiveRequest{Status: c.archivedStatus}, nil)
}

// do sends one request and decodes a JSON response into result when non-nil.
// Every failure is returned as a *TransportError.
func (c *BasicAuthClient) do(ctx context.Context, op, method, endpoint string, body, result interface{}) (err error) {
	ctx, span := tracing.TraceHTTPRequest(ctx, "tracker", method, endpoint)
	statusCode := 0
	defer func() {
		tracing.TraceHTTPResponse(span, statusCode, err)
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			return &TransportError{Op: op, Endpoint: endpoint, Err: fmt.Errorf("encode body: %w", mErr)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return &TransportError{Op: op, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	statusCode = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{Op: op, Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if err == io.EOF {
			return nil
		}
		return &TransportError{Op: op, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
