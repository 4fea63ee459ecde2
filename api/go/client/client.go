package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	v1 "github.com/furisto/taskview/api/go/v1"
)

//go:generate mockgen -destination=mock_client.go -package=client . TaskClient
type TaskClient interface {
	GetTask(ctx context.Context, taskID string) (*v1.TaskResponse, error)
	ListFiles(ctx context.Context, taskID string, mode v1.ViewMode) (*v1.FilesResponse, error)
	ListMessages(ctx context.Context, taskID string) (*v1.MessagesResponse, error)
	ContinueTask(ctx context.Context, taskID string, message string) error
}

type ClientOption func(*Client)

func WithAuthToken(token string) ClientOption {
	return func(c *Client) {
		c.authToken = token
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

var _ TaskClient = (*Client)(nil)

func NewClient(endpoint EndpointContext, options ...ClientOption) (*Client, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimRight(endpoint.Address, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) GetTask(ctx context.Context, taskID string) (*v1.TaskResponse, error) {
	var resp v1.TaskResponse
	if err := c.do(ctx, http.MethodGet, taskPath(taskID, ""), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListFiles(ctx context.Context, taskID string, mode v1.ViewMode) (*v1.FilesResponse, error) {
	query := url.Values{}
	query.Set("mode", string(mode))

	var resp v1.FilesResponse
	if err := c.do(ctx, http.MethodGet, taskPath(taskID, "files"), query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListMessages(ctx context.Context, taskID string) (*v1.MessagesResponse, error) {
	var resp v1.MessagesResponse
	if err := c.do(ctx, http.MethodGet, taskPath(taskID, "messages"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ContinueTask posts message to the task. The reply body is optional; when
// present, success:false is reported as an APIError.
func (c *Client) ContinueTask(ctx context.Context, taskID string, message string) error {
	path := taskPath(taskID, "continue")
	data, err := c.roundTrip(ctx, http.MethodPost, path, nil, &v1.ContinueRequest{Message: message})
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var resp v1.ContinueResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return &TransportError{Op: http.MethodPost + " " + path, Err: fmt.Errorf("invalid response body: %w", err)}
	}
	if resp.Success != nil && !*resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "task did not accept the message"
		}
		return &APIError{StatusCode: http.StatusOK, Message: msg}
	}
	return nil
}

func taskPath(taskID, resource string) string {
	p := "/api/tasks/" + url.PathEscape(taskID)
	if resource != "" {
		p += "/" + resource
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	data, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return &TransportError{Op: method + " " + path, Err: io.ErrUnexpectedEOF}
		}
		return &TransportError{Op: method + " " + path, Err: fmt.Errorf("invalid response body: %w", err)}
	}

	return nil
}

// roundTrip sends the request and returns the body of a 2xx reply.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	return data, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp v1.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		slog.Debug("failed to decode error response", "status", resp.StatusCode, "error", err)
	}
	apiErr.Message = errResp.Error

	return apiErr
}
