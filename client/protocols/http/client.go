package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/Remi1095/chronicle/client/config"
	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/utils"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the id generated for every request.
const RequestIDHeader = "X-Request-ID"

const jsonMediaType = "application/json"

// Client issues JSON requests against the chronicle API. It holds no
// mutable state and may be shared between goroutines.
type Client struct {
	client  *http.Client
	logger  zerolog.Logger
	baseURL string
}

// NewClient creates a new HTTP client
func NewClient(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: cfg.Server.Timeout,
	}

	return &Client{
		client:  client,
		logger:  logger.With().Str("component", "http").Logger(),
		baseURL: cfg.BaseURL(),
	}, nil
}

// BaseURL returns the URL request paths are appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request and decodes the JSON response into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return doJSON[T](ctx, c, http.MethodGet, path, nil)
}

// Post sends body as JSON and decodes the JSON response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return doJSON[T](ctx, c, http.MethodPost, path, body)
}

// Put sends body as JSON and decodes the JSON response into T.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return doJSON[T](ctx, c, http.MethodPut, path, body)
}

// Delete issues a DELETE request. The response body is never read: a
// failure is reported with the reason phrase of its status.
func (c *Client) Delete(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return &APIError{
			Status:  resp.StatusCode,
			Message: http.StatusText(resp.StatusCode),
		}
	}

	return nil
}

func doJSON[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var result T

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return result, readAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, errors.Wrap(ErrDecodeFailed, err, "failed to decode response").
			AddContext("method", method).
			AddContext("path", path)
	}

	return result, nil
}

// do sends the request. Transport failures are returned unchanged so that
// callers can match context cancellation and network errors.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(ErrEncodeFailed, err, "failed to marshal request").
				AddContext("method", method).
				AddContext("path", path)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(ErrRequestBuildFailed, err, "failed to create request").
			AddContext("method", method).
			AddContext("path", path)
	}
	if body != nil {
		req.Header.Set("Content-Type", jsonMediaType)
	}
	req.Header.Set("Accept", jsonMediaType)

	requestID := utils.NewRequestID()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(req)

	event := c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Dur("duration", time.Since(start))
	if err != nil {
		event.Err(err).Msg("Request failed")
		return nil, err
	}
	event.Int("status", resp.StatusCode).Msg("Request completed")

	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == jsonMediaType
}
