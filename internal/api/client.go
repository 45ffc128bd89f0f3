// Package api talks to the SuperTask REST API.
//
// Every call goes through Client.Do, which injects the bearer token, retries
// once after refreshing the access token when the server answers 401, and
// normalises error bodies into *Error.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Joseda-hg/supertask/internal/session"
)

const RefreshPath = "/auth/token/refresh/"

type Client struct {
	baseURL string
	tokens  *session.TokenStore
	http    *http.Client
	timeout time.Duration
	log     logrus.FieldLogger

	Auth       *AuthService
	Tasks      *TaskService
	Categories *CategoryService
	Dashboard  *DashboardService
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// WithTimeout bounds each HTTP round trip. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func New(baseURL string, tokens *session.TokenStore, opts ...Option) *Client {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{},
		log:     quiet,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		httpClient := *c.http
		httpClient.Timeout = c.timeout
		c.http = &httpClient
	}

	c.Auth = &AuthService{client: c}
	c.Tasks = &TaskService{client: c}
	c.Categories = &CategoryService{client: c}
	c.Dashboard = &DashboardService{client: c}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Tokens() *session.TokenStore {
	return c.tokens
}

// Do performs one logical API call. body is encoded as JSON when non-nil and
// out receives the decoded response when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = encoded
	}

	token, err := c.tokens.Get(session.AccessToken)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	logger := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	resp, err := c.send(ctx, method, path, payload, token, requestID)
	if err != nil {
		logger.WithError(err).Warn("api request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		drain(resp)
		logger.Debug("access token rejected, refreshing")

		newToken, err := c.refresh(ctx, requestID)
		if err != nil {
			logger.WithError(err).Warn("token refresh failed, clearing session")
			if clearErr := c.tokens.Clear(); clearErr != nil {
				logger.WithError(clearErr).Error("clear tokens")
				return fmt.Errorf("%w: %v", ErrSessionExpired, clearErr)
			}
			return ErrSessionExpired
		}

		retry, err := c.send(ctx, method, path, payload, newToken, requestID)
		if err != nil {
			logger.WithError(err).Warn("api retry failed")
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		return c.handle(retry, out, logger)
	}

	return c.handle(resp, out, logger)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token, requestID string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.http.Do(req)
}

func (c *Client) handle(resp *http.Response, out any, logger logrus.FieldLogger) error {
	defer resp.Body.Close()
	logger = logger.WithField("status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		logger.WithField("detail", apiErr.Detail).Debug("api error response")
		return apiErr
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		drain(resp)
		logger.Debug("api request done")
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	logger.Debug("api request done")
	return nil
}

func (c *Client) refresh(ctx context.Context, requestID string) (string, error) {
	refreshToken, err := c.tokens.Get(session.RefreshToken)
	if err != nil {
		return "", err
	}
	if refreshToken == "" {
		return "", errNoRefreshToken
	}

	payload, err := sonic.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}

	resp, err := c.send(ctx, http.MethodPost, RefreshPath, payload, "", requestID)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp)
		return "", fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}
	var body struct {
		Access string `json:"access"`
	}
	if err := sonic.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if body.Access == "" {
		return "", fmt.Errorf("refresh response has no access token")
	}

	if err := c.tokens.SetAccess(body.Access); err != nil {
		return "", err
	}
	return body.Access, nil
}

func decodeError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var fields map[string]any
	if err := sonic.Unmarshal(data, &fields); err != nil {
		return apiErr
	}

	for _, key := range []string{"detail", "error"} {
		if message := messageField(fields[key]); message != "" {
			apiErr.Detail = message
			return apiErr
		}
	}
	return apiErr
}

func messageField(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
