// Package session - Handles all HTTP interaction with the component registry and the incident database
package session

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ortelius/griffon/config"
	"github.com/ortelius/griffon/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service identifies which remote service a client is bound to
type Service string

const (
	// ServiceRegistry is the primary component registry
	ServiceRegistry Service = "registry"
	// ServiceCommunity is the community component registry
	ServiceCommunity Service = "community"
	// ServiceIncidents is the incident database
	ServiceIncidents Service = "incidents"
)

// ErrNotConfigured is returned when a service has no base URL
var ErrNotConfigured = errors.New("service not configured")

// HTTPError is a non-2xx response from a remote service
type HTTPError struct {
	Service    Service
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s returned status %d for %s: %s", e.Service, e.StatusCode, e.URL, e.Body)
}

// Unwrap lets errors.Is(err, model.ErrNotFound) see 404s
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return model.ErrNotFound
	}
	return nil
}

// Client is an HTTP session bound to a single remote service
type Client struct {
	service Service
	baseURL *url.URL
	token   string
	retries int
	backoff time.Duration
	http    *http.Client
	logger  *zap.Logger
}

// InitLogger sets up the Zap Logger to log to stderr in a human readable format
func InitLogger(level string) *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	prodConfig.OutputPaths = []string{"stderr"}
	prodConfig.Sampling = nil

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	prodConfig.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := prodConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func transport(insecure bool) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecure, // #nosec G402
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 90 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewClient opens a session against baseURL
func NewClient(service Service, baseURL, token string, cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%s: %w", service, ErrNotConfigured)
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid base URL %q: %w", service, baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid base URL %q", service, baseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		service: service,
		baseURL: u,
		token:   token,
		retries: cfg.Retries,
		backoff: 500 * time.Millisecond,
		http:    &http.Client{Transport: transport(cfg.Insecure)},
		logger:  logger.With(zap.String("service", string(service))),
	}, nil
}

// NewRegistrySession opens a session against the primary component registry
func NewRegistrySession(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	return NewClient(ServiceRegistry, cfg.RegistryURL, cfg.RegistryToken, cfg, logger)
}

// NewCommunitySession opens a session against the community component registry
func NewCommunitySession(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	return NewClient(ServiceCommunity, cfg.CommunityURL, cfg.RegistryToken, cfg, logger)
}

// NewIncidentSession opens a session against the incident database
func NewIncidentSession(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	return NewClient(ServiceIncidents, cfg.IncidentURL, cfg.IncidentToken, cfg, logger)
}

// Service returns the service the client is bound to
func (c *Client) Service() Service {
	return c.service
}

// URL resolves a service-relative path, used for links in output records
func (c *Client) URL(path string) string {
	return c.baseURL.String() + path
}

// maxRetryElapsed bounds the total time spent retrying a single request
const maxRetryElapsed = 2 * time.Minute

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// GetJSON issues a GET for path with the filters as query string and decodes the body into out.
// Throttling and gateway errors are retried with exponential backoff up to the configured count.
func (c *Client) GetJSON(ctx context.Context, path string, filters model.Filters, out any) error {
	reqURL := c.URL(path)
	if q := filters.Values().Encode(); q != "" {
		reqURL += "?" + q
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.backoff
	bo.MaxInterval = 20 * c.backoff
	bo.MaxElapsedTime = maxRetryElapsed

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			// connectivity failures are surfaced, not retried
			return backoff.Permanent(fmt.Errorf("HTTP request failed: %w", err))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response: %w", err))
		}
		c.logger.Debug("request", zap.String("url", reqURL), zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			httpErr := &HTTPError{Service: c.service, URL: reqURL, StatusCode: resp.StatusCode, Body: excerpt(body)}
			if retryable(resp.StatusCode) {
				return httpErr
			}
			return backoff.Permanent(httpErr)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse response from %s: %w", reqURL, err))
		}
		return nil
	}

	// WithMaxRetries treats 0 as unlimited
	var policy backoff.BackOff = &backoff.StopBackOff{}
	if c.retries > 0 {
		policy = backoff.WithMaxRetries(bo, uint64(c.retries))
	}
	policy = backoff.WithContext(policy, ctx)
	return backoff.RetryNotify(attempt, policy, func(err error, wait time.Duration) {
		c.logger.Warn("retrying request", zap.String("url", reqURL), zap.Duration("wait", wait), zap.Error(err))
	})
}

func excerpt(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
