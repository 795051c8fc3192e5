// Package userclient talks to the users service over HTTP.
package userclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/gigmile/payments-microservice/internal/infrastructure/discovery"
	"go.uber.org/zap"
)

// maxBodySize caps how much of an upstream response body is read.
const maxBodySize = 64 << 10

type Config struct {
	// ServiceName is the logical name the users service registers under.
	ServiceName string
	// AccountAPIURL is the base URL of the account lookup API.
	AccountAPIURL string
	Timeout       time.Duration
}

// Client implements domain.UserDirectory. One Client, and with it one
// connection pool, is shared by every request.
type Client struct {
	cfg        Config
	resolver   discovery.Resolver
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, resolver discovery.Resolver, logger *zap.Logger) *Client {
	return &Client{
		cfg:      cfg,
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

var _ domain.UserDirectory = (*Client)(nil)

// UserExists asks the users service whether userID is known. A 404 means the
// user does not exist; any other non-2xx status is an upstream failure.
func (c *Client) UserExists(ctx context.Context, userID string) (bool, error) {
	base, err := c.resolver.Resolve(ctx, c.cfg.ServiceName)
	if err != nil {
		c.logger.Error("users service not available",
			zap.Error(err),
			zap.String("service", c.cfg.ServiceName),
		)
		return false, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}

	endpoint := base + "/user?" + url.Values{"userId": {userID}}.Encode()

	status, _, err := c.get(ctx, endpoint)
	if err != nil {
		return false, err
	}

	switch {
	case status >= 200 && status < 300:
		return true, nil
	case status == http.StatusNotFound:
		c.logger.Info("user not found upstream", zap.String("user_id", userID))
		return false, nil
	default:
		c.logger.Error("users service returned non-2xx status",
			zap.String("user_id", userID),
			zap.Int("status_code", status),
		)
		return false, fmt.Errorf("%w: user check returned status %d", domain.ErrUpstreamFailure, status)
	}
}

// ResolveUserID returns the user id the account API reports for account.
func (c *Client) ResolveUserID(ctx context.Context, account string) (string, error) {
	endpoint := strings.TrimRight(c.cfg.AccountAPIURL, "/") + "/users?" + url.Values{"account": {account}}.Encode()

	status, body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	if status < 200 || status >= 300 {
		c.logger.Error("account lookup returned non-2xx status",
			zap.String("account", account),
			zap.Int("status_code", status),
			zap.String("response", string(body)),
		)
		return "", fmt.Errorf("%w: account lookup returned status %d", domain.ErrUpstreamFailure, status)
	}

	return strings.TrimSpace(string(body)), nil
}

func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("upstream request failed", zap.Error(err), zap.String("url", endpoint))
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstreamFailure, err)
	}

	c.logger.Debug("upstream request completed",
		zap.String("url", endpoint),
		zap.Int("status_code", resp.StatusCode),
	)

	return resp.StatusCode, body, nil
}

// Close releases idle upstream connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
