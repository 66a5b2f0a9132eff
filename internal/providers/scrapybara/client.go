package scrapybara

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/opencua/gateway/internal/infrastructure/logging"
	"github.com/opencua/gateway/internal/infrastructure/monitoring"
	"github.com/opencua/gateway/internal/shared/errdefs"
)

// Config defines provider client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the Scrapybara HTTP API.
type Client struct {
	http    *resty.Client
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// New creates a provider client. Retries are deliberately disabled:
// transient provider failures surface directly to the caller.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "cua-gateway/1.0")

	return &Client{
		http:   httpClient,
		logger: logging.NewNop(),
	}
}

// WithLogger attaches a logger to the client.
func (c *Client) WithLogger(logger *logging.Logger) *Client {
	c.logger = logger
	return c
}

// WithMetrics attaches provider-call metrics to the client.
func (c *Client) WithMetrics(metrics *monitoring.Metrics) *Client {
	c.metrics = metrics
	return c
}

// Start provisions a new remote instance of the requested type.
func (c *Client) Start(ctx context.Context, instanceType InstanceType) (Instance, error) {
	var out startResponse
	err := c.do(ctx, "start", resty.MethodPost, "/start", startRequest{InstanceType: instanceType}, &out)
	if err != nil {
		return nil, &errdefs.ProvisioningError{Err: err}
	}
	if out.InstanceID == "" {
		return nil, &errdefs.ProvisioningError{Err: fmt.Errorf("provider returned empty instance id")}
	}

	c.logger.Info("Provisioned instance",
		zap.String("instance_id", out.InstanceID),
		zap.String("instance_type", string(instanceType)),
	)

	return &remoteInstance{client: c, id: out.InstanceID}, nil
}

// do executes one provider call and decodes the response into out.
// Non-2xx responses and transport failures become *errdefs.ProviderError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var timer *monitoring.Timer
	if c.metrics != nil {
		timer = monitoring.NewTimer(c.metrics, op)
	}

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	var provErr errorResponse
	req.SetError(&provErr)

	resp, err := req.Execute(method, path)
	if err != nil {
		if timer != nil {
			timer.Stop("error")
		}
		return &errdefs.ProviderError{Op: op, Message: err.Error()}
	}

	if resp.IsError() {
		if timer != nil {
			timer.Stop("error")
		}
		msg := provErr.Error
		if msg == "" {
			msg = resp.String()
		}
		c.logger.Warn("Provider call failed",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", msg),
		)
		return &errdefs.ProviderError{Op: op, Status: resp.StatusCode(), Message: msg}
	}

	if timer != nil {
		timer.Stop("success")
	}
	return nil
}
