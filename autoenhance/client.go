// Package autoenhance is a client for the Autoenhance v2 image enhancement API.
//
// Images are registered and uploaded with UploadImage, then processed
// asynchronously by the service. CheckImageStatus reads the current state once;
// WaitForImage polls until the image is processed or the poll budget runs out.
// Results are fetched with PreviewImage, WebOptimisedImage and
// FullResolutionImage.
//
// Non-200 responses are returned as data (ImageResult.Failure, UploadResult,
// ReportResult) rather than errors. Errors are reserved for transport failures,
// invalid input and exhausted polling.
//
// A Client is safe for concurrent use.
package autoenhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/instant-hdr/autoenhance-go/internal/logging"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.autoenhance.ai/v2/"

const apiKeyHeader = "x-api-key"

var (
	// ErrMissingAPIKey is returned by Config.Validate when no key is set.
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrMalformedResponse is returned when a 200 response lacks required fields.
	ErrMalformedResponse = errors.New("malformed response")
)

const (
	opUploadImage       = "autoenhance.upload_image"
	opCheckImageStatus  = "autoenhance.check_image_status"
	opCheckOrderStatus  = "autoenhance.check_order_status"
	opPreviewImage      = "autoenhance.preview_image"
	opWebOptimisedImage = "autoenhance.web_optimised_image"
	opFullResolution    = "autoenhance.full_resolution_image"
	opEditEnhancement   = "autoenhance.edit_enhancement"
	opReportEnhancement = "autoenhance.report_enhancement"
	opWaitForImage      = "autoenhance.wait_for_image"
)

const defaultRequestTimeout = 30 * time.Second

// Config configures a Client. Only APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string

	// HTTPClient is the base client requests are sent through. The retrying
	// transport wraps it; presigned uploads use it directly.
	HTTPClient *http.Client
	Logger     *zap.Logger

	Retry RetryOptions
	Poll  PollOptions
}

// Validate reports configuration errors before any request is made.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base url %q: scheme and host are required", c.BaseURL)
		}
	}
	if c.Retry.Max < 0 {
		return fmt.Errorf("retry max must not be negative, got %d", c.Retry.Max)
	}
	if c.Poll.Interval < 0 || c.Poll.MaxAttempts < 0 || c.Poll.Timeout < 0 {
		return errors.New("poll options must not be negative")
	}
	return nil
}

// Client talks to the Autoenhance API.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	uploadClient *http.Client
	logger       *zap.Logger
	poll         PollOptions
}

// NewClient validates cfg and builds a Client. Zero-valued retry and poll
// options are replaced with their defaults.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("autoenhance")

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: defaultRequestTimeout}
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		httpClient:   newRetryClient(base, cfg.Retry.withDefaults(), logger),
		uploadClient: base,
		logger:       logger,
		poll:         cfg.Poll.withDefaults(),
	}, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// imagePath returns image/{id} with the id escaped as a single path
// segment, followed by any action segments.
func imagePath(imageID string, action ...string) string {
	return strings.Join(append([]string{"image", url.PathEscape(imageID)}, action...), "/")
}

func orderPath(orderID string) string {
	return "order/" + url.PathEscape(orderID)
}

type request struct {
	method string
	path   string
	body   interface{}
	params url.Values
}

// send builds an authenticated request for r and executes it through the
// retrying transport. Non-2xx responses are not errors; the caller owns
// resp.Body.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	endpointURL := c.baseURL + strings.TrimPrefix(r.path, "/")
	if len(r.params) > 0 {
		endpointURL += "?" + r.params.Encode()
	}

	var body io.Reader
	if r.body != nil {
		jsonData, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpointURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(apiKeyHeader, c.apiKey)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending request", zap.String("method", r.method), zap.String("path", r.path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// do sends r and reads the whole body. Transport failures are wrapped in a
// logging.OperationError tagged with op and resourceID.
func (c *Client) do(ctx context.Context, op, resourceID string, r request) (int, []byte, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		wrapped := logging.NewOperationError(op, resourceID, err)
		logging.WithOperation(c.logger, op, resourceID).Error("request failed", zap.Error(err))
		return 0, nil, wrapped
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, logging.NewOperationError(op, resourceID, fmt.Errorf("failed to read response body: %w", err))
	}
	return resp.StatusCode, data, nil
}
