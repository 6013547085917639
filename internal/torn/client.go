// Package torn is the game-API client: per-target analysis lookups and
// faction member expansion, with rate limiting, retries, and typed
// errors for the API's error envelope.
package torn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/thc-edge/vetbot/internal/report"
	"github.com/thc-edge/vetbot/internal/retry"
)

// Defaults for the client options.
const (
	DefaultBaseURL         = "https://api.torn.com/v2"
	DefaultTimeout         = 30 * time.Second
	DefaultRateLimitCalls  = 80
	DefaultRateLimitPeriod = time.Minute
	DefaultMaxAttempts     = 3
)

// Endpoint templates, kept verbatim from the API's v2 selections.
const (
	endpointPlayerStats    = "/user/%s/personalstats,basic?cat=all&stat="
	endpointFactionMembers = "/faction/%s/members?striptags=true"
)

// API error codes mapped to sentinel errors.
const (
	errCodeInvalidKey              = 2
	errCodeInsufficientPermissions = 7
)

var (
	// ErrInvalidKey means the supplied API key was rejected.
	ErrInvalidKey = errors.New("invalid API key")

	// ErrInsufficientPermissions means the key lacks access to the
	// requested selection, e.g. a limited key reading faction members.
	ErrInsufficientPermissions = errors.New("insufficient API key permissions")
)

// APIError is the decoded game-API error envelope. The API reports it
// inside an HTTP 200 response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// Unwrap maps well-known codes onto sentinel errors so callers can use
// errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case errCodeInvalidKey:
		return ErrInvalidKey
	case errCodeInsufficientPermissions:
		return ErrInsufficientPermissions
	}
	return nil
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// Options configures the game-API client.
type Options struct {
	// BaseURL is the API base, DefaultBaseURL when empty.
	BaseURL string

	// Timeout bounds a single call when the context has no deadline.
	Timeout time.Duration

	// RateLimitCalls and RateLimitPeriod size the shared token bucket
	// guarding all outbound calls.
	RateLimitCalls  int
	RateLimitPeriod time.Duration
}

// Client calls the game API. All methods take the caller's credential
// per call; the client itself holds no key.
type Client struct {
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	policy  retry.Policy
}

// NewClient creates a game-API client with the given options.
func NewClient(opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	calls := opts.RateLimitCalls
	if calls <= 0 {
		calls = DefaultRateLimitCalls
	}
	period := opts.RateLimitPeriod
	if period <= 0 {
		period = DefaultRateLimitPeriod
	}

	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(float64(calls)/period.Seconds()), calls),
		policy: retry.Policy{
			MaxAttempts: DefaultMaxAttempts,
			Backoff:     retry.ExponentialBackoff(time.Second, 1.5),
			Retryable:   transient,
		},
	}, nil
}

// Analyze fetches and condenses one member's profile and personal stats.
func (c *Client) Analyze(ctx context.Context, credential, memberID string) (*report.Analysis, error) {
	var resp profileResponse
	endpoint := fmt.Sprintf(endpointPlayerStats, memberID)
	if err := c.get(ctx, credential, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch member %s: %w", memberID, err)
	}
	if resp.Profile.Name == "" && resp.Profile.Level == 0 {
		return nil, fmt.Errorf("no profile data for member %s", memberID)
	}
	return newAnalysis(memberID, &resp), nil
}

// FactionMembers returns the member ids of a faction.
func (c *Client) FactionMembers(ctx context.Context, credential, factionID string) ([]string, error) {
	var resp factionMembersResponse
	endpoint := fmt.Sprintf(endpointFactionMembers, factionID)
	if err := c.get(ctx, credential, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch faction %s members: %w", factionID, err)
	}
	ids := make([]string, 0, len(resp.Members))
	for _, m := range resp.Members {
		ids = append(ids, strconv.FormatInt(m.ID, 10))
	}
	return ids, nil
}

// get performs one rate-limited, retried GET and decodes the response.
func (c *Client) get(ctx context.Context, credential, endpoint string, out interface{}) error {
	return retry.Do(ctx, c.policy, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		agent := fiber.Get(c.baseURL + endpoint)
		if deadline, ok := ctx.Deadline(); ok {
			agent.Timeout(time.Until(deadline))
		} else {
			agent.Timeout(c.timeout)
		}
		agent.Set(fiber.HeaderAuthorization, "ApiKey "+credential)
		agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

		statusCode, body, errs := agent.Bytes()
		if len(errs) > 0 {
			return fmt.Errorf("error sending request: %w", errs[0])
		}

		// The API reports key and permission problems inside a 200
		// response, so check the envelope before the status code.
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
			return envelope.Error
		}
		if statusCode < 200 || statusCode >= 300 {
			return &fiber.Error{
				Code:    statusCode,
				Message: string(body),
			}
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
		return nil
	})
}

// transient reports whether an error is worth retrying: transport
// failures and 429/5xx statuses. Envelope errors are permanent.
func transient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code == fiber.StatusTooManyRequests || fiberErr.Code >= fiber.StatusInternalServerError
	}
	return true
}
