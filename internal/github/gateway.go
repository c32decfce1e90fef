// Package github provides a rate-limit aware gateway to the GitHub REST API
// and the release-note queries built on top of it.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/internal/metrics"
	"golang.org/x/oauth2"
)

// RateLimitRemainingWarningThreshold is the remaining-request count at or below
// which the rate-limit line is logged as a warning.
const RateLimitRemainingWarningThreshold = 5

const (
	contentType = "application/vnd.github+json"

	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
	headerRateLimitResource  = "X-RateLimit-Resource"
	headerLink               = "Link"
)

// RateLimit is the quota snapshot reported by a single response.
type RateLimit struct {
	Limit     int
	Remaining int
	// ResetAt is in UTC epoch seconds.
	ResetAt  int64
	Resource string
}

// ResetTime returns the UTC time at which the quota resets.
func (r RateLimit) ResetTime() time.Time {
	return time.Unix(r.ResetAt, 0).UTC()
}

// TimeUntilReset returns the duration between now and the reset time. It is
// negative when the reset time has already passed.
func (r RateLimit) TimeUntilReset(now time.Time) time.Duration {
	return r.ResetTime().Sub(now)
}

// Exceeded reports whether no requests remain in the current window.
func (r RateLimit) Exceeded() bool {
	return r.Remaining == 0
}

// Response is the result of one API call.
type Response struct {
	StatusCode int
	RequestURI string
	Body       string
	// Link is the raw web-linking header, empty when absent.
	Link      string
	RateLimit RateLimit
}

// NextPageURL returns the continuation cursor carried by the response.
func (r *Response) NextPageURL() (string, bool) {
	return NextPageURL(r.Link)
}

// Getter is the read-only part of the gateway.
type Getter interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// API is the full gateway contract used by the managers.
type API interface {
	Getter
	Post(ctx context.Context, url string, body any) (*Response, error)
	Patch(ctx context.Context, url string, body any) (*Response, error)
}

// Gateway issues requests and refuses to hand out responses made under an exhausted quota.
type Gateway struct {
	httpClient *http.Client
	now        func() time.Time
}

// Ensure Gateway implements API
var _ API = (*Gateway)(nil)

// NewGateway creates a gateway whose requests carry the token as a bearer credential.
func NewGateway(ctx context.Context, token string) *Gateway {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return NewGatewayWithClient(oauth2.NewClient(ctx, ts))
}

// NewGatewayWithClient creates a gateway around an already authenticated HTTP client.
func NewGatewayWithClient(httpClient *http.Client) *Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Gateway{
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Get makes a GET request to any GitHub REST API endpoint.
//
// When the response reports zero remaining requests, a *RateLimitExceededError
// is returned together with the response. Callers must treat the error as fatal.
func (g *Gateway) Get(ctx context.Context, url string) (*Response, error) {
	logging.Debug("GET", "url", url)
	return g.do(ctx, http.MethodGet, url, nil)
}

// Post makes a POST request with body encoded as JSON.
func (g *Gateway) Post(ctx context.Context, url string, body any) (*Response, error) {
	logging.Debug("POST", "url", url)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode POST body for %s: %w", url, err)
	}
	return g.do(ctx, http.MethodPost, url, payload)
}

// Patch makes a PATCH request with body encoded as JSON.
func (g *Gateway) Patch(ctx context.Context, url string, body any) (*Response, error) {
	logging.Debug("PATCH", "url", url)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode PATCH body for %s: %w", url, err)
	}
	return g.do(ctx, http.MethodPatch, url, payload)
}

func (g *Gateway) do(ctx context.Context, method, url string, payload []byte) (*Response, error) {
	response, err := g.send(ctx, method, url, payload)
	if err != nil {
		return nil, err
	}
	// The request has already happened; the quota check only decides whether
	// the caller may go on.
	return response, g.checkRateLimit(response)
}

func (g *Gateway) send(ctx context.Context, method, url string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request for %s: %w", method, url, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)

	start := time.Now()
	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(method, 0, time.Since(start))
		return nil, fmt.Errorf("%s %s failed: %w", method, url, err)
	}
	defer httpResp.Body.Close()

	content, err := io.ReadAll(httpResp.Body)
	metrics.ObserveRequest(method, httpResp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response body: %w", method, url, err)
	}

	rateLimit, err := parseRateLimit(httpResp.Header)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	link := httpResp.Header.Get(headerLink)
	logging.Debug("github 'Link' header", "link", link)

	requestURI := url
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		requestURI = httpResp.Request.URL.String()
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		RequestURI: requestURI,
		Body:       string(content),
		Link:       link,
		RateLimit:  rateLimit,
	}, nil
}

// checkRateLimit logs the quota state of response and fails when it is exhausted.
func (g *Gateway) checkRateLimit(response *Response) error {
	now := g.now().UTC().Truncate(time.Second)
	rl := response.RateLimit
	untilReset := rl.TimeUntilReset(now)

	logging.Log(rateLimitLogLevel(untilReset, rl.Remaining), "github api rate info",
		"limit", rl.Limit,
		"remaining", rl.Remaining,
		"current_time", now.Format(time.RFC3339),
		"reset_at", rl.ResetTime().Format(time.RFC3339),
		"time_until_reset", humanTimeUntilReset(untilReset),
		"resource", rl.Resource)

	if rl.Exceeded() {
		return &RateLimitExceededError{
			Resource:       rl.Resource,
			ResetAt:        rl.ResetTime(),
			TimeUntilReset: untilReset,
		}
	}
	return nil
}

func rateLimitLogLevel(untilReset time.Duration, remaining int) slog.Level {
	if untilReset < 0 || remaining <= RateLimitRemainingWarningThreshold {
		return slog.LevelWarn
	}
	return slog.LevelDebug
}

func humanTimeUntilReset(untilReset time.Duration) string {
	if untilReset < 0 {
		return fmt.Sprintf("time until reset is negative! (%s)", untilReset)
	}
	return untilReset.Round(time.Second).String()
}

func parseRateLimit(header http.Header) (RateLimit, error) {
	limit, err := intHeader(header, headerRateLimitLimit)
	if err != nil {
		return RateLimit{}, err
	}
	remaining, err := intHeader(header, headerRateLimitRemaining)
	if err != nil {
		return RateLimit{}, err
	}
	if remaining < 0 {
		return RateLimit{}, &InvalidHeaderError{Header: headerRateLimitRemaining, Value: header.Get(headerRateLimitRemaining)}
	}
	resetAt, err := intHeader(header, headerRateLimitReset)
	if err != nil {
		return RateLimit{}, err
	}
	resource := header.Get(headerRateLimitResource)
	if resource == "" {
		return RateLimit{}, &MissingHeaderError{Header: headerRateLimitResource}
	}

	return RateLimit{
		Limit:     int(limit),
		Remaining: int(remaining),
		ResetAt:   resetAt,
		Resource:  resource,
	}, nil
}

func intHeader(header http.Header, name string) (int64, error) {
	value := header.Get(name)
	if value == "" {
		return 0, &MissingHeaderError{Header: name}
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &InvalidHeaderError{Header: name, Value: value, Err: err}
	}
	return parsed, nil
}
