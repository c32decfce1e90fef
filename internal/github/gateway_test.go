package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level logging.LogLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetupLogger(&buf, level)
	t.Cleanup(func() {
		logging.SetupLogger(os.Stderr, logging.LevelInfo)
	})
	return &buf
}

func TestGatewayGet(t *testing.T) {
	var gotAuth, gotContentType string
	gateway, server := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set(headerLink, `<https://api.example.com/x?page=2>; rel="next"`)
		writeJSON(t, w, http.StatusOK, map[string]any{"ok": true})
	})
	gateway.httpClient = NewGateway(context.Background(), "secret-token").httpClient

	response, err := gateway.Get(context.Background(), server.URL+"/repos/fakeorg/fakerepo")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, contentType, gotContentType)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, server.URL+"/repos/fakeorg/fakerepo", response.RequestURI)
	assert.JSONEq(t, `{"ok":true}`, response.Body)
	assert.Equal(t, `<https://api.example.com/x?page=2>; rel="next"`, response.Link)
	assert.Equal(t, RateLimit{
		Limit:     5000,
		Remaining: 4990,
		ResetAt:   testNow.Add(30 * time.Minute).Unix(),
		Resource:  "core",
	}, response.RateLimit)
}

func TestGatewayPostAndPatchSendJSON(t *testing.T) {
	type received struct {
		method string
		body   map[string]any
	}
	var got []received

	gateway, server := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = append(got, received{method: r.Method, body: body})
		writeJSON(t, w, http.StatusCreated, map[string]any{})
	})

	_, err := gateway.Post(context.Background(), server.URL+"/a", map[string]string{"title": "1.0.0"})
	require.NoError(t, err)
	_, err = gateway.Patch(context.Background(), server.URL+"/b", map[string]string{"state": "closed"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Equal(t, "1.0.0", got[0].body["title"])
	assert.Equal(t, http.MethodPatch, got[1].method)
	assert.Equal(t, "closed", got[1].body["state"])
}

func TestGatewayMissingRateLimitHeader(t *testing.T) {
	headers := []string{
		headerRateLimitLimit,
		headerRateLimitRemaining,
		headerRateLimitReset,
		headerRateLimitResource,
	}

	for _, header := range headers {
		t.Run(header, func(t *testing.T) {
			gateway, server := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				defaultRateLimit().write(w)
				w.Header().Del(header)
				w.WriteHeader(http.StatusOK)
			})

			response, err := gateway.Get(context.Background(), server.URL)

			assert.Nil(t, response)
			var missing *MissingHeaderError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, header, missing.Header)
		})
	}
}

func TestGatewayInvalidRateLimitHeader(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		value  string
	}{
		{name: "Non numeric limit", header: headerRateLimitLimit, value: "lots"},
		{name: "Negative remaining", header: headerRateLimitRemaining, value: "-1"},
		{name: "Non numeric reset", header: headerRateLimitReset, value: "soon"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				defaultRateLimit().write(w)
				w.Header().Set(tc.header, tc.value)
				w.WriteHeader(http.StatusOK)
			})

			_, err := gateway.Get(context.Background(), server.URL)

			var invalid *InvalidHeaderError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.header, invalid.Header)
			assert.Equal(t, tc.value, invalid.Value)
		})
	}
}

func TestGatewayRateLimitExceeded(t *testing.T) {
	reset := testNow.Add(10 * time.Minute)
	gateway, server := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		rateLimitHeaders{limit: 30, remaining: 0, reset: reset, resource: "search"}.write(w)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"total_count":0,"items":[]}`))
	})

	response, err := gateway.Get(context.Background(), server.URL)

	var exceeded *RateLimitExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, "search", exceeded.Resource)
	assert.True(t, reset.Equal(exceeded.ResetAt))
	assert.Equal(t, 10*time.Minute, exceeded.TimeUntilReset)
	assert.Contains(t, err.Error(), "rate limit exceeded for resource: search")
	assert.Contains(t, err.Error(), "10m0s")

	// The request itself succeeded; the response is still handed back with the error.
	require.NotNil(t, response)
	assert.Equal(t, `{"total_count":0,"items":[]}`, response.Body)
}

func TestGatewaySendsBeforeCheckingQuota(t *testing.T) {
	gateway, server := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		rateLimitHeaders{limit: 60, remaining: 0, reset: testNow.Add(time.Minute), resource: "core"}.write(w)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`last body`))
	})

	response, err := gateway.send(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "last body", response.Body)

	err = gateway.checkRateLimit(response)
	var exceeded *RateLimitExceededError
	assert.ErrorAs(t, err, &exceeded)
}

func TestGatewayRateLimitLogLevel(t *testing.T) {
	testCases := []struct {
		name      string
		remaining int
		reset     time.Time
		wantLevel string
		wantText  string
	}{
		{name: "Plenty remaining logs at debug", remaining: 6, reset: testNow.Add(time.Hour), wantLevel: "level=DEBUG"},
		{name: "At threshold logs at warn", remaining: RateLimitRemainingWarningThreshold, reset: testNow.Add(time.Hour), wantLevel: "level=WARN"},
		{name: "Negative time until reset warns", remaining: 100, reset: testNow.Add(-time.Minute), wantLevel: "level=WARN", wantText: "negative"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t, logging.LevelDebug)
			gateway, server := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				rateLimitHeaders{limit: 5000, remaining: tc.remaining, reset: tc.reset, resource: "core"}.write(w)
				w.WriteHeader(http.StatusOK)
			})

			_, err := gateway.Get(context.Background(), server.URL)
			require.NoError(t, err)

			var rateLine string
			for _, line := range bytes.Split(logs.Bytes(), []byte("\n")) {
				if bytes.Contains(line, []byte("github api rate info")) {
					rateLine = string(line)
				}
			}
			require.NotEmpty(t, rateLine)
			assert.Contains(t, rateLine, tc.wantLevel)
			assert.Contains(t, rateLine, "resource=core")
			assert.Contains(t, rateLine, tc.wantText)
		})
	}
}

func TestGatewayTransportError(t *testing.T) {
	gateway, server := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	response, err := gateway.Get(context.Background(), server.URL)
	assert.Nil(t, response)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET "+server.URL)

	var exceeded *RateLimitExceededError
	assert.False(t, errors.As(err, &exceeded))
}

func TestHumanTimeUntilReset(t *testing.T) {
	assert.Equal(t, "1h2m3s", humanTimeUntilReset(time.Hour+2*time.Minute+3*time.Second+400*time.Millisecond))
	assert.Contains(t, humanTimeUntilReset(-5*time.Second), "negative")
}
