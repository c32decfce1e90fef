package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testNow is the fixed clock used by test gateways.
var testNow = time.Date(2024, 7, 14, 17, 29, 42, 0, time.UTC)

type rateLimitHeaders struct {
	limit     int
	remaining int
	reset     time.Time
	resource  string
}

func defaultRateLimit() rateLimitHeaders {
	return rateLimitHeaders{limit: 5000, remaining: 4990, reset: testNow.Add(30 * time.Minute), resource: "core"}
}

func (h rateLimitHeaders) write(w http.ResponseWriter) {
	w.Header().Set(headerRateLimitLimit, strconv.Itoa(h.limit))
	w.Header().Set(headerRateLimitRemaining, strconv.Itoa(h.remaining))
	w.Header().Set(headerRateLimitReset, strconv.FormatInt(h.reset.Unix(), 10))
	w.Header().Set(headerRateLimitResource, h.resource)
}

// writeJSON writes a response carrying the default rate-limit headers.
func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	defaultRateLimit().write(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, err := json.Marshal(body)
	require.NoError(t, err)
	_, _ = w.Write(data)
}

// nextLink builds a Link header pointing at the given page of the current request.
func nextLink(r *http.Request, page, last int) string {
	u := *r.URL
	u.Scheme = "http"
	u.Host = r.Host
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	next := u.String()
	q.Set("page", strconv.Itoa(last))
	u.RawQuery = q.Encode()
	return fmt.Sprintf(`<%s>; rel="next", <%s>; rel="last"`, next, u.String())
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gateway := NewGatewayWithClient(server.Client())
	gateway.now = func() time.Time { return testNow }
	return gateway, server
}

func testRepo(server *httptest.Server) RepoRef {
	return RepoRef{APIURL: server.URL, Repository: "fakeorg/fakerepo"}
}

// fakeGetter serves canned responses in order.
type fakeGetter struct {
	responses []*Response
	errs      []error
	urls      []string
}

func (f *fakeGetter) Get(_ context.Context, url string) (*Response, error) {
	i := len(f.urls)
	f.urls = append(f.urls, url)
	if i >= len(f.responses) {
		return nil, fmt.Errorf("unexpected request %d for %s", i+1, url)
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.responses[i], err
}

func okPage(uri, body, link string) *Response {
	return &Response{
		StatusCode: http.StatusOK,
		RequestURI: uri,
		Body:       body,
		Link:       link,
		RateLimit:  RateLimit{Limit: 5000, Remaining: 4000, ResetAt: testNow.Add(time.Hour).Unix(), Resource: "core"},
	}
}
