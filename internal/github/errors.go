package github

import (
	"fmt"
	"time"
)

// maxBodyExcerpt bounds how much of a response body ends up in an error message.
const maxBodyExcerpt = 100

// MissingHeaderError is returned when a response lacks a required rate-limit header.
type MissingHeaderError struct {
	Header string
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("%s header is required", e.Header)
}

// InvalidHeaderError is returned when a rate-limit header cannot be interpreted.
type InvalidHeaderError struct {
	Header string
	Value  string
	Err    error
}

func (e *InvalidHeaderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s header value %q", e.Header, e.Value)
	}
	return fmt.Sprintf("invalid %s header value %q: %v", e.Header, e.Value, e.Err)
}

func (e *InvalidHeaderError) Unwrap() error {
	return e.Err
}

// RateLimitExceededError is returned once a response reports zero remaining requests.
type RateLimitExceededError struct {
	Resource       string
	ResetAt        time.Time
	TimeUntilReset time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for resource: %s. No more requests can be made to that resource until %s (%s)",
		e.Resource, e.ResetAt.Format(time.RFC3339), humanTimeUntilReset(e.TimeUntilReset))
}

// PageFetchError is returned when a page of a paginated listing is not 200 OK.
type PageFetchError struct {
	URI        string
	StatusCode int
	// Body is at most maxBodyExcerpt characters long.
	Body string
}

func (e *PageFetchError) Error() string {
	return fmt.Sprintf("GET %s failed, response code %d, response body: %s", e.URI, e.StatusCode, e.Body)
}

// StatusError is returned when a single (non-paginated) call gets an unexpected status.
type StatusError struct {
	Operation  string
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s was unsuccessful: %s %s returned status %d: %s",
		e.Operation, e.Method, e.URL, e.StatusCode, e.Body)
}

// ParseError is returned when a response body does not have the expected shape.
type ParseError struct {
	URI    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unable to parse response from %s: %s", e.URI, e.Reason)
	}
	return fmt.Sprintf("unable to parse response from %s: %s: %v", e.URI, e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnexpectedResultCountError is returned when the merged search results disagree
// with the total counts the API reported on the first pages.
type UnexpectedResultCountError struct {
	Expected int
	Actual   int
}

func (e *UnexpectedResultCountError) Error() string {
	return fmt.Sprintf("expected %d issues but have %d", e.Expected, e.Actual)
}

// UnexpectedPaginationError is returned when a listing that must fit on one page has a next page.
type UnexpectedPaginationError struct {
	URI  string
	Link string
}

func (e *UnexpectedPaginationError) Error() string {
	return fmt.Sprintf("received a Link header from %s when none was expected: %s", e.URI, e.Link)
}

// MilestoneNotFoundError is returned when no open milestone has the requested title.
type MilestoneNotFoundError struct {
	Title string
}

func (e *MilestoneNotFoundError) Error() string {
	return fmt.Sprintf("no milestone with title %s was found", e.Title)
}

// TagNotFoundError is returned when a release is requested for a tag that does not resolve.
type TagNotFoundError struct {
	Tag        string
	StatusCode int
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("tag %s was not found (status %d)", e.Tag, e.StatusCode)
}

// ReleaseExistsError is returned when a release already uses the requested name or tag.
type ReleaseExistsError struct {
	Tag string
	// Field is "name" or "tag_name".
	Field string
}

func (e *ReleaseExistsError) Error() string {
	if e.Field == "name" {
		return fmt.Sprintf("a release with name %s already exists", e.Tag)
	}
	return fmt.Sprintf("a release associated with tag %s already exists", e.Tag)
}

// abbreviate shortens s to at most max runes, ending in "..." when truncated.
func abbreviate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
