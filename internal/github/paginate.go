package github

import (
	"context"
	"net/http"
	"strings"
)

const relNext = `rel="next"`

// PageHandler receives each page of a listing. page starts at 1.
type PageHandler func(page int, response *Response) error

// Paginate fetches firstPageURL and every following page named by the Link
// header, handing each one to handle. It stops at the first error.
func Paginate(ctx context.Context, api Getter, firstPageURL string, handle PageHandler) error {
	nextPageURL, hasNext := firstPageURL, true

	for page := 1; hasNext; page++ {
		response, err := api.Get(ctx, nextPageURL)
		if err != nil {
			return err
		}
		if err := CheckOKResponse(response); err != nil {
			return err
		}

		if err := handle(page, response); err != nil {
			return err
		}

		nextPageURL, hasNext = response.NextPageURL()
	}
	return nil
}

// CheckOKResponse fails unless the page was fetched with status 200.
func CheckOKResponse(response *Response) error {
	if response.StatusCode == http.StatusOK {
		return nil
	}
	return &PageFetchError{
		URI:        response.RequestURI,
		StatusCode: response.StatusCode,
		Body:       abbreviate(response.Body, maxBodyExcerpt),
	}
}

// NextPageURL extracts the URL labelled rel="next" from a web-linking header,
// for example:
//
//	<https://api.github.com/search/issues?q=x&page=2>; rel="next", <https://api.github.com/search/issues?q=x&page=4>; rel="last"
//
// It returns false when the header is empty or has no next entry.
func NextPageURL(linkHeader string) (string, bool) {
	if linkHeader == "" {
		return "", false
	}

	for _, entry := range strings.Split(linkHeader, ",") {
		if !strings.Contains(entry, relNext) {
			continue
		}
		start := strings.Index(entry, "<")
		end := strings.Index(entry, ">")
		if start < 0 || end <= start+1 {
			return "", false
		}
		return strings.TrimSpace(entry[start+1 : end]), true
	}
	return "", false
}
