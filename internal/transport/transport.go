package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Response carries the status code and body of a completed request.
type Response struct {
	StatusCode int
	Body       string
}

// Fetcher is implemented by anything that can retrieve a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// HTTPFetcher retrieves documents over net/http with a body size cap.
type HTTPFetcher struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPFetcher builds a fetcher with an optional custom HTTP client.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{client: client, maxBodyBytes: 1024 * 1024}
}

// Fetch issues a GET and reads at most maxBodyBytes of the response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	reader := io.LimitReader(resp.Body, f.maxBodyBytes)
	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: string(bodyBytes)}, nil
}

// BuildURL joins path segments onto a base URL, normalizing separators.
func BuildURL(base string, segments ...string) (string, error) {
	parsed, err := url.Parse(NormalizeTargetURL(base))
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}

	joined := parsed.Path
	for _, segment := range segments {
		joined = path.Join(joined, segment)
	}

	// path.Join strips trailing slashes, which WordPress feed endpoints need.
	if len(segments) > 0 && strings.HasSuffix(segments[len(segments)-1], "/") {
		joined += "/"
	}
	parsed.Path = joined

	return parsed.String(), nil
}

// NormalizeTargetURL defaults bare hostnames to https.
func NormalizeTargetURL(target string) string {
	trimmed := strings.TrimSpace(target)
	if trimmed == "" {
		return target
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return "https://" + trimmed
}
