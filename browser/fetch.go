package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Response is a fully read GET response.
type Response struct {
	// URL is the final URL after redirects.
	URL        *url.URL
	Redirected bool
	Status     int
	Body       string
}

// Fetch issues a GET for rawURL and reads the whole body. Redirects are
// followed by the HTTP client and reported through Redirected.
func (w *Window) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "text/html")

	res, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", rawURL, err)
	}

	final := req.URL
	if res.Request != nil && res.Request.URL != nil {
		final = res.Request.URL
	}
	return &Response{
		URL:        final,
		Redirected: final.String() != req.URL.String(),
		Status:     res.StatusCode,
		Body:       string(body),
	}, nil
}
