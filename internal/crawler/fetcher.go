package crawler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/resilience"
)

const maxBodyBytes = 8 << 20

// Fetcher downloads the markup of one page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher fetches HTML over HTTP, following a bounded number of
// redirects and retrying transport failures.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	policy    resilience.Policy
}

// NewHTTPFetcher builds a fetcher from the crawler configuration.
func NewHTTPFetcher(cfg config.CrawlerConfig) *HTTPFetcher {
	maxRedirects := cfg.MaxRedirects
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		policy: resilience.Policy{
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: cfg.RetryDelay,
			MaxDelay:     5 * time.Second,
		},
	}
}

// Fetch returns the body of pageURL when it answers 200 with an HTML
// content type. Status and content-type failures are not retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	var body string
	err := resilience.Retry(ctx, "fetch", f.policy, func(ctx context.Context) error {
		var err error
		body, err = f.fetchOnce(ctx, pageURL)
		return err
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", resilience.Permanent(fmt.Errorf("%w: %s: %v", apperrors.ErrFetchFailed, pageURL, err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", apperrors.ErrFetchFailed, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", resilience.Permanent(fmt.Errorf("%w: %s: status %d", apperrors.ErrFetchFailed, pageURL, resp.StatusCode))
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "text/html" {
		return "", resilience.Permanent(fmt.Errorf("%w: %s: %q", apperrors.ErrNotHTML, pageURL, resp.Header.Get("Content-Type")))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", apperrors.ErrFetchFailed, pageURL, err)
	}
	return string(data), nil
}
