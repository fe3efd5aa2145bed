// Package crawler discovers pages breadth-first from a seed URL on a shared
// work queue and feeds their text into an index, stopping once a budget of
// unique URLs has been scheduled.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/workqueue"
	apperrors "github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/metrics"
)

// Index receives the words of each crawled page.
type Index interface {
	AddAll(words []string, location string)
}

// Crawler owns the visited set of one crawl. The set is guarded by its own
// mutex so network-bound link handling never holds the index lock.
type Crawler struct {
	max     int
	queue   *workqueue.Queue
	index   Index
	fetcher Fetcher
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	visited map[string]struct{}
}

// New returns a crawler that schedules at most max unique URLs, the seed
// included.
func New(max int, queue *workqueue.Queue, idx Index, fetcher Fetcher, m *metrics.Metrics) *Crawler {
	return &Crawler{
		max:     max,
		queue:   queue,
		index:   idx,
		fetcher: fetcher,
		metrics: m,
		logger:  logger.WithComponent("crawler"),
		visited: make(map[string]struct{}),
	}
}

// Crawl schedules the seed and blocks until the transitive crawl settles.
func (c *Crawler) Crawl(ctx context.Context, seed string) error {
	u, err := url.Parse(seed)
	if err != nil || !u.IsAbs() || !strings.HasPrefix(strings.ToLower(u.Scheme), "http") || u.Host == "" {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "seed %q is not an absolute http(s) url", seed)
	}
	start := Normalize(u)

	c.mu.Lock()
	c.visited[start.String()] = struct{}{}
	err = c.queue.Execute(c.task(ctx, start))
	if err != nil {
		delete(c.visited, start.String())
	}
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("scheduling seed: %w", err)
	}
	c.metrics.URLScheduled()
	c.queue.Finish()
	c.logger.Info("crawl finished", "seed", start.String(), "visited", c.VisitedCount(), "max", c.max)
	return nil
}

// Visited returns the scheduled URLs in sorted order.
func (c *Crawler) Visited() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	urls := make([]string, 0, len(c.visited))
	for u := range c.visited {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// VisitedCount returns the number of scheduled URLs.
func (c *Crawler) VisitedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.visited)
}

func (c *Crawler) task(ctx context.Context, page *url.URL) workqueue.Task {
	return func() {
		if ctx.Err() != nil {
			return
		}
		pageURL := page.String()
		markup, err := c.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			c.metrics.PageFetched(false)
			c.logger.Debug("fetch failed", "url", pageURL, "error", err)
			return
		}
		c.metrics.PageFetched(true)

		parsed, err := ParsePage(page, markup)
		if err != nil {
			c.logger.Debug("unparseable page", "url", pageURL, "error", err)
			return
		}
		c.schedule(ctx, parsed.Links)
		c.index.AddAll(tokenizer.Parse(parsed.Text), pageURL)
	}
}

func (c *Crawler) schedule(ctx context.Context, links []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, link := range links {
		if len(c.visited) >= c.max {
			return
		}
		if _, seen := c.visited[link]; seen {
			continue
		}
		next, err := url.Parse(link)
		if err != nil {
			continue
		}
		if err := c.queue.Execute(c.task(ctx, next)); err != nil {
			c.logger.Warn("dropping link", "url", link, "error", err)
			continue
		}
		c.visited[link] = struct{}{}
		c.metrics.URLScheduled()
	}
}
