// Package newsfeed fetches recent ticker news from public RSS feeds.
package newsfeed

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/models"
)

const (
	yahooFeedURL  = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"
	googleFeedURL = "https://news.google.com/rss/search?q=%s+stock&hl=en-US&gl=US&ceid=US:en"

	DefaultTimeout = 15 * time.Second
)

// Client implements the NewsClient interface over Yahoo Finance and Google
// News RSS. Feeds are queried independently; one failing feed degrades the
// result rather than failing the fetch.
type Client struct {
	parser  *gofeed.Parser
	timeout time.Duration
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithTimeout sets the per-feed fetch timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new RSS news client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		parser:  gofeed.NewParser(),
		timeout: DefaultTimeout,
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch returns up to maxItems recent articles for the ticker, newest first.
// An empty result is valid; an error means no feed could be read at all.
func (c *Client) Fetch(ctx context.Context, ticker string, maxItems int) ([]models.NewsArticle, error) {
	base := baseTicker(ticker)
	feedURLs := []string{
		fmt.Sprintf(yahooFeedURL, url.QueryEscape(base)),
		fmt.Sprintf(googleFeedURL, url.QueryEscape(base)),
	}

	var articles []models.NewsArticle
	failures := 0
	for _, feedURL := range feedURLs {
		items, err := c.fetchFeed(ctx, feedURL)
		if err != nil {
			failures++
			c.logger.Warn().Err(err).Str("ticker", ticker).Str("feed", feedURL).Msg("News feed fetch failed")
			continue
		}
		articles = append(articles, items...)
	}

	if failures == len(feedURLs) {
		return nil, fmt.Errorf("all news feeds failed for '%s'", ticker)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].Published.After(articles[j].Published)
	})

	if maxItems > 0 && len(articles) > maxItems {
		articles = articles[:maxItems]
	}

	return articles, nil
}

func (c *Client) fetchFeed(ctx context.Context, feedURL string) ([]models.NewsArticle, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		article := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			Source:  feedSource(feed, item),
			Summary: strings.TrimSpace(item.Description),
			Link:    item.Link,
		}
		if item.PublishedParsed != nil {
			article.Published = *item.PublishedParsed
		}
		if article.Title == "" {
			continue
		}
		articles = append(articles, article)
	}

	return articles, nil
}

func feedSource(feed *gofeed.Feed, item *gofeed.Item) string {
	// Google News carries the publisher in the item source.
	if item.Custom != nil {
		if src, ok := item.Custom["source"]; ok && src != "" {
			return src
		}
	}
	if feed.Title != "" {
		return feed.Title
	}
	return "rss"
}

// baseTicker strips the exchange suffix ("SBER.ME" -> "SBER") since the
// public feeds key on the bare symbol.
func baseTicker(ticker string) string {
	if idx := strings.Index(ticker, "."); idx > 0 {
		return ticker[:idx]
	}
	return ticker
}

// Ensure Client implements NewsClient
var _ interfaces.NewsClient = (*Client)(nil)
