package forum

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// FeedFetcher reads a subreddit's Atom feed. It needs no credentials.
type FeedFetcher struct {
	parser  *gofeed.Parser
	baseURL string
	opts    options
}

// NewFeed creates an Atom-feed fetcher.
func NewFeed(opts ...Option) *FeedFetcher {
	o := buildOptions(redditPublicURL, opts)
	fp := gofeed.NewParser()
	fp.Client = o.client()
	fp.UserAgent = o.userAgent
	return &FeedFetcher{parser: fp, baseURL: o.baseURL, opts: o}
}

// Fetch parses the newest entries feed and keeps entries published strictly
// after now minus the window.
func (ff *FeedFetcher) Fetch(ctx context.Context, forum string) ([]Post, error) {
	name := normalizeForum(forum)
	if name == "" {
		return nil, errors.New("feed: forum name is required")
	}

	u := fmt.Sprintf("%s/r/%s/new/.rss?limit=%d", ff.baseURL, url.PathEscape(name), ff.opts.limit)
	feed, err := ff.parser.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed r/%s: %w", name, err)
	}

	return postsFromFeed(feed, name, ff.opts.cutoff(), ff.opts.limit), nil
}

func postsFromFeed(feed *gofeed.Feed, forum string, cutoff time.Time, limit int) []Post {
	items := feed.Items
	if len(items) > limit {
		items = items[:limit]
	}

	posts := make([]Post, 0, len(items))
	for _, item := range items {
		createdAt := itemTime(item)
		if createdAt.IsZero() || !createdAt.After(cutoff) {
			continue
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}

		posts = append(posts, Post{
			ID:        strings.TrimPrefix(item.GUID, "t3_"),
			Forum:     forum,
			Title:     item.Title,
			URL:       item.Link,
			Body:      htmlText(content),
			CreatedAt: createdAt,
		})
	}
	return posts
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}

// htmlText flattens entry HTML to text. Reddit wraps the self text in
// div.md; link posts have none, so the whole fragment is used.
func htmlText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	if md := doc.Find("div.md"); md.Length() > 0 {
		return strings.TrimSpace(md.Text())
	}
	return strings.TrimSpace(doc.Text())
}
