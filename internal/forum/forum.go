// Package forum fetches recent posts from a subreddit.
package forum

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Post is a single forum submission. Immutable once fetched.
type Post struct {
	ID        string    // source id without the kind prefix ("t3_")
	Forum     string    // subreddit the post was fetched from
	Title     string    // submission title
	URL       string    // link target, or the permalink for self posts
	Body      string    // self text; empty for link posts
	CreatedAt time.Time // creation time in UTC
}

// Fetcher returns the newest posts of a forum that fall inside the
// configured time window.
type Fetcher interface {
	Fetch(ctx context.Context, forum string) ([]Post, error)
}

const (
	defaultLimit     = 10
	defaultWindow    = 24 * time.Hour
	defaultUserAgent = "subdigest/1.0"
)

type options struct {
	httpClient *http.Client
	baseURL    string
	tokenURL   string
	userAgent  string
	limit      int
	window     time.Duration
	now        func() time.Time
}

// Option configures a fetcher.
type Option func(*options)

// WithHTTPClient sets the base HTTP client. The fetcher wraps its transport
// to add the User-Agent header.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL overrides the API host (useful for testing).
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithTokenURL overrides the OAuth2 token endpoint (useful for testing).
func WithTokenURL(u string) Option {
	return func(o *options) { o.tokenURL = u }
}

// WithUserAgent sets the User-Agent sent on every request.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithLimit caps the number of listing items requested.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithWindow sets how far back posts are kept.
func WithWindow(d time.Duration) Option {
	return func(o *options) { o.window = d }
}

// WithClock replaces time.Now for the window cutoff.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(baseURL string, opts []Option) options {
	o := options{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		tokenURL:   redditTokenURL,
		userAgent:  defaultUserAgent,
		limit:      defaultLimit,
		window:     defaultWindow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// client returns a copy of the configured client whose transport stamps the User-Agent.
func (o options) client() *http.Client {
	c := *o.httpClient
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.Transport = &userAgentTransport{base: base, userAgent: o.userAgent}
	return &c
}

// cutoff is the exclusive lower bound for post creation times.
func (o options) cutoff() time.Time {
	return o.now().Add(-o.window)
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// normalizeForum accepts "golang", "r/golang" and "/r/golang/".
func normalizeForum(forum string) string {
	forum = strings.TrimPrefix(strings.TrimSpace(forum), "/")
	forum = strings.TrimPrefix(forum, "r/")
	return strings.Trim(forum, "/")
}
