package forum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	redditPublicURL = "https://www.reddit.com"
	redditOAuthURL  = "https://oauth.reddit.com"
	redditTokenURL  = "https://www.reddit.com/api/v1/access_token"
)

// RedditFetcher reads the "new" listing of a subreddit through Reddit's JSON API.
type RedditFetcher struct {
	client   *http.Client
	creds    *clientcredentials.Config // nil for unauthenticated access
	baseURL  string
	listing  string
	opts     options
	linkHost string
}

// NewOAuth creates a fetcher that authenticates with an app-only
// client-credentials grant and queries oauth.reddit.com.
func NewOAuth(clientID, clientSecret string, opts ...Option) (*RedditFetcher, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, errors.New("reddit: client id and secret are required")
	}
	o := buildOptions(redditOAuthURL, opts)

	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     o.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return &RedditFetcher{
		client:   o.client(),
		creds:    cc,
		baseURL:  o.baseURL,
		listing:  "new",
		opts:     o,
		linkHost: redditPublicURL,
	}, nil
}

// NewPublic creates a fetcher for the unauthenticated www.reddit.com JSON endpoints.
func NewPublic(opts ...Option) *RedditFetcher {
	o := buildOptions(redditPublicURL, opts)
	return &RedditFetcher{
		client:   o.client(),
		baseURL:  o.baseURL,
		listing:  "new.json",
		opts:     o,
		linkHost: redditPublicURL,
	}
}

// Fetch requests at most limit items from the newest listing and keeps the
// ones created strictly after now minus the window.
func (rf *RedditFetcher) Fetch(ctx context.Context, forum string) ([]Post, error) {
	name := normalizeForum(forum)
	if name == "" {
		return nil, errors.New("reddit: forum name is required")
	}

	u := fmt.Sprintf("%s/r/%s/%s?limit=%d&raw_json=1", rf.baseURL, url.PathEscape(name), rf.listing, rf.opts.limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := rf.httpClient(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("r/%s: status %d", name, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s: %w", name, err)
	}

	return rf.postsFromListing(listing, name, rf.opts.cutoff()), nil
}

// httpClient returns the client for one fetch. With credentials, the token
// request runs under ctx and shares the User-Agent transport.
func (rf *RedditFetcher) httpClient(ctx context.Context) *http.Client {
	if rf.creds == nil {
		return rf.client
	}
	return rf.creds.Client(context.WithValue(ctx, oauth2.HTTPClient, rf.client))
}

func (rf *RedditFetcher) postsFromListing(listing redditListing, forum string, cutoff time.Time) []Post {
	children := listing.Data.Children
	if len(children) > rf.opts.limit {
		children = children[:rf.opts.limit]
	}

	posts := make([]Post, 0, len(children))
	for _, child := range children {
		p := child.Data
		createdAt := time.Unix(int64(p.CreatedUTC), 0).UTC()
		if !createdAt.After(cutoff) {
			continue
		}

		link := p.URL
		if link == "" && p.Permalink != "" {
			link = rf.linkHost + p.Permalink
		}
		sub := p.Subreddit
		if sub == "" {
			sub = forum
		}

		posts = append(posts, Post{
			ID:        p.ID,
			Forum:     sub,
			Title:     p.Title,
			URL:       link,
			Body:      p.Selftext,
			CreatedAt: createdAt,
		})
	}
	return posts
}

type redditListing struct {
	Data struct {
		Children []redditChild `json:"children"`
	} `json:"data"`
}

type redditChild struct {
	Data redditPost `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}
