// Package upstream is the Data Access Layer: it fetches users, cafés,
// visits and reviews from the collaborator API (spec.md §6) over HTTP,
// parses their schema-variable payloads into canonical types, and caches
// the two high-traffic list endpoints with a short TTL (spec.md §3, §5).
//
// Every method here is a "fetch choke-point" per Design Notes §9: upstream
// failures never propagate as Go errors past this package. A transient
// fetch failure or a malformed payload both collapse to a neutral zero
// value (empty slice, nil pointer, false ok) and are logged, not returned.
package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/kopikita/cafereco/internal/cache"
	"github.com/kopikita/cafereco/pkg/models"
)

// Client is the Data Access Layer described in spec.md §4.1.
type Client struct {
	http *resty.Client
	log  *logrus.Entry

	userCache *cache.Store[[]models.User]
	cafeCache *cache.Store[[]models.Cafe]
}

const (
	usersCacheKey = "all"
	cafesCacheKey = "all"
)

// Config bundles the tunables Client needs out of internal/config, kept
// narrow so this package doesn't import the config package directly.
type Config struct {
	BaseURL      string
	FetchTimeout time.Duration
	RetryCount   int
	UserCacheTTL time.Duration
	CafeCacheTTL time.Duration
}

func New(cfg Config, log *logrus.Logger) *Client {
	h := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.FetchTimeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond)

	return &Client{
		http:      h,
		log:       log.WithField("component", "upstream"),
		userCache: cache.NewStore[[]models.User](cfg.UserCacheTTL, cfg.UserCacheTTL*10),
		cafeCache: cache.NewStore[[]models.Cafe](cfg.CafeCacheTTL, cfg.CafeCacheTTL*10),
	}
}

// fetch is the single choke-point every collaborator-API call passes
// through. It never returns an error to the caller: a transient transport
// failure or a non-2xx status is logged and reported via ok=false, letting
// every signal extractor treat "no data" uniformly.
func (c *Client) fetch(ctx context.Context, path string, out interface{}) bool {
	resp, err := c.http.R().SetContext(ctx).ForceContentType("application/json").SetResult(out).Get(path)
	if err != nil {
		fetchFailures.WithLabelValues(path).Inc()
		c.log.WithError(err).WithField("path", path).Warn("upstream fetch failed")
		return false
	}
	if resp.IsError() {
		fetchFailures.WithLabelValues(path).Inc()
		c.log.WithField("path", path).WithField("status", resp.StatusCode()).Warn("upstream returned error status")
		return false
	}
	return true
}

// fetchRaw is like fetch but returns the undecoded body, for endpoints
// whose payload shape varies (sentiment/reviews).
func (c *Client) fetchRaw(ctx context.Context, path string) ([]byte, bool) {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		fetchFailures.WithLabelValues(path).Inc()
		c.log.WithError(err).WithField("path", path).Warn("upstream fetch failed")
		return nil, false
	}
	if resp.IsError() {
		fetchFailures.WithLabelValues(path).Inc()
		c.log.WithField("path", path).WithField("status", resp.StatusCode()).Warn("upstream returned error status")
		return nil, false
	}
	return resp.Body(), true
}

// ListUsers returns every user, re-fetching at most once per UserCacheTTL.
func (c *Client) ListUsers(ctx context.Context) []models.User {
	if cached, ok := c.userCache.Get(usersCacheKey); ok {
		return cached
	}

	var raw []map[string]interface{}
	if !c.fetch(ctx, "/api/users", &raw) {
		return nil
	}

	users := make([]models.User, 0, len(raw))
	for _, m := range raw {
		users = append(users, parseRawUser(m))
	}

	c.userCache.Set(usersCacheKey, users)
	return users
}

// GetUser fetches a single user by id directly (not served from the list
// cache, since a single-user lookup is the common hot path for a
// recommendation request and shouldn't wait on a full list refresh).
func (c *Client) GetUser(ctx context.Context, userID int) (models.User, bool) {
	var raw map[string]interface{}
	if !c.fetch(ctx, fmt.Sprintf("/api/users/%d", userID), &raw) {
		return models.User{}, false
	}
	if len(raw) == 0 {
		return models.User{}, false
	}
	return parseRawUser(raw), true
}

// ListCafes returns every café, re-fetching at most once per CafeCacheTTL.
func (c *Client) ListCafes(ctx context.Context) []models.Cafe {
	if cached, ok := c.cafeCache.Get(cafesCacheKey); ok {
		return cached
	}

	var raw []map[string]interface{}
	if !c.fetch(ctx, "/api/data", &raw) {
		return nil
	}

	cafes := make([]models.Cafe, 0, len(raw))
	for _, m := range raw {
		cafes = append(cafes, parseRawCafe(m))
	}

	c.cafeCache.Set(cafesCacheKey, cafes)
	return cafes
}

// GetCafe looks up one café, preferring the cached list (cheap, already
// TTL-bounded) and falling back to the single-café endpoint on a miss.
func (c *Client) GetCafe(ctx context.Context, cafeID int) (models.Cafe, bool) {
	for _, cafe := range c.ListCafes(ctx) {
		if cafe.CafeID == cafeID {
			return cafe, true
		}
	}

	var raw map[string]interface{}
	if !c.fetch(ctx, fmt.Sprintf("/api/cafe/%d", cafeID), &raw) {
		return models.Cafe{}, false
	}
	if len(raw) == 0 {
		return models.Cafe{}, false
	}
	return parseRawCafe(raw), true
}

// GetVisited returns the café ids a user has visited, via the dedicated
// visited endpoint (spec.md §6), independent of the user record's own
// cafe_telah_dikunjungi field.
func (c *Client) GetVisited(ctx context.Context, userID int) []int {
	var raw interface{}
	if !c.fetch(ctx, fmt.Sprintf("/api/visited/%d", userID), &raw) {
		return nil
	}
	return parseVisitList(raw)
}

// GetSentiment returns the raw reviews backing a café's sentiment signal,
// falling back to GET /api/reviews/{id} if the sentiment endpoint yields
// nothing parseable (spec.md §9 Open Questions).
func (c *Client) GetSentiment(ctx context.Context, cafeID int) []models.Review {
	if body, ok := c.fetchRaw(ctx, fmt.Sprintf("/api/sentiment/%d", cafeID)); ok {
		if reviews := parseSentimentPayload(body); len(reviews) > 0 {
			return reviews
		}
	}
	return c.GetReviews(ctx, cafeID)
}

// GetReviews returns a café's raw reviews via the plain reviews endpoint.
func (c *Client) GetReviews(ctx context.Context, cafeID int) []models.Review {
	body, ok := c.fetchRaw(ctx, fmt.Sprintf("/api/reviews/%d", cafeID))
	if !ok {
		return nil
	}
	return parseSentimentPayload(body)
}

// InvalidateCaches clears the user and café list caches. Sentiment scores
// are cached in the sentiment package and are not touched here; they are
// cleared by sentiment.Aggregator.InvalidateCache.
func (c *Client) InvalidateCaches() {
	c.userCache.Invalidate()
	c.cafeCache.Invalidate()
}
