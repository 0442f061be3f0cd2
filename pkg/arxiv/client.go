package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/goodpapers/backend/internal/logger"
)

const (
	// DefaultBaseURL is the arXiv export API query endpoint.
	DefaultBaseURL = "http://export.arxiv.org/api/query"

	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second

	// DefaultRateInterval is the spacing arXiv asks API clients to keep
	// between requests.
	DefaultRateInterval = 3 * time.Second
)

// Client fetches paper metadata from the arXiv export API. It does not retry;
// every failure is logged and returned as a *FetchError or *ParseError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithRateLimiter replaces the default one-request-per-3s limiter.
func WithRateLimiter(l *rate.Limiter) Option { return func(c *Client) { c.limiter = l } }

func WithLogger(l *logger.Logger) Option { return func(c *Client) { c.log = l } }

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultRateInterval), 1),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchByID fetches and parses exactly one entry.
func (c *Client) FetchByID(ctx context.Context, id string) (*Metadata, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &FetchError{URL: c.baseURL, Err: errors.New("empty arxiv id")}
	}

	body, err := c.query(ctx, []string{id})
	if err != nil {
		c.log.Warn("arxiv fetch failed", "arxiv_id", id, "error", err)
		return nil, err
	}

	meta, err := Parse(body)
	if err != nil {
		c.log.Warn("arxiv parse failed", "arxiv_id", id, "error", err)
		return nil, err
	}
	return meta, nil
}

// FetchByURL derives the identifier from url with IDFromURL and fetches it.
func (c *Client) FetchByURL(ctx context.Context, rawURL string) (*Metadata, error) {
	return c.FetchByID(ctx, IDFromURL(rawURL))
}

// FetchByIDs fetches many entries in one request. Entries that fail to parse
// are dropped and the rest are returned in response order; a failed request
// yields an empty result.
func (c *Client) FetchByIDs(ctx context.Context, ids []string) []Metadata {
	if len(ids) == 0 {
		return nil
	}

	body, err := c.query(ctx, ids)
	if err != nil {
		c.log.Warn("arxiv batch fetch failed", "count", len(ids), "error", err)
		return nil
	}

	docs, err := splitEntries(body)
	if err != nil {
		c.log.Warn("arxiv batch response malformed", "count", len(ids), "error", err)
		return nil
	}

	papers := make([]Metadata, 0, len(docs))
	for i, doc := range docs {
		meta, err := Parse(doc)
		if err != nil {
			c.log.Warn("arxiv batch entry skipped", "index", i, "error", err)
			continue
		}
		papers = append(papers, *meta)
	}
	if len(papers) < len(ids) {
		c.log.Info("arxiv batch returned fewer entries than requested",
			"requested", len(ids), "returned", len(papers))
	}
	return papers
}

func (c *Client) query(ctx context.Context, ids []string) ([]byte, error) {
	params := url.Values{}
	params.Set("id_list", strings.Join(ids, ","))
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(len(ids)))
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: reqURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Err: err}
	}
	return body, nil
}
