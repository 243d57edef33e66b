package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/mytv-catalog/internal/domain"
)

const (
	// DefaultBaseURL is the public TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultLanguage is sent with every listing and genre request.
	DefaultLanguage = "en-US"

	genreListPath = "/genre/movie/list"
	searchPath    = "/search/movie"
	maxBodyBytes  = 4 << 20
)

// Client defines the catalog operations consumed by the aggregation layer.
type Client interface {
	Genres(ctx context.Context) GenresOutcome
	Movies(ctx context.Context, path string) MoviesOutcome
	Search(ctx context.Context, query string) MoviesOutcome
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL  string
	APIKey   string
	Language string
	// Timeout bounds each request. Zero leaves requests unbounded.
	Timeout time.Duration
	Logger  *zap.Logger
}

// HTTPClient implements Client over the TMDB REST API.
type HTTPClient struct {
	baseURL  *url.URL
	apiKey   string
	language string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPClient constructs a TMDB client.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse tmdb url: %q is not absolute", base)
	}
	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}

	dialTimeout := opts.Timeout
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:  parsed,
		apiKey:   opts.APIKey,
		language: language,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   dialTimeout,
				ExpectContinueTimeout: 1 * time.Second,
				MaxIdleConnsPerHost:   4,
			},
		},
		logger: logger,
	}, nil
}

// Genres fetches the movie genre list. Failures produce an empty table.
func (c *HTTPClient) Genres(ctx context.Context) GenresOutcome {
	q := url.Values{}
	q.Set("language", c.language)

	var payload genreListResponse
	if err := c.getJSON(ctx, genreListPath, q, &payload); err != nil {
		c.logger.Warn("tmdb: genre list unavailable", zap.Error(err))
		return GenresOutcome{Table: domain.GenreTable{}, Err: err}
	}

	genres := make([]domain.Genre, 0, len(payload.Genres))
	for _, g := range payload.Genres {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return GenresOutcome{Table: domain.NewGenreTable(genres)}
}

// Movies fetches the first page of a catalog listing such as /movie/popular.
// Failures produce an empty sequence.
func (c *HTTPClient) Movies(ctx context.Context, path string) MoviesOutcome {
	q := url.Values{}
	q.Set("language", c.language)
	q.Set("page", "1")
	return c.fetchMovies(ctx, path, q)
}

// Search queries movies by title. The query is sent as given; callers trim it.
func (c *HTTPClient) Search(ctx context.Context, query string) MoviesOutcome {
	q := url.Values{}
	q.Set("query", query)
	return c.fetchMovies(ctx, searchPath, q)
}

func (c *HTTPClient) fetchMovies(ctx context.Context, path string, q url.Values) MoviesOutcome {
	var payload movieListResponse
	if err := c.getJSON(ctx, path, q, &payload); err != nil {
		c.logger.Warn("tmdb: movie listing unavailable", zap.String("path", path), zap.Error(err))
		return MoviesOutcome{Err: err}
	}
	movies, err := payload.toMovies()
	if err != nil {
		err = fmt.Errorf("decode %s: %w", path, err)
		c.logger.Warn("tmdb: movie listing unavailable", zap.String("path", path), zap.Error(err))
		return MoviesOutcome{Err: err}
	}
	return MoviesOutcome{Movies: movies}
}

func (c *HTTPClient) endpoint(path string, q url.Values) (*url.URL, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("invalid endpoint path %q", path)
	}
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint path %q: %w", path, err)
	}
	q.Set("api_key", c.apiKey)

	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + rel.Path
	u.RawQuery = q.Encode()
	return &u, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, q url.Values, dst interface{}) error {
	endpoint, err := c.endpoint(path, q)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return redactKey(err, c.apiKey)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{Endpoint: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// redactKey strips the API key from transport errors, which embed the request URL.
func redactKey(err error, key string) error {
	var urlErr *url.Error
	if key == "" || !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{
		Op:  urlErr.Op,
		URL: strings.ReplaceAll(urlErr.URL, url.QueryEscape(key), "REDACTED"),
		Err: urlErr.Err,
	}
}
