package serviceworker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

// Strategy is how the worker answers a request
type Strategy int

const (
	// Passthrough leaves the request to the browser
	Passthrough Strategy = iota
	// NetworkFirst tries the network, then the cache, then the offline document
	NetworkFirst
	// CacheFirst serves from cache and fills it from the network on a miss
	CacheFirst
)

func (s Strategy) String() string {
	switch s {
	case NetworkFirst:
		return "network-first"
	case CacheFirst:
		return "cache-first"
	default:
		return "passthrough"
	}
}

// Request is the subset of a fetch event the strategies look at
type Request struct {
	Method string
	URL    string // absolute URL or origin-relative path
}

// Response is a cached or fetched response
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	FromCache bool
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

func (r *Response) clone() *Response {
	cp := *r
	cp.Header = r.Header.Clone()
	cp.Body = append([]byte(nil), r.Body...)
	return &cp
}

// Fetcher performs network requests for the worker
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, req Request) (*Response, error)

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// ErrNotIntercepted is returned by Fetch for requests left to the browser
var ErrNotIntercepted = errors.New("request not intercepted")

// WorkerOptions configures a Worker
type WorkerOptions struct {
	Origin      string // e.g. "https://admin.example.com"
	Scope       string
	OfflineHTML string
	Storage     *CacheStorage
	Logger      utils.Logger
}

// Worker executes the same strategy table as the rendered script
type Worker struct {
	cfg      models.ServiceWorkerConfig
	origin   string
	scope    string
	patterns []Pattern
	offline  []byte
	storage  *CacheStorage
	fetcher  Fetcher
	logger   utils.Logger
}

// NewWorker creates a worker for one origin
func NewWorker(cfg models.ServiceWorkerConfig, fetcher Fetcher, opts WorkerOptions) *Worker {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	storage := opts.Storage
	if storage == nil {
		storage = NewCacheStorage()
	}
	offline := opts.OfflineHTML
	if offline == "" {
		offline = defaultOfflineHTML
	}

	return &Worker{
		cfg:      cfg,
		origin:   strings.TrimSuffix(opts.Origin, "/"),
		scope:    normalizeScope(opts.Scope),
		patterns: CompilePatterns(cfg.CachePatterns, logger),
		offline:  []byte(offline),
		storage:  storage,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// Storage returns the cache storage the worker writes to
func (w *Worker) Storage() *CacheStorage {
	return w.storage
}

// Install fetches every precache URL into the current cache. Like
// Cache.addAll it is all-or-nothing: one failure stores nothing.
func (w *Worker) Install(ctx context.Context) error {
	fetched := make(map[string]*Response, len(w.cfg.PrecacheURLs))
	for _, u := range w.cfg.PrecacheURLs {
		req := Request{Method: http.MethodGet, URL: u}
		resp, err := w.fetcher.Fetch(ctx, req)
		if err != nil {
			return fmt.Errorf("precache %s: %w", u, err)
		}
		if !resp.OK() {
			return fmt.Errorf("precache %s: status %d", u, resp.Status)
		}
		fetched[w.key(req)] = resp
	}

	cache := w.storage.Open(w.cfg.CacheName)
	for key, resp := range fetched {
		cache.Put(key, resp)
	}
	w.logger.Debug("Precached %d URLs into %s", len(fetched), w.cfg.CacheName)
	return nil
}

// Activate deletes every cache whose name differs from the configured one
// and returns the deleted names.
func (w *Worker) Activate() []string {
	var deleted []string
	for _, name := range w.storage.Keys() {
		if name == w.cfg.CacheName {
			continue
		}
		if w.storage.Delete(name) {
			w.logger.Debug("Deleted old cache %s", name)
			deleted = append(deleted, name)
		}
	}
	return deleted
}

// Classify picks the strategy for a request and the matching asset class
func (w *Worker) Classify(req Request) (Strategy, string) {
	if method := strings.ToUpper(req.Method); method != "" && method != http.MethodGet {
		return Passthrough, ""
	}
	u, err := w.resolve(req.URL)
	if err != nil || !w.sameOrigin(u) {
		return Passthrough, ""
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if w.inScope(path) {
		return NetworkFirst, ""
	}
	for _, class := range CacheFirstClasses {
		for _, p := range w.patterns {
			if p.Name == class && p.Regexp.MatchString(path) {
				return CacheFirst, class
			}
		}
	}
	return Passthrough, ""
}

// Fetch answers a request the way the script's fetch handler does.
// Requests the script would not intercept return ErrNotIntercepted.
func (w *Worker) Fetch(ctx context.Context, req Request) (*Response, error) {
	strategy, class := w.Classify(req)
	switch strategy {
	case NetworkFirst:
		return w.networkFirst(ctx, req)
	case CacheFirst:
		return w.cacheFirst(ctx, req, class)
	default:
		return nil, ErrNotIntercepted
	}
}

func (w *Worker) networkFirst(ctx context.Context, req Request) (*Response, error) {
	resp, err := w.fetcher.Fetch(ctx, req)
	if err == nil {
		if resp.OK() {
			w.storage.Open(w.cfg.CacheName).Put(w.key(req), resp)
		}
		return resp, nil
	}

	w.logger.Debug("Network failed for %s, trying cache: %v", req.URL, err)
	if cached, ok := w.storage.Match(w.key(req)); ok {
		return cached, nil
	}
	if w.cfg.OfflineURL != "" {
		if cached, ok := w.storage.Match(w.key(Request{URL: w.cfg.OfflineURL})); ok {
			return cached, nil
		}
	}
	return &Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"text/html; charset=UTF-8"}},
		Body:   append([]byte(nil), w.offline...),
	}, nil
}

func (w *Worker) cacheFirst(ctx context.Context, req Request, class string) (*Response, error) {
	if cached, ok := w.storage.Match(w.key(req)); ok {
		return cached, nil
	}

	resp, err := w.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", class, req.URL, err)
	}
	if resp.OK() {
		w.storage.Open(w.cfg.CacheName).Put(w.key(req), resp)
	}
	return resp, nil
}

func (w *Worker) resolve(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() || w.origin == "" {
		return u, nil
	}
	base, err := url.Parse(w.origin + "/")
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(u), nil
}

func (w *Worker) sameOrigin(u *url.URL) bool {
	if !u.IsAbs() {
		return true
	}
	if w.origin == "" {
		return false
	}
	origin, err := url.Parse(w.origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, origin.Scheme) && strings.EqualFold(u.Host, origin.Host)
}

func (w *Worker) inScope(path string) bool {
	if w.scope == "/" {
		return true
	}
	return path == w.scope || strings.HasPrefix(path, w.scope+"/")
}

// key is the origin-relative path and query, the cache key of a request
func (w *Worker) key(req Request) string {
	u, err := w.resolve(req.URL)
	if err != nil {
		return req.URL
	}
	key := u.EscapedPath()
	if key == "" {
		key = "/"
	}
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}
