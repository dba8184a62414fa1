package app

import (
	"net/http"

	"go.uber.org/zap"

	"flywrapper/internal/domain"
	"flywrapper/internal/index"
	"flywrapper/internal/selfmanifest"
	resolvesvc "flywrapper/internal/services/resolve"
	"flywrapper/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config   *Config
	Log      *zap.Logger
	HTTP     *http.Client
	Cache    domain.ReleaseCache
	Index    domain.IndexClient
	Resolver domain.Resolver
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg *Config, log *zap.Logger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: cfg.GetTimeout()}
	userAgent := userAgent()

	var idx domain.IndexClient
	switch cfg.API {
	case APISimple:
		idx = index.NewSimple(cfg.IndexURL, httpClient, userAgent, log.Named("index"))
	default:
		idx = index.NewJSON(cfg.IndexURL, httpClient, userAgent, log.Named("index"))
	}

	// File-based release cache
	cache := store.NewReleaseFileStore(cfg.CacheDir())
	if ttl := cfg.GetCacheTTL(); ttl > 0 {
		idx = index.NewCached(idx, cache, cfg.IndexURL+"|"+cfg.API, ttl, log.Named("cache"))
	}

	return &Wire{
		Config:   cfg,
		Log:      log,
		HTTP:     httpClient,
		Cache:    cache,
		Index:    idx,
		Resolver: resolvesvc.New(idx, cfg.Concurrency, log.Named("resolve")),
	}, nil
}

// WithoutCache returns a resolver that always asks the index.
func (w *Wire) WithoutCache() domain.Resolver {
	idx := w.Index
	if c, ok := idx.(*index.Cached); ok {
		idx = c.Next
	}
	return resolvesvc.New(idx, w.Config.Concurrency, w.Log.Named("resolve"))
}

func userAgent() string {
	m, err := selfmanifest.Load()
	if err != nil || m.Name == "" {
		return "fly"
	}
	return m.Name + "/" + m.Version
}
