// Package client provides the core MPDS API consumer: page fetching,
// phase-batched retrieval with consistency checks, and counting.
package client

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tilde-lab/mpds-client-go/pkg/cache"
	"github.com/tilde-lab/mpds-client-go/pkg/ratelimit"
)

// Prometheus metrics for MPDS client operations.
var (
	mpdsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpds_requests_total",
		Help: "Total MPDS facet requests by outcome",
	}, []string{"status"})

	mpdsRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mpds_request_duration_seconds",
		Help:    "MPDS facet request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	mpdsErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpds_errors_total",
		Help: "Total MPDS client errors by kind",
	}, []string{"kind"})

	mpdsPagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mpds_pages_fetched_total",
		Help: "Total result pages fetched across all retrievals",
	})

	mpdsRecordsCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mpds_records_collected_total",
		Help: "Total records collected across all retrievals",
	})
)

// Defaults for the reference MPDS deployment. Exact values are tunable
// policy, not semantics.
const (
	// DefaultEndpoint is the MPDS API gateway URL.
	DefaultEndpoint = "https://api.mpds.io/v0/download/facet"

	// DefaultPageSize is the records-per-page request size.
	DefaultPageSize = 1000

	// DefaultMaxPagesPerBatch caps the pages downloaded per phase
	// batch. One hit may reach 50 kB; pagesize * maxpages * 50 kB
	// bounds the memory footprint.
	DefaultMaxPagesPerBatch = 120

	// DefaultMaxPhasesPerBatch is the server's per-request phase-id
	// limit; larger filters are split into extra batches.
	DefaultMaxPhasesPerBatch = 1500

	// countPageSize is the minimal payload used when only the hit
	// count is wanted.
	countPageSize = 10
)

// EnvAPIKey is the environment variable consulted when Config.APIKey
// is not set explicitly.
const EnvAPIKey = "MPDS_KEY"

// Query is an opaque mapping from MPDS search category to value(s),
// documented at https://developer.mpds.io/#Categories. It is passed
// through unmodified to every page request of one retrieval.
type Query map[string]any

// Config holds the client configuration. It is read-only after New.
type Config struct {
	// APIKey authenticates against the MPDS platform. Falls back to
	// the MPDS_KEY environment variable; required.
	APIKey string

	// Endpoint overrides the API gateway URL.
	Endpoint string

	// PageSize is the records-per-page request size.
	PageSize int

	// MaxPagesPerBatch caps the declared page count per phase batch;
	// a batch above the cap aborts the retrieval.
	MaxPagesPerBatch int

	// MaxPhasesPerBatch caps phase ids per request; larger filters
	// are partitioned.
	MaxPhasesPerBatch int

	// Delay is the courtesy pause after every page request, including
	// the last of a batch. Values below 2s are honored but warned
	// about; 0 disables pausing (local mock servers only).
	Delay time.Duration

	// HTTPClient is the injected transport. Defaults to a client with
	// a 30s timeout.
	HTTPClient *http.Client

	// Cache is an optional Redis-backed page cache. Nil disables
	// caching.
	Cache *cache.Manager

	// Debug additionally logs every outgoing request as a transcript.
	Debug bool
}

// DefaultConfig returns the reference configuration. The API key is
// read from the environment.
func DefaultConfig() Config {
	return Config{
		APIKey:            os.Getenv(EnvAPIKey),
		Endpoint:          DefaultEndpoint,
		PageSize:          DefaultPageSize,
		MaxPagesPerBatch:  DefaultMaxPagesPerBatch,
		MaxPhasesPerBatch: DefaultMaxPhasesPerBatch,
		Delay:             ratelimit.DefaultDelay,
	}
}

// Client is the MPDS API consumer. Safe for use by one retrieval at a
// time; independent retrievals should use separate calls, which share
// only this read-only configuration.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	pacer      *ratelimit.Pacer
	config     Config
	logger     zerolog.Logger
}

// New creates an MPDS client. It fails fast with a config error when
// no API key is available, before any request is made.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(EnvAPIKey)
	}
	if cfg.APIKey == "" {
		return nil, &APIError{
			Kind:    ErrorKindConfig,
			Message: "MPDS API key is not set (pass Config.APIKey or export " + EnvAPIKey + ")",
		}
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPagesPerBatch <= 0 {
		cfg.MaxPagesPerBatch = DefaultMaxPagesPerBatch
	}
	if cfg.MaxPhasesPerBatch <= 0 {
		cfg.MaxPhasesPerBatch = DefaultMaxPhasesPerBatch
	}

	logger := log.With().Str("component", "mpds-client").Logger()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &Client{
		httpClient: httpClient,
		cache:      cfg.Cache,
		pacer:      ratelimit.NewPacer(cfg.Delay, logger),
		config:     cfg,
		logger:     logger,
	}, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
