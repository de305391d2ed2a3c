// Package gemini is an HTTP client for the Google Generative Language API.
// It covers the two calls the engine needs: text embedding and chat
// completion. Calls are rate limited and pass through a circuit breaker
// so a degraded upstream cannot stall the whole pipeline.
package gemini

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/LexGuardAI/lexguard-mvp/pkg/resilience"
)

const (
	// DefaultBaseURL is the public Generative Language endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultEmbedModel produces 768-dimensional vectors.
	DefaultEmbedModel = "embedding-001"
	// DefaultGenModel is the completion model.
	DefaultGenModel = "gemini-2.0-flash"

	// EmbedDims is the dimensionality of DefaultEmbedModel vectors.
	EmbedDims = 768
)

// Client talks to the Gemini REST API.
type Client struct {
	baseURL    string
	apiKey     string
	embedModel string
	genModel   string
	http       *http.Client
	limiter    *rate.Limiter
	breaker    *resilience.Breaker
}

// Opts configures a Client. Zero values fall back to defaults.
type Opts struct {
	BaseURL    string
	APIKey     string
	EmbedModel string
	GenModel   string
	// RatePerSec caps outbound requests per second.
	RatePerSec float64
	Timeout    time.Duration
}

// New creates a Gemini client.
func New(opts Opts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.EmbedModel == "" {
		opts.EmbedModel = DefaultEmbedModel
	}
	if opts.GenModel == "" {
		opts.GenModel = DefaultGenModel
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		embedModel: opts.EmbedModel,
		genModel:   opts.GenModel,
		http:       &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		breaker:    resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}
}
