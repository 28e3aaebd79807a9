// Package gemini implements the research oracle on the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/interfaces"
	"github.com/bobmcallan/fairval/internal/models"
)

const (
	DefaultModel     = "gemini-2.0-flash"
	DefaultTimeout   = 60 * time.Second
	DefaultRateLimit = 2 // requests per second
)

// Client implements the ResearchClient interface
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini research client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:  genaiClient,
		model:   DefaultModel,
		timeout: DefaultTimeout,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// generate issues one rate-limited, search-grounded generation request and
// returns the raw model text. The Gemini API does not accept JSON response
// mode together with the search tool, so the output shape is declared in the
// prompt and parsed leniently by the caller.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug().Str("model", c.model).Msg("Generating grounded content")

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// GetFinancialSnapshot retrieves Berkshire's latest reported financials and
// the current BRK.B market price.
func (c *Client) GetFinancialSnapshot(ctx context.Context) (*models.FinancialSnapshot, error) {
	text, err := c.generate(ctx, snapshotPrompt)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}

	snapshot, err := parseSnapshot(text)
	if err != nil {
		return nil, fmt.Errorf("snapshot response invalid: %w", err)
	}

	c.logger.Info().
		Float64("equity_millions", snapshot.TotalEquityMillions).
		Float64("price", snapshot.CurrentPrice).
		Str("as_of", snapshot.AsOf).
		Msg("Financial snapshot fetched")

	return snapshot, nil
}

// GetPbrDistribution retrieves the historical PBR distribution buckets.
func (c *Client) GetPbrDistribution(ctx context.Context) (*models.PbrDistribution, error) {
	text, err := c.generate(ctx, distributionPrompt)
	if err != nil {
		return nil, fmt.Errorf("distribution request failed: %w", err)
	}

	dist, err := parseDistribution(text)
	if err != nil {
		return nil, fmt.Errorf("distribution response invalid: %w", err)
	}

	c.logger.Info().Int("buckets", len(dist.Buckets)).Msg("PBR distribution fetched")

	return dist, nil
}

// GetBacktest runs a threshold-switching backtest simulation.
func (c *Client) GetBacktest(ctx context.Context, params models.BacktestParams) (*models.BacktestResult, error) {
	text, err := c.generate(ctx, backtestPrompt(params))
	if err != nil {
		return nil, fmt.Errorf("backtest request failed: %w", err)
	}

	result, err := parseBacktest(text)
	if err != nil {
		return nil, fmt.Errorf("backtest response invalid: %w", err)
	}

	c.logger.Info().
		Int("strategies", len(result.Strategies)).
		Int("trades", result.TradeCount).
		Msg("Backtest fetched")

	return result, nil
}

// Ensure Client implements ResearchClient
var _ interfaces.ResearchClient = (*Client)(nil)
