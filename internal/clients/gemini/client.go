// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/genai"

	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/interfaces"
)

const DefaultModel = "gemini-2.0-flash"

// Client implements the GeminiClient interface
type Client struct {
	client    *genai.Client
	model     string
	baseURL   string
	citations bool
	logger    *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithCitations appends grounding sources to generated text
func WithCitations(enabled bool) ClientOption {
	return func(c *Client) {
		c.citations = enabled
	}
}

// WithBaseURL overrides the API endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	c := &Client{
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = genaiClient

	return c, nil
}

// Model returns the model identifier used for requests
func (c *Client) Model() string {
	return c.model
}

// GenerateGrounded generates plain text with the Google Search tool enabled.
// Errors keep the SDK's status text (code, message, status) so callers can
// classify them; the wrapping adds no words of its own that look like a status.
func (c *Client) GenerateGrounded(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating grounded content")

	config := &genai.GenerateContentConfig{
		Tools:            []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		ResponseMIMEType: "text/plain",
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", wrapError(err)
	}
	if result == nil {
		return "", nil
	}

	text := result.Text()
	if c.citations && text != "" {
		text = appendSources(text, result)
	}
	return text, nil
}

// wrapError prefixes SDK errors. Transport failures drop the request URL,
// whose ":generateContent" suffix would otherwise read as a rate limit.
func wrapError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("gemini transport: %w", urlErr.Err)
	}
	return fmt.Errorf("gemini request: %w", err)
}

// appendSources adds the web sources the answer was grounded on as a markdown list.
func appendSources(text string, result *genai.GenerateContentResponse) string {
	if len(result.Candidates) == 0 || result.Candidates[0].GroundingMetadata == nil {
		return text
	}

	seen := make(map[string]bool)
	var sources []string
	for _, chunk := range result.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		sources = append(sources, fmt.Sprintf("- [%s](%s)", title, chunk.Web.URI))
	}
	if len(sources) == 0 {
		return text
	}
	return fmt.Sprintf("%s\n\n**Zdroje:**\n%s", strings.TrimRight(text, "\n"), strings.Join(sources, "\n"))
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
