// Package report provides AI report generation services
package report

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/interfaces"
)

const (
	// DefaultMaxAttempts is the number of requests made before giving up on rate limits.
	DefaultMaxAttempts = 3

	// DefaultBaseBackoff is the wait before the second attempt; it doubles each retry.
	DefaultBaseBackoff = 10 * time.Second
)

// MsgEmptyResponse is returned when the model answers with no text.
const MsgEmptyResponse = "Chyba: AI nevrátila žiadny text. Skúste to prosím znova."

// msgGeneric formats any failure that matches no specific class.
const msgGeneric = "Chyba pri generovaní analýzy: %s"

// Sleeper blocks for the given duration between attempts.
type Sleeper func(time.Duration)

// Service implements ReportService
type Service struct {
	gemini      interfaces.GeminiClient
	logger      *common.Logger
	sleep       Sleeper
	maxAttempts int
	baseBackoff time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithSleeper replaces time.Sleep, mainly for tests.
func WithSleeper(fn Sleeper) Option {
	return func(s *Service) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// WithMaxAttempts sets the attempt limit. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithBaseBackoff sets the first retry delay. Non-positive values are ignored.
func WithBaseBackoff(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.baseBackoff = d
		}
	}
}

// NewService creates a new report service
func NewService(gemini interfaces.GeminiClient, logger *common.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	s := &Service{
		gemini:      gemini,
		logger:      logger,
		sleep:       time.Sleep,
		maxAttempts: DefaultMaxAttempts,
		baseBackoff: DefaultBaseBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces the narrative report for a ticker. It always returns
// displayable text: the model output on success, otherwise a message
// beginning with "Chyba".
func (s *Service) Generate(ctx context.Context, ticker string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().
				Str("ticker", ticker).
				Str("panic", fmt.Sprint(rec)).
				Str("stack", string(debug.Stack())).
				Msg("Panic while generating report")
			out = fmt.Sprintf(msgGeneric, fmt.Sprint(rec))
		}
	}()

	prompt := BuildPrompt(ticker)

	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		text, err := s.gemini.GenerateGrounded(ctx, prompt)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				s.logger.Warn().Str("ticker", ticker).Int("attempt", attempt+1).Msg("Model returned empty text")
				return MsgEmptyResponse
			}
			s.logger.Info().
				Str("ticker", ticker).
				Int("attempt", attempt+1).
				Int("chars", len(text)).
				Msg("Report generated")
			return text
		}

		lastErr = err
		if !isRetryable(err) {
			s.logger.Error().Err(err).Str("ticker", ticker).Int("attempt", attempt+1).Msg("Report generation failed")
			break
		}
		if attempt == s.maxAttempts-1 {
			s.logger.Error().Err(err).Str("ticker", ticker).Int("attempt", attempt+1).Msg("Rate limited, attempts exhausted")
			break
		}

		wait := s.backoff(attempt)
		s.logger.Warn().
			Err(err).
			Str("ticker", ticker).
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("Rate limited, retrying")
		s.sleep(wait)
	}

	return s.classify(lastErr)
}

// backoff returns the delay before attempt n+1: base * 2^n.
func (s *Service) backoff(attempt int) time.Duration {
	return s.baseBackoff << attempt
}

// isRetryable reports whether an error looks like a rate limit or quota rejection.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	return strings.Contains(msg, "429") ||
		strings.Contains(lower, "rate") ||
		strings.Contains(lower, "quota")
}

// classify maps the last error to a user-facing message. Checks run in order
// and the first match wins.
func (s *Service) classify(err error) string {
	if err == nil {
		return MsgEmptyResponse
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "404"):
		return fmt.Sprintf("Chyba: Model %s nebol nájdený alebo nie je podporovaný.", s.gemini.Model())
	case isRetryable(err):
		return fmt.Sprintf("Chyba: Prekročený limit požiadaviek (Rate limit) aj po %d pokusoch. Skúste neskôr.", s.maxAttempts)
	case strings.Contains(msg, "403") || strings.Contains(lower, "permission"):
		return fmt.Sprintf("Chyba: Prístup zamietnutý. Skontrolujte API kľúč. Detail: %s", msg)
	default:
		return fmt.Sprintf(msgGeneric, msg)
	}
}

// IsErrorMessage reports whether generated text is one of the error messages
// produced by Generate rather than a report.
func IsErrorMessage(text string) bool {
	return strings.HasPrefix(text, "Chyba")
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
