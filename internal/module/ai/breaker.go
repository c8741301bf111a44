package ai

import (
	"context"
	"time"

	"github.com/promptcraft/server/internal/utils/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerConfig contains circuit breaker configuration.
type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

// DefaultBreakerConfig returns the default breaker configuration.
func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		FailureThreshold: 5,
		Timeout:          60 * time.Second,
	}
}

// BreakerProvider wraps a Provider with a circuit breaker so a failing
// upstream fails fast instead of tying up request handlers. Callers treat the
// open-circuit error like any other provider failure and fall back.
type BreakerProvider struct {
	inner   Provider
	text    *gobreaker.CircuitBreaker[*Generation]
	image   *gobreaker.CircuitBreaker[*ImageGeneration]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewBreakerProvider wraps the given provider with circuit breakers.
func NewBreakerProvider(inner Provider, cfg *BreakerConfig, m *metrics.Metrics, logger *zap.Logger) *BreakerProvider {
	if cfg == nil {
		cfg = DefaultBreakerConfig()
	}

	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:    name,
			Timeout: cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("ai circuit state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}
	}

	return &BreakerProvider{
		inner:   inner,
		text:    gobreaker.NewCircuitBreaker[*Generation](settings("ai-text")),
		image:   gobreaker.NewCircuitBreaker[*ImageGeneration](settings("ai-image")),
		logger:  logger,
		metrics: m,
	}
}

// GenerateText performs a text generation through the breaker.
func (b *BreakerProvider) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (*Generation, error) {
	start := time.Now()
	gen, err := b.text.Execute(func() (*Generation, error) {
		return b.inner.GenerateText(ctx, systemPrompt, userPrompt)
	})
	b.observe("text", start, err)
	return gen, err
}

// GenerateImage performs an image generation through the breaker.
func (b *BreakerProvider) GenerateImage(ctx context.Context, prompt string) (*ImageGeneration, error) {
	start := time.Now()
	img, err := b.image.Execute(func() (*ImageGeneration, error) {
		return b.inner.GenerateImage(ctx, prompt)
	})
	b.observe("image", start, err)
	return img, err
}

func (b *BreakerProvider) observe(operation string, start time.Time, err error) {
	if b.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	b.metrics.AIRequestsTotal.WithLabelValues(operation, outcome).Inc()
	b.metrics.AIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

var _ Provider = (*BreakerProvider)(nil)
