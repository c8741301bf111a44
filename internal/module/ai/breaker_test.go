package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	calls int
	fail  bool
}

func (s *stubProvider) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (*Generation, error) {
	s.calls++
	if s.fail {
		return nil, ErrProviderUnavailable
	}
	return &Generation{Text: "ok"}, nil
}

func (s *stubProvider) GenerateImage(ctx context.Context, prompt string) (*ImageGeneration, error) {
	s.calls++
	if s.fail {
		return nil, ErrProviderUnavailable
	}
	return &ImageGeneration{Data: []byte{1}, ContentType: "image/png"}, nil
}

func TestBreakerProvider_PassesThroughSuccess(t *testing.T) {
	stub := &stubProvider{}
	bp := NewBreakerProvider(stub, nil, nil, zap.NewNop())

	gen, err := bp.GenerateText(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "ok", gen.Text)
	assert.Equal(t, 1, stub.calls)
}

func TestBreakerProvider_OpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubProvider{fail: true}
	cfg := &BreakerConfig{FailureThreshold: 3, Timeout: time.Minute}
	bp := NewBreakerProvider(stub, cfg, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := bp.GenerateText(context.Background(), "", "p")
		require.Error(t, err)
	}
	assert.Equal(t, 3, stub.calls)

	// Circuit is now open so the inner provider is not called again.
	_, err := bp.GenerateText(context.Background(), "", "p")
	require.Error(t, err)
	assert.Equal(t, 3, stub.calls)
}

func TestBreakerProvider_ImageAndTextBreakersAreIndependent(t *testing.T) {
	stub := &stubProvider{fail: true}
	cfg := &BreakerConfig{FailureThreshold: 1, Timeout: time.Minute}
	bp := NewBreakerProvider(stub, cfg, nil, zap.NewNop())

	_, err := bp.GenerateText(context.Background(), "", "p")
	require.Error(t, err)
	textCalls := stub.calls

	// Text circuit is open, image circuit is still closed.
	_, err = bp.GenerateImage(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, textCalls+1, stub.calls)
}
