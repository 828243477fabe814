package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/logging"
)

const (
	// defaultTimeout bounds a single generation attempt.
	defaultTimeout = 30 * time.Second
	// retryBackoff is the pause before the single retry attempt.
	retryBackoff = 300 * time.Millisecond
	// maxAttempts covers the initial call plus one retry. Transient provider
	// hiccups get a second chance; anything past that is surfaced to the
	// caller so the question fails fast instead of queueing.
	maxAttempts = 2
)

// Adapter wraps a Generator with a per-attempt timeout and a single retry.
// All failures are mapped to ErrGenerationTimeout or ErrGenerationProvider
// so callers can branch on the class of failure without inspecting backend
// error strings.
type Adapter struct {
	gen     Generator
	timeout time.Duration
	backoff time.Duration
}

// NewAdapter constructs an Adapter around gen. A non-positive timeout selects
// the default per-attempt deadline.
func NewAdapter(gen Generator, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{gen: gen, timeout: timeout, backoff: retryBackoff}
}

// Answer invokes the generator with a bounded deadline, retrying exactly once
// after a short backoff when the first attempt fails.
func (a *Adapter) Answer(ctx context.Context, question, contextText string) (string, error) {
	log := logging.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", a.classify(ctx.Err())
			case <-time.After(a.backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		answer, err := a.gen.Generate(callCtx, question, contextText)
		cancel()
		if err == nil {
			return answer, nil
		}
		lastErr = err
		log.Warn("generator: attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}

	return "", a.classify(lastErr)
}

// classify maps a raw backend error onto one of the two generation sentinels,
// preserving the underlying cause in the message.
func (a *Adapter) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("generator: %w after %d attempts", ErrGenerationTimeout, maxAttempts)
	}
	return fmt.Errorf("generator: %w after %d attempts: %v", ErrGenerationProvider, maxAttempts, err)
}
