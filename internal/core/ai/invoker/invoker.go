package invoker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fridge-recipe/internal/core/ai/provider"
	"fridge-recipe/internal/infrastructure/metrics"
	"fridge-recipe/internal/pkg/common"

	"go.uber.org/zap"
)

// GenericDetail is reported when no attempted model supplied a message of its own.
const GenericDetail = "AI model request failed"

// ErrNoModels is wrapped by UpstreamModelError when no model is configured.
var ErrNoModels = errors.New("no model configured")

// UpstreamModelError reports that no model produced text.
type UpstreamModelError struct {
	Model  string // last model attempted
	Status int    // upstream status, 0 for transport failures
	Detail string
	Err    error
}

func (e *UpstreamModelError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream model %q failed (status %d): %s", e.Model, e.Status, e.Detail)
	}
	return fmt.Sprintf("upstream model %q failed: %s", e.Model, e.Detail)
}

func (e *UpstreamModelError) Unwrap() error {
	return e.Err
}

// Result is the raw text produced by one invocation.
type Result struct {
	Text  string
	Model string
}

// Invoker sends a prompt to the primary model and, when the provider reports
// the model as not found, to each fallback in order.
type Invoker struct {
	gen            provider.TextGenerator
	models         []string
	system         string
	maxTokens      int
	attemptTimeout time.Duration
	metrics        *metrics.Metrics
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithSystemPrompt sets the system instruction sent with every request.
func WithSystemPrompt(s string) Option {
	return func(i *Invoker) { i.system = s }
}

// WithMaxTokens sets the output token cap.
func WithMaxTokens(n int) Option {
	return func(i *Invoker) { i.maxTokens = n }
}

// WithAttemptTimeout bounds each model attempt. Zero disables the bound.
func WithAttemptTimeout(d time.Duration) Option {
	return func(i *Invoker) { i.attemptTimeout = d }
}

// WithMetrics records upstream outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Invoker) { i.metrics = m }
}

// New creates an Invoker over gen.
func New(gen provider.TextGenerator, primary string, fallbacks []string, opts ...Option) *Invoker {
	i := &Invoker{
		gen:            gen,
		models:         ModelList(primary, fallbacks),
		maxTokens:      2048,
		attemptTimeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Models returns the effective attempt order.
func (i *Invoker) Models() []string {
	return append([]string(nil), i.models...)
}

// ModelList returns primary followed by the fallbacks, dropping blanks,
// duplicates and repeats of the primary while keeping order.
func ModelList(primary string, fallbacks []string) []string {
	seen := make(map[string]struct{}, len(fallbacks)+1)
	out := make([]string, 0, len(fallbacks)+1)
	for _, m := range append([]string{primary}, fallbacks...) {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Invoke sends prompt to the first model that accepts it. Only a
// model-not-found response advances to the next model; every other failure
// ends the invocation. A successful reply with no text is returned as an
// empty Result rather than an error.
func (i *Invoker) Invoke(ctx context.Context, prompt string) (*Result, error) {
	if len(i.models) == 0 {
		return nil, &UpstreamModelError{Detail: GenericDetail, Err: ErrNoModels}
	}

	var lastErr *UpstreamModelError
	detail := ""
	for idx, model := range i.models {
		if idx > 0 {
			i.metrics.ObserveFallback()
			common.LogWarn("模型不存在，改用備援模型",
				zap.String("previous", i.models[idx-1]),
				zap.String("model", model),
			)
		}

		start := time.Now()
		text, err := i.attempt(ctx, model, prompt)
		if errors.Is(err, provider.ErrEmptyResponse) {
			// 空白回應仍算呼叫成功，交給解析階段判定
			text, err = "", nil
		}
		common.LogUpstreamCall(model, time.Since(start), err)
		if err == nil {
			i.metrics.ObserveUpstream(model, metrics.OutcomeSuccess)
			return &Result{Text: text, Model: model}, nil
		}

		upErr := &UpstreamModelError{Model: model, Err: err}
		var perr *provider.Error
		if errors.As(err, &perr) {
			upErr.Status = perr.Status
			if perr.Detail != "" {
				detail = perr.Detail
			}
		}
		upErr.Detail = detail
		if upErr.Detail == "" {
			upErr.Detail = GenericDetail
		}
		lastErr = upErr

		if perr != nil && perr.IsModelNotFound() {
			i.metrics.ObserveUpstream(model, metrics.OutcomeModelNotFound)
			continue
		}
		i.metrics.ObserveUpstream(model, metrics.OutcomeError)
		return nil, upErr
	}

	return nil, lastErr
}

func (i *Invoker) attempt(ctx context.Context, model, prompt string) (string, error) {
	if i.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.attemptTimeout)
		defer cancel()
	}
	return i.gen.Generate(ctx, provider.Request{
		Prompt:    prompt,
		System:    i.system,
		Model:     model,
		MaxTokens: i.maxTokens,
	})
}
