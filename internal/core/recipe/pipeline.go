package recipe

import (
	"context"
	"errors"

	"fridge-recipe/internal/core/ai/invoker"
	"fridge-recipe/internal/pkg/common"

	"go.uber.org/zap"
)

// Pipeline 產生一批候選食譜
type Pipeline interface {
	Suggest(ctx context.Context, in PromptInput) ([]Candidate, error)
}

// ModelInvoker 送出 prompt 並取得模型原始輸出
type ModelInvoker interface {
	Invoke(ctx context.Context, prompt string) (*invoker.Result, error)
}

// LLMPipeline Prompt Builder → Model Invoker → Response Extractor → Recipe Normalizer
type LLMPipeline struct {
	invoker ModelInvoker
}

// NewPipeline 建立以模型為後端的 Pipeline
func NewPipeline(inv ModelInvoker) *LLMPipeline {
	return &LLMPipeline{invoker: inv}
}

// Suggest 跑一次完整的 pipeline
func (p *LLMPipeline) Suggest(ctx context.Context, in PromptInput) ([]Candidate, error) {
	prompt := BuildPrompt(in)
	common.LogDebug("推薦 prompt", zap.Int("count", in.Count), zap.Int("prompt_length", len(prompt)))

	res, err := p.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	value, err := ExtractJSON(res.Text)
	if err == nil {
		var candidates []Candidate
		candidates, err = Normalize(value)
		if err == nil {
			return candidates, nil
		}
	}

	var malformed *MalformedSuggestionError
	if errors.As(err, &malformed) && malformed.Raw == "" {
		malformed.Raw = res.Text
	}
	common.LogWarn("模型回應無法解析",
		zap.String("model", res.Model),
		zap.String("raw", common.Truncate(res.Text, 2000)),
		zap.Error(err),
	)
	return nil, err
}
