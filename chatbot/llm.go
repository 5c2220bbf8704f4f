package chatbot

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChain adapts a langchaingo model to Completer
type LangChain struct {
	model llms.Model
}

func NewOpenAI(token, model string) (*LangChain, error) {
	opts := []openai.Option{openai.WithToken(token)}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &LangChain{model: llm}, nil
}

func (l *LangChain) Complete(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, l.model, prompt,
		llms.WithTemperature(0.2),
		llms.WithMaxTokens(200),
	)
}
