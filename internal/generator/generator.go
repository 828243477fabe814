// Package generator turns a question and its assembled context into a
// natural-language answer via an LLM chat backend. The Adapter wraps the raw
// generator with a bounded timeout and a single retry so the rest of the
// pipeline never blocks indefinitely on a slow provider.
package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var (
	// ErrGenerationTimeout indicates the backend did not answer within the
	// configured deadline, including the retry.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationProvider indicates the backend returned an error other
	// than a timeout, including the retry.
	ErrGenerationProvider = errors.New("generation provider failure")
)

// SystemPrompt instructs the model to answer in Turkish using only the
// supplied context.
const SystemPrompt = "Sen Türkçe bir futbol asistanısın. " +
	"Aşağıdaki bağlam bilgilerini kullanarak kullanıcının sorusunu Türkçe olarak yanıtla. " +
	"Yalnızca bağlamda yer alan bilgileri kullan. " +
	"Bağlamda yanıt yoksa bunu açıkça belirt, bilgi uydurma."

// Generator produces an answer from a question and its assembled context text.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

// ChatGenerator implements Generator on top of an eino ChatModel.
type ChatGenerator struct {
	model model.ToolCallingChatModel
}

// NewChatGenerator wraps the given chat model.
func NewChatGenerator(m model.ToolCallingChatModel) *ChatGenerator {
	return &ChatGenerator{model: m}
}

// Generate sends the system prompt plus a user message carrying the context
// and question, and returns the model's answer text.
func (g *ChatGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(SystemPrompt),
		schema.UserMessage(fmt.Sprintf("Bağlam:\n%s\n\nSoru: %s\n\nYanıt:", contextText, question)),
	}
	resp, err := g.model.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("generator: generate: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("generator: backend returned an empty response")
	}
	return resp.Content, nil
}
