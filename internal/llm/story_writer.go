package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"storyweaver/internal/narrative"
)

// StoryWriter 通过聊天模型生成结构化故事，实现 narrative.TextGenerator
type StoryWriter struct {
	r *runner
}

// NewStoryWriter 创建故事生成适配器
func NewStoryWriter(ctx context.Context, cm model.BaseChatModel) (*StoryWriter, error) {
	r, err := newRunner(ctx, "story_writer", cm)
	if err != nil {
		return nil, err
	}
	return &StoryWriter{r: r}, nil
}

// GenerateStructured 调用模型并解析 {"pages": [...]}
func (w *StoryWriter) GenerateStructured(ctx context.Context, systemInstruction, userPrompt string) (*narrative.Draft, error) {
	content, err := w.r.run(ctx, []*schema.Message{
		schema.SystemMessage(systemInstruction),
		schema.UserMessage(userPrompt),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", narrative.ErrGeneration, err)
	}
	var draft narrative.Draft
	if err := decodeJSON(content, &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", narrative.ErrGeneration, err)
	}
	return &draft, nil
}

var _ narrative.TextGenerator = (*StoryWriter)(nil)
