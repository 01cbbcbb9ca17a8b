package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"storyweaver/internal/model"
)

const systemInstruction = "You are a professional children's story writer. Always respond with valid JSON format."

const userInstruction = `Create a {{.pages}}-page children's story about {{.name}}, a {{.age}}-year-old {{.gender}} character.
Story theme: {{.idea}}
Style: {{.style}}
Language: {{.language}}

Requirements:
- Write the story in {{.language}}
- Each page should have EXACTLY {{.max_words}} words or less
- Distribute the complete story across {{.pages}} pages
- Make it age-appropriate and engaging
- Each page should advance the story

Format your response as JSON:
{"pages": [{"page_number": 1, "title": "Page Title", "content": "Story content (max {{.max_words}} words)"}]}`

// storyTemplate 生成式路径的提示词模板
var storyTemplate = prompt.FromMessages(schema.GoTemplate,
	schema.SystemMessage(systemInstruction),
	schema.UserMessage(userInstruction),
)

// BuildPrompt 渲染发给文本生成服务的系统指令和用户提示词
func BuildPrompt(ctx context.Context, req model.StoryRequest) (system, user string, err error) {
	msgs, err := storyTemplate.Format(ctx, map[string]any{
		"pages":     req.Pages(),
		"name":      req.Name,
		"age":       req.Age,
		"gender":    strings.ToLower(string(req.Gender)),
		"idea":      req.StoryIdea,
		"style":     string(req.Style),
		"language":  string(req.Language),
		"max_words": MaxWordsPerPage,
	})
	if err != nil {
		return "", "", fmt.Errorf("format story prompt: %w", err)
	}
	if len(msgs) != 2 {
		return "", "", fmt.Errorf("format story prompt: got %d messages", len(msgs))
	}
	return msgs[0].Content, msgs[1].Content, nil
}
