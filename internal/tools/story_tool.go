package tools

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"storyweaver/internal/model"
)

// StoryGenerator 故事生成服务，*service.StoryService 实现了该接口
type StoryGenerator interface {
	GenerateStory(ctx context.Context, req model.StoryRequest, image []byte) model.GenerationResult
}

// StoryTool 实现eino框架的故事生成工具
type StoryTool struct {
	stories StoryGenerator
}

// StoryToolArgs 故事生成请求参数
type StoryToolArgs struct {
	Gender        model.Gender       `json:"gender"`
	Name          string             `json:"name"`
	Age           int                `json:"age"`
	Style         model.Style        `json:"style"`
	Language      model.Language     `json:"language"`
	StoryIdea     string             `json:"story_idea"`
	ChapterNumber model.ChapterCount `json:"chapter_number"`
}

// NewStoryTool 创建故事生成工具实例
func NewStoryTool(stories StoryGenerator) *StoryTool {
	return &StoryTool{stories: stories}
}

// Info 获取故事生成工具信息
func (t *StoryTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"gender":         {Type: schema.String, Required: true, Desc: "主角性别", Enum: enum(model.Genders)},
		"name":           {Type: schema.String, Required: true, Desc: "主角名字，不超过50个字符"},
		"age":            {Type: schema.Integer, Required: true, Desc: "主角年龄，1-100"},
		"style":          {Type: schema.String, Required: true, Desc: "插画风格", Enum: enum(model.Styles)},
		"language":       {Type: schema.String, Required: true, Desc: "故事语言", Enum: enum(model.Languages)},
		"story_idea":     {Type: schema.String, Required: true, Desc: "故事构思，10-1000个字符"},
		"chapter_number": {Type: schema.String, Required: true, Desc: "章节数", Enum: enum(model.ChapterCounts)},
	}
	return &schema.ToolInfo{
		Name:        "story_generate",
		Desc:        "为儿童创作个性化插画故事，返回每页正文和插画提示词",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

// InvokableRun 执行故事生成任务，参数不合法时返回错误
func (t *StoryTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args StoryToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	req, err := model.NewStoryRequest(args.Gender, args.Name, args.Age, args.Style, args.Language, args.StoryIdea, args.ChapterNumber)
	if err != nil {
		return "", err
	}

	b, err := json.Marshal(t.stories.GenerateStory(ctx, req, nil))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func enum[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

// 确保StoryTool实现了einotool.InvokableTool接口
var _ einotool.InvokableTool = (*StoryTool)(nil)
