// Package narrative 生成故事的各页内容。
//
// 先尝试生成式路径（配置了文本生成服务时），任何失败都会回退到确定性的模板路径，反之不会发生。
// 两条路径的正文都会截断到每页 MaxWordsPerPage 个词。
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"storyweaver/internal/catalog"
	"storyweaver/internal/model"
)

// MaxWordsPerPage 每页正文的词数上限
const MaxWordsPerPage = 25

// ErrGeneration 文本生成服务调用失败或返回内容不可用
var ErrGeneration = errors.New("story generation failed")

// Tier 实际产出页面的路径
type Tier string

const (
	TierGenerative Tier = "generative"
	TierTemplate   Tier = "template"
)

// DraftPage 文本生成服务返回的单页
type DraftPage struct {
	PageNumber int    `json:"page_number"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// Draft 文本生成服务返回的结构化故事
type Draft struct {
	Pages []DraftPage `json:"pages"`
}

// TextGenerator 结构化文本生成服务，失败时返回包装了 ErrGeneration 的错误
type TextGenerator interface {
	GenerateStructured(ctx context.Context, systemInstruction, userPrompt string) (*Draft, error)
}

// Generator 故事页面生成器，Text 为空时只走模板路径
type Generator struct {
	Text   TextGenerator
	Logger logrus.FieldLogger
}

// NewGenerator 创建页面生成器
func NewGenerator(text TextGenerator, logger logrus.FieldLogger) *Generator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Generator{Text: text, Logger: logger}
}

// GeneratePages 生成 req.Pages() 页内容，并返回实际使用的路径
func (g *Generator) GeneratePages(ctx context.Context, req model.StoryRequest, profile model.CharacterProfile) ([]model.StoryPage, Tier) {
	log := g.logger().WithFields(logrus.Fields{"name": req.Name, "pages": req.Pages()})

	if g.Text != nil {
		pages, err := g.generative(ctx, req, profile)
		if err == nil {
			log.WithField("tier", TierGenerative).Info("story pages generated")
			return pages, TierGenerative
		}
		log.WithError(err).Warn("generative story failed, falling back to templates")
	}

	pages := TemplatePages(req, profile)
	log.WithField("tier", TierTemplate).Info("story pages generated")
	return pages, TierTemplate
}

func (g *Generator) generative(ctx context.Context, req model.StoryRequest, profile model.CharacterProfile) ([]model.StoryPage, error) {
	system, user, err := BuildPrompt(ctx, req)
	if err != nil {
		return nil, err
	}
	draft, err := g.Text.GenerateStructured(ctx, system, user)
	if err != nil {
		return nil, err
	}
	if err := checkDraft(draft, req.Pages()); err != nil {
		return nil, err
	}

	pages := make([]model.StoryPage, 0, len(draft.Pages))
	for i, dp := range draft.Pages {
		content := TruncateWords(dp.Content, MaxWordsPerPage)
		pages = append(pages, model.StoryPage{
			PageNumber:       i + 1,
			Title:            strings.TrimSpace(dp.Title),
			Content:          content,
			ImageDescription: ImageDescription(i+1, content, profile),
		})
	}
	return pages, nil
}

// checkDraft 页数必须与请求一致，且每页都有标题和正文
func checkDraft(d *Draft, want int) error {
	if d == nil {
		return fmt.Errorf("%w: empty draft", ErrGeneration)
	}
	if len(d.Pages) != want {
		return fmt.Errorf("%w: got %d pages, want %d", ErrGeneration, len(d.Pages), want)
	}
	for i, p := range d.Pages {
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
			return fmt.Errorf("%w: page %d missing title or content", ErrGeneration, i+1)
		}
	}
	return nil
}

func (g *Generator) logger() logrus.FieldLogger {
	if g.Logger == nil {
		return logrus.StandardLogger()
	}
	return g.Logger
}

// slot 多页故事骨架中的一节
type slot struct {
	title string
	tpl   func(catalog.Narrative) string
}

var skeleton = []slot{
	{"Introduction", func(n catalog.Narrative) string { return n.Intro }},
	{"Adventure Begins", func(n catalog.Narrative) string { return n.AdventureStart }},
	{"The Challenge", func(n catalog.Narrative) string { return n.Conflict }},
	{"Resolution", func(n catalog.Narrative) string { return n.Resolution }},
	{"Happy Ending", func(n catalog.Narrative) string { return n.Ending }},
}

// adventureSlot 追加用户故事构思的那一节
const adventureSlot = 1

// TemplatePages 确定性的模板路径，不依赖任何外部服务
func TemplatePages(req model.StoryRequest, profile model.CharacterProfile) []model.StoryPage {
	tpl := catalog.NarrativeTemplate(req.Language)
	v := catalog.ValuesFor(req)
	total := req.Pages()

	if total == 1 {
		content := strings.Join([]string{
			catalog.Render(tpl.Intro, v),
			sentence(req.StoryIdea),
			catalog.Render(tpl.Ending, v),
		}, " ")
		content = TruncateWords(content, MaxWordsPerPage)
		return []model.StoryPage{{
			PageNumber:       1,
			Title:            "The Adventure of " + req.Name,
			Content:          content,
			ImageDescription: ImageDescription(1, content, profile),
		}}
	}

	pages := make([]model.StoryPage, 0, total)
	for i := 0; i < total; i++ {
		var title, content string
		if i < len(skeleton) {
			title = skeleton[i].title
			content = catalog.Render(skeleton[i].tpl(tpl), v)
			if i == adventureSlot {
				content += " " + req.StoryIdea
			}
		} else {
			title = fmt.Sprintf("Chapter %d", i+1)
			content = catalog.Render(tpl.Continuation, v)
		}
		content = TruncateWords(content, MaxWordsPerPage)
		pages = append(pages, model.StoryPage{
			PageNumber:       i + 1,
			Title:            title,
			Content:          content,
			ImageDescription: ImageDescription(i+1, content, profile),
		})
	}
	return pages
}

// sentence 没有结尾标点时补一个句号
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	last := []rune(s)[len([]rune(s))-1]
	if unicode.IsPunct(last) {
		return s
	}
	return s + "."
}
