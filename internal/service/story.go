package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"storyweaver/internal/model"
	"storyweaver/internal/narrative"
	"storyweaver/internal/profile"
)

const (
	serviceName        = "Text with Image Story Generator"
	serviceDescription = "Generate personalized stories with custom characters and images"
	serviceVersion     = "1.0.0"
)

var serviceFeatures = []string{
	"Personalized character integration",
	"Multi-language support",
	"Various artistic styles",
	"Flexible chapter lengths",
	"Image-based character representation",
}

// StoryConfig 故事服务的依赖，Text 和 Vision 为空表示未配置对应的外部服务
type StoryConfig struct {
	Text   narrative.TextGenerator
	Vision profile.VisionAnalyzer
	Logger logrus.FieldLogger
}

// StoryService 组装完整故事：角色描述、各页内容和封面
type StoryService struct {
	profiles  *profile.Builder
	narrative *narrative.Generator
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewStoryService 创建故事服务
func NewStoryService(cfg StoryConfig) *StoryService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StoryService{
		profiles:  profile.NewBuilder(cfg.Vision, logger),
		narrative: narrative.NewGenerator(cfg.Text, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateStory 生成故事。不会返回错误也不会 panic，所有失败都体现在 Success=false 的结果里
func (s *StoryService) GenerateStory(ctx context.Context, req model.StoryRequest, image []byte) model.GenerationResult {
	start := s.now()
	log := s.logger.WithFields(logrus.Fields{
		"request_id": RequestID(ctx),
		"name":       req.Name,
		"pages":      req.Pages(),
		"has_image":  len(image) > 0,
	})

	story, tier, err := s.assemble(ctx, req, image)
	elapsed := s.now().Sub(start).Seconds()
	observeStory(err == nil, tier, elapsed)

	if err != nil {
		log.WithError(err).Error("story generation failed")
		return model.GenerationResult{
			Success:        false,
			Message:        "Failed to generate story: " + err.Error(),
			ElapsedSeconds: elapsed,
		}
	}
	log.WithFields(logrus.Fields{"tier": tier, "elapsed": elapsed}).Info("story generated")
	return model.GenerationResult{
		Success:        true,
		Message:        fmt.Sprintf("Story generated successfully for %s!", req.Name),
		Story:          story,
		ElapsedSeconds: elapsed,
	}
}

func (s *StoryService) assemble(ctx context.Context, req model.StoryRequest, image []byte) (story *model.GeneratedStory, tier narrative.Tier, err error) {
	defer func() {
		if r := recover(); r != nil {
			story, err = nil, fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	p := s.profiles.Build(ctx, req, image)
	pages, tier := s.narrative.GeneratePages(ctx, req, p)
	if len(pages) != req.Pages() {
		return nil, tier, fmt.Errorf("got %d pages, want %d", len(pages), req.Pages())
	}
	for i, pg := range pages {
		if pg.PageNumber != i+1 {
			return nil, tier, fmt.Errorf("page %d is numbered %d", i+1, pg.PageNumber)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, tier, err
	}

	title := StoryTitle(req.Name)
	return &model.GeneratedStory{
		Title:                 title,
		CharacterName:         req.Name,
		CharacterGender:       req.Gender,
		CharacterAge:          req.Age,
		Style:                 req.Style,
		Language:              req.Language,
		TotalChapters:         len(pages),
		CoverImageDescription: CoverDescription(req, p, title),
		Pages:                 pages,
	}, tier, nil
}

// StoryTitle 故事标题
func StoryTitle(name string) string {
	return "The Amazing Adventures of " + name
}

// CoverDescription 封面插画提示词，以角色描述开头以保持与内页一致
func CoverDescription(req model.StoryRequest, p model.CharacterProfile, title string) string {
	return fmt.Sprintf("Book cover design. %s. Title '%s' prominently displayed at the top. "+
		"Cover scene depicts the story theme: %s. Colorful, eye-catching design suitable for children's book, "+
		"with %s artistic style, inviting and magical atmosphere",
		p.CanonicalDescription, title, req.StoryIdea, strings.ToLower(string(req.Style)))
}

// DescribeCapabilities 返回服务支持的选项
func (s *StoryService) DescribeCapabilities() model.Capabilities {
	return model.Capabilities{
		Service:        serviceName,
		Description:    serviceDescription,
		Version:        serviceVersion,
		Genders:        append([]model.Gender(nil), model.Genders...),
		Styles:         append([]model.Style(nil), model.Styles...),
		Languages:      append([]model.Language(nil), model.Languages...),
		ChapterOptions: append([]model.ChapterCount(nil), model.ChapterCounts...),
		Features:       append([]string(nil), serviceFeatures...),
	}
}
