// Package profile 构建单次故事生成内复用的角色描述。
//
// 同一个 CanonicalDescription 会原样出现在封面和每一页的插画提示词中，保证多页插画的角色一致。
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"storyweaver/internal/catalog"
	"storyweaver/internal/model"
)

// ErrAnalysis 参考图分析失败
var ErrAnalysis = errors.New("portrait analysis failed")

// VisionAnalyzer 从参考图中识别外貌特征，尽力而为，未识别的字段留空
type VisionAnalyzer interface {
	Analyze(ctx context.Context, image []byte) (model.Traits, error)
}

// Builder 角色描述构建器，Analyzer 为空表示未配置视觉分析
type Builder struct {
	Analyzer VisionAnalyzer
	Logger   logrus.FieldLogger
}

// NewBuilder 创建构建器
func NewBuilder(analyzer VisionAnalyzer, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Builder{Analyzer: analyzer, Logger: logger}
}

// Build 生成角色描述。参考图分析的任何失败只会导致描述中不含外貌特征，不会中断生成
func (b *Builder) Build(ctx context.Context, req model.StoryRequest, image []byte) model.CharacterProfile {
	var traits *model.Traits
	if len(image) > 0 {
		traits = b.analyze(ctx, req, image)
	}
	return model.CharacterProfile{
		CanonicalDescription: Describe(req, traits),
		Traits:               traits,
	}
}

func (b *Builder) analyze(ctx context.Context, req model.StoryRequest, image []byte) *model.Traits {
	log := b.logger().WithField("name", req.Name)
	if b.Analyzer == nil {
		log.Warn("reference image supplied but no vision analyzer configured")
		return nil
	}
	t, err := b.Analyzer.Analyze(ctx, image)
	if err != nil {
		log.WithError(err).Warn("portrait analysis failed, building profile without traits")
		return nil
	}
	t = Normalize(t)
	if t.Empty() {
		log.Info("portrait analysis returned no traits")
		return nil
	}
	log.WithFields(logrus.Fields{
		"skin":    t.SkinColor,
		"hair":    t.HairColor,
		"eyebrow": t.EyebrowColor,
	}).Info("portrait traits extracted")
	return &t
}

func (b *Builder) logger() logrus.FieldLogger {
	if b.Logger == nil {
		return logrus.StandardLogger()
	}
	return b.Logger
}

// Normalize 清理空白字段，眉毛颜色缺失时沿用头发颜色
func Normalize(t model.Traits) model.Traits {
	t.SkinColor = strings.TrimSpace(t.SkinColor)
	t.HairColor = strings.TrimSpace(t.HairColor)
	t.EyebrowColor = strings.TrimSpace(t.EyebrowColor)
	if t.EyebrowColor == "" {
		t.EyebrowColor = t.HairColor
	}
	return t
}

// Describe 拼接角色描述，traits 为空时不包含外貌从句
func Describe(req model.StoryRequest, traits *model.Traits) string {
	parts := []string{fmt.Sprintf("%s, featuring %s as main character, %s of %d years old",
		catalog.StylePrompt(req.Style), req.Name, catalog.GenderAdjective(req.Gender, req.Language), req.Age)}

	if traits != nil {
		if clause := appearance(*traits); clause != "" {
			parts = append(parts, clause)
		}
	}
	parts = append(parts,
		fmt.Sprintf("Keep the same character appearance and %s art style on every page", strings.ToLower(string(req.Style))),
		"Story theme: "+req.StoryIdea,
	)
	return strings.TrimRight(strings.Join(parts, ". "), ". ")
}

func appearance(t model.Traits) string {
	var feats []string
	if t.SkinColor != "" {
		feats = append(feats, t.SkinColor+" skin")
	}
	if t.HairColor != "" {
		feats = append(feats, t.HairColor+" hair")
	}
	if t.EyebrowColor != "" {
		feats = append(feats, t.EyebrowColor+" eyebrows")
	}
	if len(feats) == 0 {
		return ""
	}
	return "Character has " + strings.Join(feats, ", ")
}
