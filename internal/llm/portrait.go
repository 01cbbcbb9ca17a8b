package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	domain "storyweaver/internal/model"
	"storyweaver/internal/profile"
)

const portraitInstruction = `You analyze a reference photo of a child for a children's book illustrator.
Describe only visible physical colors. Respond with JSON only, no markdown:
{"skin_color": "...", "hair_color": "...", "eyebrow_color": "..."}
Use short color words such as "light brown" or "black". Use an empty string for anything you cannot see.`

// unknownColors 模型表示无法识别时常用的词，按未识别处理
var unknownColors = map[string]struct{}{
	"unknown": {}, "none": {}, "n/a": {}, "na": {}, "not visible": {}, "unclear": {},
}

// PortraitAnalyzer 通过视觉模型识别参考图的肤色、发色和眉毛颜色，实现 profile.VisionAnalyzer
type PortraitAnalyzer struct {
	r *runner
}

// NewPortraitAnalyzer 创建参考图分析适配器
func NewPortraitAnalyzer(ctx context.Context, cm model.BaseChatModel) (*PortraitAnalyzer, error) {
	r, err := newRunner(ctx, "portrait_analyzer", cm)
	if err != nil {
		return nil, err
	}
	return &PortraitAnalyzer{r: r}, nil
}

type portraitResponse struct {
	SkinColor    string `json:"skin_color"`
	HairColor    string `json:"hair_color"`
	EyebrowColor string `json:"eyebrow_color"`
}

// Analyze 分析参考图，失败返回包装了 profile.ErrAnalysis 的错误
func (a *PortraitAnalyzer) Analyze(ctx context.Context, image []byte) (domain.Traits, error) {
	if len(image) == 0 {
		return domain.Traits{}, fmt.Errorf("%w: empty image", profile.ErrAnalysis)
	}
	content, err := a.r.run(ctx, []*schema.Message{
		schema.SystemMessage(portraitInstruction),
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{Type: schema.ChatMessagePartTypeText, Text: "Describe the character's colors."},
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL:    imageDataURL(image),
						Detail: schema.ImageURLDetailLow,
					},
				},
			},
		},
	})
	if err != nil {
		return domain.Traits{}, fmt.Errorf("%w: %v", profile.ErrAnalysis, err)
	}
	var resp portraitResponse
	if err := decodeJSON(content, &resp); err != nil {
		return domain.Traits{}, fmt.Errorf("%w: %v", profile.ErrAnalysis, err)
	}
	return domain.Traits{
		SkinColor:    color(resp.SkinColor),
		HairColor:    color(resp.HairColor),
		EyebrowColor: color(resp.EyebrowColor),
	}, nil
}

func color(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := unknownColors[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}

func imageDataURL(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}

var _ profile.VisionAnalyzer = (*PortraitAnalyzer)(nil)
