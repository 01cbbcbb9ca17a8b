package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"storyweaver/internal/volc"
)

const (
	DefaultImageModel     = "seedream-4-0-250828"
	DefaultMaxUploadBytes = 10 << 20

	relaySize           = "2K"
	relayResponseFormat = "url"
	maxPromptRunes      = 1000
	minImageSide        = 32
	maxImageSide        = 4096
)

// ImageGenerator 图片生成服务，*volc.ArkClient 实现了该接口
type ImageGenerator interface {
	GenerateImages(ctx context.Context, p volc.ImageGenParams) ([]string, error)
}

// ImageResult 图生图结果
type ImageResult struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	ImageURL       string  `json:"image_url,omitempty"`
	PromptUsed     string  `json:"prompt_used"`
	ModelUsed      string  `json:"model_used"`
	GenerationTime float64 `json:"generation_time,omitempty"`
}

// RelayHealth 图生图服务健康状态
type RelayHealth struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Service       string `json:"service"`
	Model         string `json:"model,omitempty"`
	APIConfigured bool   `json:"api_configured"`
}

// RelayInfo 图生图服务说明
type RelayInfo struct {
	Service          string   `json:"service"`
	Description      string   `json:"description"`
	Model            string   `json:"model"`
	SupportedFormats []string `json:"supported_formats"`
	MaxFileSize      string   `json:"max_file_size"`
	DefaultSize      string   `json:"default_size"`
	ResponseFormat   string   `json:"default_response_format"`
	Watermark        bool     `json:"default_watermark"`
	PromptLength     string   `json:"prompt_length"`
	ImageDimensions  string   `json:"image_dimensions"`
}

// ImageRelayConfig 图生图服务配置
type ImageRelayConfig struct {
	Client         ImageGenerator
	Model          string
	MaxUploadBytes int64
	// Configured 为 false 表示没有可用的 API key 且未开启 mock
	Configured bool
	Logger     logrus.FieldLogger
}

// ImageRelayService 把上传图片和提示词转发给图片生成服务
type ImageRelayService struct {
	client     ImageGenerator
	model      string
	maxBytes   int64
	configured bool
	logger     logrus.FieldLogger
	now        func() time.Time
}

// NewImageRelayService 创建图生图服务
func NewImageRelayService(cfg ImageRelayConfig) *ImageRelayService {
	if cfg.Model == "" {
		cfg.Model = DefaultImageModel
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &ImageRelayService{
		client:     cfg.Client,
		model:      cfg.Model,
		maxBytes:   cfg.MaxUploadBytes,
		configured: cfg.Configured,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Generate 校验输入后调用图片生成服务，失败以 Success=false 的结果返回
func (s *ImageRelayService) Generate(ctx context.Context, prompt string, img []byte) ImageResult {
	start := s.now()
	prompt = strings.TrimSpace(prompt)
	res := ImageResult{PromptUsed: prompt, ModelUsed: s.model}
	log := s.logger.WithFields(logrus.Fields{"request_id": RequestID(ctx), "model": s.model})

	if err := validatePrompt(prompt); err != nil {
		imageRelayRequests.WithLabelValues(statusInvalid).Inc()
		res.Message = err.Error()
		return res
	}
	format, err := s.validateImage(img)
	if err != nil {
		imageRelayRequests.WithLabelValues(statusInvalid).Inc()
		res.Message = "Image validation failed: " + err.Error()
		return res
	}

	log.WithField("prompt", truncateRunes(prompt, 50)).Info("generating image")
	urls, err := s.client.GenerateImages(ctx, volc.ImageGenParams{
		Model:                     s.model,
		Prompt:                    prompt,
		Size:                      relaySize,
		SequentialImageGeneration: "disabled",
		ImageInputs:               []string{dataURL(format, img)},
		ResponseFormat:            relayResponseFormat,
		Watermark:                 true,
	})
	res.GenerationTime = s.now().Sub(start).Seconds()
	if err == nil && len(urls) == 0 {
		err = errors.New("no images returned")
	}
	if err != nil {
		imageRelayRequests.WithLabelValues(statusFailure).Inc()
		log.WithError(err).Error("image generation failed")
		res.Message = "Image generation failed: " + err.Error()
		return res
	}

	imageRelayRequests.WithLabelValues(statusSuccess).Inc()
	log.WithField("elapsed", res.GenerationTime).Info("image generated")
	res.Success = true
	res.Message = "Image generated successfully"
	res.ImageURL = urls[0]
	return res
}

// Health 报告 API key 是否已配置
func (s *ImageRelayService) Health() RelayHealth {
	if !s.configured {
		return RelayHealth{Status: "unhealthy", Message: "ARK_API_KEY not configured", Service: "image-to-image"}
	}
	return RelayHealth{
		Status:        "healthy",
		Message:       "Image-to-Image service is running",
		Service:       "image-to-image",
		Model:         s.model,
		APIConfigured: true,
	}
}

// Info 服务说明
func (s *ImageRelayService) Info() RelayInfo {
	return RelayInfo{
		Service:          "image-to-image",
		Description:      "Generate new images based on input images and text prompts using Ark",
		Model:            s.model,
		SupportedFormats: []string{"JPEG", "PNG", "GIF", "WebP", "BMP", "TIFF"},
		MaxFileSize:      fmt.Sprintf("%dMB", s.maxBytes>>20),
		DefaultSize:      relaySize,
		ResponseFormat:   relayResponseFormat,
		Watermark:        true,
		PromptLength:     fmt.Sprintf("1-%d characters", maxPromptRunes),
		ImageDimensions:  fmt.Sprintf("%dx%d to %dx%d pixels", minImageSide, minImageSide, maxImageSide, maxImageSide),
	}
}

func validatePrompt(prompt string) error {
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if utf8.RuneCountInString(prompt) > maxPromptRunes {
		return fmt.Errorf("prompt exceeds %d characters", maxPromptRunes)
	}
	return nil
}

// validateImage 检查大小、格式和尺寸，返回图片格式名
func (s *ImageRelayService) validateImage(img []byte) (string, error) {
	if len(img) == 0 {
		return "", fmt.Errorf("empty image file")
	}
	if int64(len(img)) > s.maxBytes {
		return "", fmt.Errorf("image size (%.2fMB) exceeds maximum allowed size (%dMB)",
			float64(len(img))/(1<<20), s.maxBytes>>20)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return "", fmt.Errorf("invalid image file: %w", err)
	}
	if cfg.Width < minImageSide || cfg.Height < minImageSide {
		return "", fmt.Errorf("image is too small (minimum %dx%d pixels)", minImageSide, minImageSide)
	}
	if cfg.Width > maxImageSide || cfg.Height > maxImageSide {
		return "", fmt.Errorf("image is too large (maximum %dx%d pixels)", maxImageSide, maxImageSide)
	}
	return format, nil
}

func dataURL(format string, img []byte) string {
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(img)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
