package volc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultBase    = "https://ark.cn-beijing.volces.com"
	defaultRegion  = "cn-beijing"
	defaultTimeout = 60 * time.Second

	imagesPath = "/api/v3/images/generations"
)

// mockPixel 1x1 PNG
const mockPixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII="

// Config Ark 连接配置
type Config struct {
	BaseURL string
	APIKey  string
	Region  string
	Timeout time.Duration
	Mock    bool
	// ImageInterval 两次图片生成请求之间的最小间隔，0 表示不限速
	ImageInterval time.Duration
	Logger        logrus.FieldLogger
}

// ArkClient Ark 图片生成 HTTP 客户端
type ArkClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Mock       bool

	limiter *rate.Limiter
	logger  logrus.FieldLogger
}

// NewArkClient 根据配置创建客户端
func NewArkClient(cfg Config) *ArkClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	limit := rate.Inf
	if cfg.ImageInterval > 0 {
		limit = rate.Every(cfg.ImageInterval)
	}
	return &ArkClient{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Mock:       cfg.Mock,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     cfg.Logger,
	}
}

// Configured 是否可以发起真实请求或处于 mock 模式
func (c *ArkClient) Configured() bool {
	return c.Mock || c.APIKey != ""
}

type ImageGenParams struct {
	Model                     string
	Prompt                    string
	Size                      string
	SequentialImageGeneration string
	ImageInputs               []string
	MaxImages                 int
	ResponseFormat            string
	Watermark                 bool
}

// GenerateImages 调用图片生成接口，返回图片 URL 或 data URL
func (c *ArkClient) GenerateImages(ctx context.Context, p ImageGenParams) ([]string, error) {
	if c.Mock {
		return []string{"data:image/png;base64," + mockPixel}, nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for image rate limit: %w", err)
		}
	}
	if p.Model == "" {
		p.Model = "seedream-4-0-250828"
	}
	if p.Size == "" {
		p.Size = "1024x1024"
	}
	if p.MaxImages == 0 {
		p.MaxImages = 1
	}
	body := map[string]any{
		"model":     p.Model,
		"prompt":    p.Prompt,
		"size":      p.Size,
		"watermark": p.Watermark,
		"stream":    false,
	}
	if p.ResponseFormat != "" {
		body["response_format"] = p.ResponseFormat
	}
	if p.SequentialImageGeneration != "" {
		body["sequential_image_generation"] = p.SequentialImageGeneration
		if p.SequentialImageGeneration == "auto" && p.MaxImages > 0 {
			body["sequential_image_generation_options"] = map[string]any{"max_images": p.MaxImages}
		}
	}
	switch len(p.ImageInputs) {
	case 0:
	case 1:
		body["image"] = p.ImageInputs[0]
	default:
		body["image"] = p.ImageInputs
	}

	var resp struct {
		Data []struct {
			URL    string `json:"url"`
			B64    string `json:"b64_json"`
			Format string `json:"format"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, imagesPath, body, &resp); err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.URL != "" {
			urls = append(urls, d.URL)
			continue
		}
		if d.B64 != "" {
			fmtType := d.Format
			if fmtType == "" {
				fmtType = "png"
			}
			urls = append(urls, "data:image/"+fmtType+";base64,"+d.B64)
		}
	}
	if len(urls) == 0 {
		return nil, errors.New("no images returned")
	}
	return urls, nil
}

func (c *ArkClient) postJSON(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	c.logger.WithFields(logrus.Fields{"url": req.URL.String(), "bytes": len(b)}).Debug("ark request")

	start := time.Now()
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	c.logger.WithFields(logrus.Fields{
		"url":     req.URL.String(),
		"status":  res.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debug("ark response")
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("http %d: %s", res.StatusCode, errorMessage(bodyBytes))
	}
	return json.Unmarshal(bodyBytes, out)
}

// errorMessage 优先取 Ark 错误体中的 message，否则截取原始响应
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		if e.Error.Code != "" {
			return e.Error.Code + ": " + e.Error.Message
		}
		return e.Error.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// ChatModelOptions 聊天模型参数
type ChatModelOptions struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// NewChatModel 使用同一份 Ark 配置创建 eino 聊天模型
func NewChatModel(ctx context.Context, cfg Config, opts ChatModelOptions) (*ark.ChatModel, error) {
	if opts.Model == "" {
		return nil, errors.New("model required")
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	mc := &ark.ChatModelConfig{
		APIKey:     cfg.APIKey,
		Region:     region,
		HTTPClient: &http.Client{Timeout: timeout},
		Model:      opts.Model,
	}
	if cfg.BaseURL != "" {
		mc.BaseURL = cfg.BaseURL + "/api/v3"
	}
	if opts.MaxTokens > 0 {
		mc.MaxTokens = &opts.MaxTokens
	}
	if opts.Temperature > 0 {
		mc.Temperature = &opts.Temperature
	}
	cm, err := ark.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return cm, nil
}
