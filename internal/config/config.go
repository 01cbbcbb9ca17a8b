package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/volc"
)

// Config 服务配置，全部来自环境变量
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"` // 为空时输出到 stderr

	ArkAPIKey            string        `envconfig:"ARK_API_KEY"`
	ArkBaseURL           string        `envconfig:"ARK_BASE_URL"`
	ArkRegion            string        `envconfig:"ARK_REGION" default:"cn-beijing"`
	ArkMock              bool          `envconfig:"ARK_MOCK" default:"false"`
	ArkChatModel         string        `envconfig:"ARK_CHAT_MODEL"`   // 为空时只使用模板生成故事
	ArkVisionModel       string        `envconfig:"ARK_VISION_MODEL"` // 为空时不分析参考图
	ArkImageModel        string        `envconfig:"ARK_IMAGE_MODEL" default:"seedream-4-0-250828"`
	ArkTimeout           time.Duration `envconfig:"ARK_TIMEOUT" default:"60s"`
	ArkImageRateInterval time.Duration `envconfig:"ARK_IMAGE_RATE_INTERVAL" default:"2s"`

	VisionCacheTTL time.Duration `envconfig:"VISION_CACHE_TTL" default:"10m"`
	MaxUploadMB    int64         `envconfig:"MAX_UPLOAD_MB" default:"10"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return &cfg, nil
}

// MaxUploadBytes 上传图片大小上限
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Ark 转换为 Ark 客户端配置
func (c *Config) Ark(logger logrus.FieldLogger) volc.Config {
	return volc.Config{
		BaseURL:       c.ArkBaseURL,
		APIKey:        c.ArkAPIKey,
		Region:        c.ArkRegion,
		Timeout:       c.ArkTimeout,
		Mock:          c.ArkMock,
		ImageInterval: c.ArkImageRateInterval,
		Logger:        logger,
	}
}

// InitLogger 配置 logrus，返回需要在退出时关闭的日志文件
func InitLogger(c *Config) (io.Closer, error) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	logrus.SetLevel(level)

	if c.LogFile == "" {
		return nopCloser{}, nil
	}
	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, logFile))
	return logFile, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
