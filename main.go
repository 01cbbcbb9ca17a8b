package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/api"
	"storyweaver/internal/config"
	"storyweaver/internal/llm"
	"storyweaver/internal/narrative"
	"storyweaver/internal/profile"
	"storyweaver/internal/service"
	"storyweaver/internal/tools"
	"storyweaver/internal/volc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("加载配置失败: %v", err)
	}
	logFile, err := config.InitLogger(cfg)
	if err != nil {
		logrus.Fatalf("初始化日志失败: %v", err)
	}
	defer logFile.Close()
	logger := logrus.StandardLogger()

	ctx := context.Background()

	// 初始化ArkClient
	arkCfg := cfg.Ark(logger)
	arkClient := volc.NewArkClient(arkCfg)
	if !arkClient.Configured() {
		logger.Warn("ARK_API_KEY 未设置，图生图接口不可用")
	}

	// 文本和视觉模型都是可选的，未配置时退回模板生成
	storyCfg := service.StoryConfig{Logger: logger}
	if cfg.ArkChatModel != "" {
		storyCfg.Text = newStoryWriter(ctx, arkCfg, cfg.ArkChatModel, logger)
	}
	if cfg.ArkVisionModel != "" {
		storyCfg.Vision = newPortraitAnalyzer(ctx, arkCfg, cfg.ArkVisionModel, cfg.VisionCacheTTL, logger)
	}
	stories := service.NewStoryService(storyCfg)

	images := service.NewImageRelayService(service.ImageRelayConfig{
		Client:         arkClient,
		Model:          cfg.ArkImageModel,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Configured:     arkClient.Configured(),
		Logger:         logger,
	})

	handler := &api.Handler{
		Stories:        stories,
		Images:         images,
		StoryTool:      tools.NewStoryTool(stories),
		Metrics:        promhttp.HandlerFor(service.Registry(), promhttp.HandlerOpts{}),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         logger,
	}

	// 初始化Gin路由
	router := gin.New()
	router.Use(gin.Recovery())
	handler.Register(router)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	// 在goroutine中启动服务器
	go func() {
		logger.Infof("服务器启动在 %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("启动服务器失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
		return
	}

	logger.Info("服务器已关闭")
}

// newStoryWriter 创建失败时返回 nil，故事服务只使用模板
func newStoryWriter(ctx context.Context, arkCfg volc.Config, modelName string, logger logrus.FieldLogger) narrative.TextGenerator {
	cm, err := volc.NewChatModel(ctx, arkCfg, volc.ChatModelOptions{Model: modelName, MaxTokens: 2048, Temperature: 0.7})
	if err != nil {
		logger.WithError(err).Warn("文本模型初始化失败，使用模板生成故事")
		return nil
	}
	writer, err := llm.NewStoryWriter(ctx, cm)
	if err != nil {
		logger.WithError(err).Warn("文本模型初始化失败，使用模板生成故事")
		return nil
	}
	return writer
}

// newPortraitAnalyzer 创建失败时返回 nil，不分析参考图
func newPortraitAnalyzer(ctx context.Context, arkCfg volc.Config, modelName string, ttl time.Duration, logger logrus.FieldLogger) profile.VisionAnalyzer {
	cm, err := volc.NewChatModel(ctx, arkCfg, volc.ChatModelOptions{Model: modelName, MaxTokens: 300, Temperature: 0.1})
	if err != nil {
		logger.WithError(err).Warn("视觉模型初始化失败，不分析参考图")
		return nil
	}
	analyzer, err := llm.NewPortraitAnalyzer(ctx, cm)
	if err != nil {
		logger.WithError(err).Warn("视觉模型初始化失败，不分析参考图")
		return nil
	}
	return llm.NewCachedAnalyzer(analyzer, ttl)
}
