package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/model"
	"storyweaver/internal/service"
)

// StoryService 故事生成服务
type StoryService interface {
	GenerateStory(ctx context.Context, req model.StoryRequest, image []byte) model.GenerationResult
	DescribeCapabilities() model.Capabilities
}

// ImageRelay 图生图服务
type ImageRelay interface {
	Generate(ctx context.Context, prompt string, img []byte) service.ImageResult
	Health() service.RelayHealth
	Info() service.RelayInfo
}

// Handler HTTP 接口
type Handler struct {
	Stories        StoryService
	Images         ImageRelay
	StoryTool      einotool.InvokableTool
	Metrics        http.Handler // 为空时不注册 /metrics
	MaxUploadBytes int64
	Logger         logrus.FieldLogger
}

// storyBody JSON 和表单共用的请求字段
type storyBody struct {
	Gender        model.Gender       `json:"gender" form:"gender"`
	Name          string             `json:"name" form:"name"`
	Age           int                `json:"age" form:"age"`
	Style         model.Style        `json:"style" form:"style"`
	Language      model.Language     `json:"language" form:"language"`
	StoryIdea     string             `json:"story_idea" form:"story_idea"`
	ChapterNumber model.ChapterCount `json:"chapter_number" form:"chapter_number"`
}

func (b storyBody) request() (model.StoryRequest, error) {
	return model.NewStoryRequest(b.Gender, b.Name, b.Age, b.Style, b.Language, b.StoryIdea, b.ChapterNumber)
}

// Register 注册全部路由
func (h *Handler) Register(r *gin.Engine) {
	r.Use(RequestID(), Logger(h.logger()))

	story := r.Group("/text-with-image")
	story.POST("/generate-story-simple", h.generateStorySimple)
	story.POST("/generate-story", h.generateStory)
	story.GET("/info", h.storyInfo)

	r.POST("/image-to-image", h.imageToImage)
	r.GET("/image-to-image/health", h.imageHealth)
	r.GET("/image-to-image/info", h.imageInfo)

	if h.StoryTool != nil {
		r.POST("/tools/story-generate", h.storyTool)
	}
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}
}

// generateStorySimple 处理不带参考图的 JSON 请求
func (h *Handler) generateStorySimple(c *gin.Context) {
	var body storyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
		return
	}
	req, err := body.request()
	if err != nil {
		h.validationFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Stories.GenerateStory(c.Request.Context(), req, nil))
}

// generateStory 处理 multipart 请求，image 字段可选
func (h *Handler) generateStory(c *gin.Context) {
	var body storyBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid form: " + err.Error()})
		return
	}
	req, err := body.request()
	if err != nil {
		h.validationFailed(c, err)
		return
	}

	var img []byte
	if fh, err := c.FormFile("image"); err == nil {
		img, err = h.readImage(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid image upload: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.Stories.GenerateStory(c.Request.Context(), req, img))
}

func (h *Handler) storyInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.Stories.DescribeCapabilities())
}

// imageToImage 转发上传图片和提示词
func (h *Handler) imageToImage(c *gin.Context) {
	prompt := c.PostForm("prompt")
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "image file is required"})
		return
	}
	img, err := h.readImage(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Images.Generate(c.Request.Context(), prompt, img))
}

func (h *Handler) imageHealth(c *gin.Context) {
	health := h.Images.Health()
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusInternalServerError
	}
	c.JSON(status, health)
}

func (h *Handler) imageInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.Images.Info())
}

// storyTool 直接以请求体作为工具参数调用
func (h *Handler) storyTool(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.StoryTool.InvokableRun(c.Request.Context(), string(body))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, model.ErrValidation) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": fmt.Sprintf("story generation failed: %v", err)})
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(result))
}

func (h *Handler) validationFailed(c *gin.Context, err error) {
	resp := gin.H{"success": false, "message": err.Error()}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		resp["errors"] = verr.Fields
	}
	h.logger().WithField("request_id", service.RequestID(c.Request.Context())).WithError(err).Warn("invalid story request")
	c.JSON(http.StatusUnprocessableEntity, resp)
}

// readImage 读取上传图片，检查类型和大小
func (h *Handler) readImage(fh *multipart.FileHeader) ([]byte, error) {
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("invalid file type %q, please upload an image file", ct)
	}
	limit := h.maxUploadBytes()
	if fh.Size > limit {
		return nil, fmt.Errorf("image exceeds maximum allowed size (%s bytes)", strconv.FormatInt(limit, 10))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("error reading uploaded image file: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("error reading uploaded image file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image exceeds maximum allowed size (%s bytes)", strconv.FormatInt(limit, 10))
	}
	if len(data) == 0 {
		return nil, errors.New("empty image file")
	}
	return data, nil
}

func (h *Handler) maxUploadBytes() int64 {
	if h.MaxUploadBytes <= 0 {
		return service.DefaultMaxUploadBytes
	}
	return h.MaxUploadBytes
}

func (h *Handler) logger() logrus.FieldLogger {
	if h.Logger == nil {
		return logrus.StandardLogger()
	}
	return h.Logger
}
