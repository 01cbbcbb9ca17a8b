package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidation 请求参数不合法
var ErrValidation = errors.New("invalid story request")

// FieldError 单个字段的校验失败
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError 请求校验失败，在任何生成工作开始前返回
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StoryRequest 故事生成请求，通过 NewStoryRequest 构造后按值传递
type StoryRequest struct {
	Gender       Gender       `json:"gender" validate:"required,oneof=Male Female"`
	Name         string       `json:"name" validate:"required,min=1,max=50"`
	Age          int          `json:"age" validate:"min=1,max=100"`
	Style        Style        `json:"style" validate:"required,oneof=Cartoon Storybook Illustration Colorful Simple"`
	Language     Language     `json:"language" validate:"required,oneof=English Arabic French Spanish Italian"`
	StoryIdea    string       `json:"story_idea" validate:"required,min=10,max=1000"`
	ChapterCount ChapterCount `json:"chapter_number" validate:"required,oneof=Single Two Four Six Ten"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// NewStoryRequest 构造并校验请求
func NewStoryRequest(gender Gender, name string, age int, style Style, language Language, storyIdea string, chapters ChapterCount) (StoryRequest, error) {
	req := StoryRequest{
		Gender:       gender,
		Name:         strings.TrimSpace(name),
		Age:          age,
		Style:        style,
		Language:     language,
		StoryIdea:    strings.TrimSpace(storyIdea),
		ChapterCount: chapters,
	}
	if err := req.Validate(); err != nil {
		return StoryRequest{}, err
	}
	return req, nil
}

// Validate 校验请求字段
func (r StoryRequest) Validate() error {
	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: jsonName(fe.Field()), Reason: reason(fe)})
	}
	return out
}

// Pages 请求的页数
func (r StoryRequest) Pages() int {
	return r.ChapterCount.Pages()
}

func jsonName(field string) string {
	switch field {
	case "StoryIdea":
		return "story_idea"
	case "ChapterCount":
		return "chapter_number"
	default:
		return strings.ToLower(field)
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
