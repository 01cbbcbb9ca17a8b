package model

// Gender 角色性别
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Style 插画风格
type Style string

const (
	StyleCartoon      Style = "Cartoon"
	StyleStorybook    Style = "Storybook"
	StyleIllustration Style = "Illustration"
	StyleColorful     Style = "Colorful"
	StyleSimple       Style = "Simple"
)

// Language 故事语言
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageArabic  Language = "Arabic"
	LanguageFrench  Language = "French"
	LanguageSpanish Language = "Spanish"
	LanguageItalian Language = "Italian"
)

// ChapterCount 章节数选项，对应固定页数
type ChapterCount string

const (
	ChapterSingle ChapterCount = "Single"
	ChapterTwo    ChapterCount = "Two"
	ChapterFour   ChapterCount = "Four"
	ChapterSix    ChapterCount = "Six"
	ChapterTen    ChapterCount = "Ten"
)

var chapterPages = map[ChapterCount]int{
	ChapterSingle: 1,
	ChapterTwo:    2,
	ChapterFour:   4,
	ChapterSix:    6,
	ChapterTen:    10,
}

// Pages 返回章节选项对应的页数，未知选项按单页处理
func (c ChapterCount) Pages() int {
	if n, ok := chapterPages[c]; ok {
		return n
	}
	return 1
}

var (
	Genders       = []Gender{GenderMale, GenderFemale}
	Styles        = []Style{StyleCartoon, StyleStorybook, StyleIllustration, StyleColorful, StyleSimple}
	Languages     = []Language{LanguageEnglish, LanguageArabic, LanguageFrench, LanguageSpanish, LanguageItalian}
	ChapterCounts = []ChapterCount{ChapterSingle, ChapterTwo, ChapterFour, ChapterSix, ChapterTen}
)

// Traits 参考图中识别出的外貌特征，空字符串表示未识别
type Traits struct {
	SkinColor    string `json:"skin_color,omitempty"`
	HairColor    string `json:"hair_color,omitempty"`
	EyebrowColor string `json:"eyebrow_color,omitempty"`
}

// Empty 是否没有任何特征
func (t Traits) Empty() bool {
	return t.SkinColor == "" && t.HairColor == "" && t.EyebrowColor == ""
}

// CharacterProfile 单次生成内复用的角色描述，保证封面和每页插画一致
type CharacterProfile struct {
	CanonicalDescription string  `json:"canonical_description"`
	Traits               *Traits `json:"traits,omitempty"`
}

// StoryPage 故事单页
type StoryPage struct {
	PageNumber       int    `json:"page_number"`       // 页码，从1开始
	Title            string `json:"title"`             // 页标题
	Content          string `json:"content"`           // 正文，不超过25个词
	ImageDescription string `json:"image_description"` // 插画提示词
}

// GeneratedStory 完整的故事
type GeneratedStory struct {
	Title                 string      `json:"story_title"`
	CharacterName         string      `json:"character_name"`
	CharacterGender       Gender      `json:"character_gender"`
	CharacterAge          int         `json:"character_age"`
	Style                 Style       `json:"style"`
	Language              Language    `json:"language"`
	TotalChapters         int         `json:"total_chapters"`
	CoverImageDescription string      `json:"cover_image_description"`
	Pages                 []StoryPage `json:"pages"`
}

// GenerationResult 故事生成结果，Story 仅在成功时存在
type GenerationResult struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	Story          *GeneratedStory `json:"story,omitempty"`
	ElapsedSeconds float64         `json:"processing_time"`
}

// Capabilities 服务能力描述
type Capabilities struct {
	Service        string         `json:"service"`
	Description    string         `json:"description"`
	Version        string         `json:"version"`
	Genders        []Gender       `json:"supported_genders"`
	Styles         []Style        `json:"supported_styles"`
	Languages      []Language     `json:"supported_languages"`
	ChapterOptions []ChapterCount `json:"supported_chapters"`
	Features       []string       `json:"features"`
}
