package narrative

import (
	"fmt"
	"strings"

	"storyweaver/internal/feature"
	"storyweaver/internal/model"
)

// maxSceneElements 插画提示词中保留的场景元素数
const maxSceneElements = 2

// ImageDescription 根据页面正文和角色描述生成该页的插画提示词
func ImageDescription(pageNumber int, content string, profile model.CharacterProfile) string {
	scene := feature.Extract(content)

	var b strings.Builder
	fmt.Fprintf(&b, "Page %d illustration design. %s. Page scene depicts %s.",
		pageNumber, profile.CanonicalDescription, strings.Join(sceneElements(scene), ", "))
	if words := feature.KeyContentWords(content); len(words) >= 2 {
		fmt.Fprintf(&b, " Story moment: '%s'.", strings.Join(words, " "))
	}
	b.WriteString(" Colorful, engaging design suitable for children's book")
	return b.String()
}

// sceneElements 按 动作、道具、地点、情绪 的优先级取前两个
func sceneElements(s feature.Scene) []string {
	var candidates []string
	if len(s.Actions) > 0 {
		candidates = append(candidates, s.Actions[0])
	}
	if len(s.Props) > 0 {
		candidates = append(candidates, s.Props[0])
	}
	candidates = append(candidates, "in "+s.Location)
	if len(s.Moods) > 0 {
		candidates = append(candidates, s.Moods[0])
	}
	if len(candidates) > maxSceneElements {
		candidates = candidates[:maxSceneElements]
	}
	return candidates
}

// TruncateWords 保留前 n 个空白分隔的词
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
