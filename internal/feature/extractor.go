// Package feature 通过关键词匹配从页面正文中提取场景、道具、动作和情绪，用于丰富插画提示词。
//
// 这是粗粒度的启发式规则：表按声明顺序遍历，命中即取，不考虑匹配的具体程度。
package feature

import (
	"strings"
	"unicode/utf8"
)

// DefaultLocation 没有命中任何地点关键词时的场景
const DefaultLocation = "a whimsical storybook setting"

// entry 标签及其关键词
type entry struct {
	label    string
	keywords []string
}

var locations = []entry{
	{"forest", []string{"forest", "trees", "woods", "jungle"}},
	{"magical enchanted forest with glowing trees and fairy lights", []string{"magical forest", "enchanted", "fairy"}},
	{"royal castle with tall towers and golden gates", []string{"castle", "palace", "kingdom", "royal"}},
	{"beautiful garden with colorful flowers and butterflies", []string{"garden", "flowers", "butterfly", "bloom"}},
	{"mysterious cave with sparkling crystals", []string{"cave", "crystal", "underground"}},
	{"peaceful meadow with rolling hills", []string{"meadow", "field", "grass", "hills"}},
	{"cozy home with warm lighting", []string{"home", "house", "room", "attic"}},
	{"starry night sky with twinkling stars", []string{"night", "stars", "moon", "sky"}},
	{"sunny beach with golden sand", []string{"beach", "sand", "ocean", "sea"}},
	{"snowy mountain peak", []string{"mountain", "snow", "peak", "cold"}},
}

var props = []entry{
	{"holding a magical paintbrush", []string{"paint", "brush", "canvas", "art"}},
	{"surrounded by colorful butterflies", []string{"butterfly", "butterflies"}},
	{"with a wise owl companion", []string{"owl", "bird"}},
	{"near a treasure chest", []string{"treasure", "chest", "gold"}},
	{"with a glowing wand", []string{"wand", "magic", "spell"}},
	{"reading an ancient book", []string{"book", "reading", "story"}},
	{"wearing a beautiful crown", []string{"crown", "princess", "prince"}},
	{"with a friendly dragon", []string{"dragon", "creature"}},
	{"holding a lantern", []string{"lantern", "light", "glow"}},
	{"with musical instruments", []string{"music", "song", "singing"}},
}

var actions = []entry{
	{"dancing gracefully", []string{"dance", "dancing", "twirl"}},
	{"running through the scene", []string{"running", "chase", "hurry", "race"}},
	{"flying through the air", []string{"fly", "flying", "soar"}},
	{"climbing or exploring", []string{"climb", "explore", "adventure"}},
	{"painting or creating art", []string{"paint", "draw", "create", "art"}},
	{"discovering something wonderful", []string{"discover", "find", "found", "surprise"}},
	{"talking to animals", []string{"talk", "speak", "conversation", "animal"}},
	{"solving a puzzle or problem", []string{"solve", "think", "problem", "puzzle"}},
	{"helping friends", []string{"help", "friend", "together", "team"}},
	{"celebrating or cheering", []string{"celebrate", "cheer", "victory", "success"}},
}

var moods = []entry{
	{"with a bright, joyful smile", []string{"happy", "joy", "smile", "laugh", "giggle"}},
	{"with wonder and curiosity in their eyes", []string{"wonder", "curious", "amazed", "surprise"}},
	{"with determination and courage", []string{"brave", "courage", "determined", "strong"}},
	{"with a gentle, kind expression", []string{"kind", "gentle", "caring", "love"}},
	{"with excitement and energy", []string{"excited", "energy", "enthusiastic"}},
	{"with peaceful contentment", []string{"peaceful", "calm", "content", "serene"}},
	{"with focused concentration", []string{"focus", "concentrate", "think", "study"}},
	{"with magical sparkles around them", []string{"magic", "magical", "sparkle", "glow"}},
}

var stopWords = map[string]struct{}{
	"there": {}, "where": {}, "their": {}, "would": {}, "could": {},
	"should": {}, "about": {}, "after": {}, "before": {},
}

// maxKeyWords 提示词中保留的关键词数
const maxKeyWords = 2

// Scene 一页正文提取出的视觉特征
type Scene struct {
	Location string   `json:"location"`
	Props    []string `json:"props,omitempty"`
	Actions  []string `json:"actions,omitempty"`
	Moods    []string `json:"moods,omitempty"`
}

// Extract 提取页面的场景特征。地点只取第一个命中，其余类别按声明顺序返回全部命中
func Extract(text string) Scene {
	lower := strings.ToLower(text)
	scene := Scene{Location: DefaultLocation}
	if loc := matchAll(lower, locations); len(loc) > 0 {
		scene.Location = loc[0]
	}
	scene.Props = matchAll(lower, props)
	scene.Actions = matchAll(lower, actions)
	scene.Moods = matchAll(lower, moods)
	return scene
}

func matchAll(lower string, table []entry) []string {
	var out []string
	for _, e := range table {
		for _, kw := range e.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, e.label)
				break
			}
		}
	}
	return out
}

// KeyContentWords 返回正文中前两个长度大于4的非停用词（小写）
func KeyContentWords(text string) []string {
	out := make([]string, 0, maxKeyWords)
	for _, w := range strings.Fields(text) {
		if utf8.RuneCountInString(w) <= 4 {
			continue
		}
		lw := strings.ToLower(w)
		if _, stop := stopWords[lw]; stop {
			continue
		}
		out = append(out, lw)
		if len(out) == maxKeyWords {
			break
		}
	}
	return out
}
