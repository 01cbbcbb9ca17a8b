// Package catalog 保存各语言的故事模板和各风格的插画提示词片段，初始化后只读。
package catalog

import (
	"strconv"
	"strings"

	"storyweaver/internal/model"
)

// DefaultStylePrompt 未知风格时使用的通用片段
const DefaultStylePrompt = "illustration"

// DefaultGenderAdjective 未知性别/语言组合时使用
const DefaultGenderAdjective = "a child"

// Narrative 一种语言的故事骨架，占位符为 {name} {age} {gender_adj} {idea}
type Narrative struct {
	Intro          string
	AdventureStart string
	Conflict       string
	Resolution     string
	Ending         string
	Continuation   string // 第5页之后的通用续写句
}

// Values 模板占位符取值
type Values struct {
	Name      string
	Age       int
	GenderAdj string
	Idea      string
}

var narratives = map[model.Language]Narrative{
	model.LanguageEnglish: {
		Intro:          "Once upon a time, there was {gender_adj} named {name}, who was {age} years old.",
		AdventureStart: "{name} discovered something magical that would change everything.",
		Conflict:       "But {name} faced a great challenge that tested their courage.",
		Resolution:     "With determination and heart, {name} found a way to overcome the obstacle.",
		Ending:         "And so {name} learned that with courage and kindness, anything is possible.",
		Continuation:   "The story of {name} continues with new adventures and discoveries.",
	},
	model.LanguageSpanish: {
		Intro:          "Érase una vez {gender_adj} de {age} años que se llamaba {name}.",
		AdventureStart: "{name} descubrió algo mágico que lo cambiaría todo.",
		Conflict:       "Pero {name} enfrentó un gran desafío que puso a prueba su valor.",
		Resolution:     "Con determinación y corazón, {name} encontró una manera de superar el obstáculo.",
		Ending:         "Y así {name} aprendió que con valor y bondad, todo es posible.",
		Continuation:   "La historia de {name} continúa con nuevas aventuras y descubrimientos.",
	},
	model.LanguageFrench: {
		Intro:          "Il était une fois {gender_adj} de {age} ans qui s'appelait {name}.",
		AdventureStart: "{name} découvrit quelque chose de magique qui allait tout changer.",
		Conflict:       "Mais {name} fit face à un grand défi qui testa son courage.",
		Resolution:     "Avec détermination et cœur, {name} trouva un moyen de surmonter l'obstacle.",
		Ending:         "Et ainsi {name} apprit qu'avec courage et gentillesse, tout est possible.",
		Continuation:   "L'histoire de {name} continue avec de nouvelles aventures et découvertes.",
	},
	model.LanguageItalian: {
		Intro:          "C'era una volta {gender_adj} di {age} anni di nome {name}.",
		AdventureStart: "{name} scoprì qualcosa di magico che avrebbe cambiato tutto.",
		Conflict:       "Ma {name} affrontò una grande sfida che mise alla prova il suo coraggio.",
		Resolution:     "Con determinazione e cuore, {name} trovò un modo per superare l'ostacolo.",
		Ending:         "E così {name} imparò che con coraggio e gentilezza, tutto è possibile.",
		Continuation:   "La storia di {name} continua con nuove avventure e scoperte.",
	},
	model.LanguageArabic: {
		Intro:          "كان يا ما كان، كان هناك {gender_adj} يبلغ من العمر {age} عامًا يُدعى {name}.",
		AdventureStart: "اكتشف {name} شيئًا سحريًا من شأنه أن يغير كل شيء.",
		Conflict:       "لكن {name} واجه تحديًا كبيرًا اختبر شجاعته.",
		Resolution:     "بالعزيمة والقلب، وجد {name} طريقة للتغلب على العقبة.",
		Ending:         "وهكذا تعلم {name} أنه بالشجاعة واللطف، كل شيء ممكن.",
		Continuation:   "تستمر قصة {name} بمغامرات واكتشافات جديدة.",
	},
}

var stylePrompts = map[model.Style]string{
	model.StyleCartoon:      "bright, animated, cartoon-style illustration with bold colors and fun characters",
	model.StyleStorybook:    "classic storybook illustration with soft watercolor style and whimsical details",
	model.StyleIllustration: "detailed digital illustration with rich colors and artistic composition",
	model.StyleColorful:     "vibrant, colorful artwork with dynamic composition and cheerful atmosphere",
	model.StyleSimple:       "minimalist, clean illustration with simple shapes and gentle colors",
}

var genderAdjectives = map[model.Language]map[model.Gender]string{
	model.LanguageEnglish: {model.GenderMale: "a young boy", model.GenderFemale: "a young girl"},
	model.LanguageSpanish: {model.GenderMale: "un niño", model.GenderFemale: "una niña"},
	model.LanguageFrench:  {model.GenderMale: "un garçon", model.GenderFemale: "une fille"},
	model.LanguageItalian: {model.GenderMale: "un ragazzo", model.GenderFemale: "una ragazza"},
	model.LanguageArabic:  {model.GenderMale: "فتى", model.GenderFemale: "فتاة"},
}

// NarrativeTemplate 返回语言对应的故事模板，未知语言回退英文
func NarrativeTemplate(language model.Language) Narrative {
	if n, ok := narratives[language]; ok {
		return n
	}
	return narratives[model.LanguageEnglish]
}

// StylePrompt 返回风格对应的插画描述片段
func StylePrompt(style model.Style) string {
	if s, ok := stylePrompts[style]; ok {
		return s
	}
	return DefaultStylePrompt
}

// GenderAdjective 返回性别在该语言下的称呼
func GenderAdjective(gender model.Gender, language model.Language) string {
	if adj, ok := genderAdjectives[language][gender]; ok {
		return adj
	}
	return DefaultGenderAdjective
}

// ValuesFor 根据请求生成模板取值
func ValuesFor(req model.StoryRequest) Values {
	return Values{
		Name:      req.Name,
		Age:       req.Age,
		GenderAdj: GenderAdjective(req.Gender, req.Language),
		Idea:      req.StoryIdea,
	}
}

// Render 替换模板中的占位符
func Render(tpl string, v Values) string {
	r := strings.NewReplacer(
		"{name}", v.Name,
		"{age}", strconv.Itoa(v.Age),
		"{gender_adj}", v.GenderAdj,
		"{idea}", v.Idea,
	)
	return r.Replace(tpl)
}
