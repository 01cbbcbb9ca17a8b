package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyweaver/internal/model"
)

// fakeText 函数式的 TextGenerator
type fakeText struct {
	fn    func(system, user string) (*Draft, error)
	calls int
}

func (f *fakeText) GenerateStructured(_ context.Context, system, user string) (*Draft, error) {
	f.calls++
	return f.fn(system, user)
}

var testProfile = model.CharacterProfile{CanonicalDescription: "CANON"}

func request(chapters model.ChapterCount) model.StoryRequest {
	return model.StoryRequest{
		Gender: model.GenderFemale, Name: "Mia", Age: 6, Style: model.StyleCartoon,
		Language: model.LanguageEnglish, StoryIdea: "a lost kitten finds home", ChapterCount: chapters,
	}
}

func newGenerator(text TextGenerator) *Generator {
	logger, _ := test.NewNullLogger()
	return NewGenerator(text, logger)
}

func assertWellFormed(t *testing.T, pages []model.StoryPage, want int) {
	t.Helper()
	require.Len(t, pages, want)
	for i, p := range pages {
		assert.Equal(t, i+1, p.PageNumber)
		assert.LessOrEqual(t, len(strings.Fields(p.Content)), MaxWordsPerPage)
		assert.True(t, strings.HasPrefix(p.ImageDescription, fmt.Sprintf("Page %d illustration design. CANON.", i+1)), p.ImageDescription)
	}
}

func TestTemplatePages_Single(t *testing.T) {
	pages, tier := newGenerator(nil).GeneratePages(context.Background(), request(model.ChapterSingle), testProfile)

	assert.Equal(t, TierTemplate, tier)
	assertWellFormed(t, pages, 1)
	assert.Equal(t, "The Adventure of Mia", pages[0].Title)
	assert.Contains(t, pages[0].Content, "Mia")
	assert.Contains(t, pages[0].Content, "a lost kitten finds home.")
	assert.True(t, strings.HasPrefix(pages[0].Content, "Once upon a time"))
}

func TestTemplatePages_Multi(t *testing.T) {
	t.Run("four pages use the first four slots", func(t *testing.T) {
		pages := TemplatePages(request(model.ChapterFour), testProfile)
		assertWellFormed(t, pages, 4)

		titles := make([]string, 0, len(pages))
		for _, p := range pages {
			titles = append(titles, p.Title)
		}
		assert.Equal(t, []string{"Introduction", "Adventure Begins", "The Challenge", "Resolution"}, titles)
		assert.True(t, strings.HasSuffix(pages[1].Content, "a lost kitten finds home"))
	})

	t.Run("pages past the skeleton continue the story", func(t *testing.T) {
		pages := TemplatePages(request(model.ChapterSix), testProfile)
		assertWellFormed(t, pages, 6)
		assert.Equal(t, "Happy Ending", pages[4].Title)
		assert.Equal(t, "Chapter 6", pages[5].Title)
		assert.Equal(t, "The story of Mia continues with new adventures and discoveries.", pages[5].Content)
	})

	t.Run("ten pages", func(t *testing.T) {
		pages := TemplatePages(request(model.ChapterTen), testProfile)
		assertWellFormed(t, pages, 10)
		assert.Equal(t, "Chapter 10", pages[9].Title)
	})

	t.Run("long idea is truncated", func(t *testing.T) {
		req := request(model.ChapterTwo)
		req.StoryIdea = strings.Repeat("kitten ", 40)
		pages := TemplatePages(req, testProfile)
		assertWellFormed(t, pages, 2)
		assert.Len(t, strings.Fields(pages[1].Content), MaxWordsPerPage)
	})

	t.Run("unknown language falls back to English", func(t *testing.T) {
		req := request(model.ChapterSingle)
		req.Language = "German"
		pages := TemplatePages(req, testProfile)
		require.Len(t, pages, 1)
		assert.True(t, strings.HasPrefix(pages[0].Content, "Once upon a time, there was a child named Mia"))
	})

	t.Run("localized templates", func(t *testing.T) {
		req := request(model.ChapterSix)
		req.Language = model.LanguageSpanish
		pages := TemplatePages(req, testProfile)
		assert.True(t, strings.HasPrefix(pages[0].Content, "Érase una vez una niña"))
		assert.Contains(t, pages[5].Content, "La historia de Mia")
	})
}

func TestGeneratePages_Generative(t *testing.T) {
	t.Run("draft is used and renumbered", func(t *testing.T) {
		text := &fakeText{fn: func(system, user string) (*Draft, error) {
			assert.Contains(t, system, "children's story writer")
			assert.Contains(t, user, "Create a 2-page children's story about Mia")
			return &Draft{Pages: []DraftPage{
				{PageNumber: 7, Title: " Meeting Whiskers ", Content: strings.Repeat("word ", 30)},
				{PageNumber: 9, Title: "Home Again", Content: "Mia found the kitten a happy home."},
			}}, nil
		}}

		pages, tier := newGenerator(text).GeneratePages(context.Background(), request(model.ChapterTwo), testProfile)

		assert.Equal(t, TierGenerative, tier)
		assert.Equal(t, 1, text.calls)
		assertWellFormed(t, pages, 2)
		assert.Equal(t, "Meeting Whiskers", pages[0].Title)
		assert.Len(t, strings.Fields(pages[0].Content), MaxWordsPerPage)
		assert.Equal(t, "Mia found the kitten a happy home.", pages[1].Content)
	})

	failures := []struct {
		name string
		fn   func(system, user string) (*Draft, error)
	}{
		{"collaborator error", func(string, string) (*Draft, error) {
			return nil, fmt.Errorf("%w: timeout", ErrGeneration)
		}},
		{"nil draft", func(string, string) (*Draft, error) { return nil, nil }},
		{"wrong page count", func(string, string) (*Draft, error) {
			return &Draft{Pages: []DraftPage{{Title: "Only", Content: "one page"}}}, nil
		}},
		{"missing content", func(string, string) (*Draft, error) {
			return &Draft{Pages: []DraftPage{
				{Title: "One", Content: "first"}, {Title: "Two"}, {Title: "Three", Content: "third"}, {Title: "Four", Content: "fourth"},
			}}, nil
		}},
	}
	for _, tt := range failures {
		t.Run(tt.name+" falls back to templates", func(t *testing.T) {
			pages, tier := newGenerator(&fakeText{fn: tt.fn}).GeneratePages(context.Background(), request(model.ChapterFour), testProfile)

			assert.Equal(t, TierTemplate, tier)
			assertWellFormed(t, pages, 4)
			assert.Equal(t, "Introduction", pages[0].Title)
		})
	}
}

func TestCheckDraft(t *testing.T) {
	err := checkDraft(&Draft{}, 2)
	assert.True(t, errors.Is(err, ErrGeneration))
	assert.NoError(t, checkDraft(&Draft{Pages: []DraftPage{{Title: "a", Content: "b"}}}, 1))
}

func TestBuildPrompt(t *testing.T) {
	req := request(model.ChapterSix)
	req.Language = model.LanguageFrench

	system, user, err := BuildPrompt(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, systemInstruction, system)
	assert.Contains(t, user, "6-year-old female character")
	assert.Contains(t, user, "Write the story in French")
	assert.Contains(t, user, "EXACTLY 25 words or less")
	assert.Contains(t, user, `{"pages": [{"page_number": 1`)
	assert.NotContains(t, user, "{{")
}
