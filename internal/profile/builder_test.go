package profile

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storyweaver/internal/model"
)

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, image []byte) (model.Traits, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(model.Traits), args.Error(1)
}

func testRequest() model.StoryRequest {
	return model.StoryRequest{
		Gender: model.GenderFemale, Name: "Mia", Age: 6, Style: model.StyleCartoon,
		Language: model.LanguageEnglish, StoryIdea: "a lost kitten finds home", ChapterCount: model.ChapterFour,
	}
}

func quietLogger() (logrus.FieldLogger, *test.Hook) {
	return test.NewNullLogger()
}

func TestBuild_NoImage(t *testing.T) {
	logger, _ := quietLogger()
	b := NewBuilder(nil, logger)

	p := b.Build(context.Background(), testRequest(), nil)

	assert.Nil(t, p.Traits)
	assert.Equal(t,
		"bright, animated, cartoon-style illustration with bold colors and fun characters, featuring Mia as main character, "+
			"a young girl of 6 years old. Keep the same character appearance and cartoon art style on every page. "+
			"Story theme: a lost kitten finds home",
		p.CanonicalDescription)
}

func TestBuild_WithTraits(t *testing.T) {
	img := []byte{0x89, 'P', 'N', 'G'}

	t.Run("eyebrow defaults to hair", func(t *testing.T) {
		m := &mockAnalyzer{}
		m.On("Analyze", mock.Anything, img).Return(model.Traits{SkinColor: "fair", HairColor: "auburn"}, nil).Once()
		logger, _ := quietLogger()

		p := NewBuilder(m, logger).Build(context.Background(), testRequest(), img)

		m.AssertExpectations(t)
		if assert.NotNil(t, p.Traits) {
			assert.Equal(t, "auburn", p.Traits.EyebrowColor)
		}
		assert.Contains(t, p.CanonicalDescription, "Character has fair skin, auburn hair, auburn eyebrows")
		assert.Contains(t, p.CanonicalDescription, "Keep the same character appearance")
	})

	t.Run("only present fields are described", func(t *testing.T) {
		m := &mockAnalyzer{}
		m.On("Analyze", mock.Anything, img).Return(model.Traits{SkinColor: " tan "}, nil)
		logger, _ := quietLogger()

		p := NewBuilder(m, logger).Build(context.Background(), testRequest(), img)

		assert.Contains(t, p.CanonicalDescription, "Character has tan skin. Keep")
		assert.NotContains(t, p.CanonicalDescription, "hair")
	})

	t.Run("analysis failure degrades to no traits", func(t *testing.T) {
		m := &mockAnalyzer{}
		m.On("Analyze", mock.Anything, img).Return(model.Traits{}, fmt.Errorf("%w: timeout", ErrAnalysis))
		logger, hook := quietLogger()

		p := NewBuilder(m, logger).Build(context.Background(), testRequest(), img)

		assert.Nil(t, p.Traits)
		assert.Equal(t, Describe(testRequest(), nil), p.CanonicalDescription)
		if assert.NotNil(t, hook.LastEntry()) {
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		}
	})

	t.Run("empty analysis result", func(t *testing.T) {
		m := &mockAnalyzer{}
		m.On("Analyze", mock.Anything, img).Return(model.Traits{HairColor: "  "}, nil)
		logger, _ := quietLogger()

		p := NewBuilder(m, logger).Build(context.Background(), testRequest(), img)

		assert.Nil(t, p.Traits)
		assert.NotContains(t, p.CanonicalDescription, "Character has")
	})

	t.Run("image without analyzer", func(t *testing.T) {
		logger, hook := quietLogger()

		p := NewBuilder(nil, logger).Build(context.Background(), testRequest(), img)

		assert.Nil(t, p.Traits)
		assert.Len(t, hook.AllEntries(), 1)
	})
}

func TestDescribe_Fallbacks(t *testing.T) {
	req := testRequest()
	req.Style = "Noir"
	req.Language = "German"

	d := Describe(req, nil)

	assert.Contains(t, d, "illustration, featuring Mia as main character, a child of 6 years old")
	assert.NotContains(t, d, "..")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, model.Traits{HairColor: "black", EyebrowColor: "brown"},
		Normalize(model.Traits{HairColor: "black ", EyebrowColor: "brown"}))
	assert.Equal(t, model.Traits{}, Normalize(model.Traits{}))
}
