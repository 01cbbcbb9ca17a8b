package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storyweaver/internal/model"
)

type mockStories struct {
	mock.Mock
}

func (m *mockStories) GenerateStory(ctx context.Context, req model.StoryRequest, image []byte) model.GenerationResult {
	args := m.Called(ctx, req, image)
	return args.Get(0).(model.GenerationResult)
}

func TestStoryTool_Info(t *testing.T) {
	info, err := NewStoryTool(&mockStories{}).Info(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "story_generate", info.Name)
	assert.NotNil(t, info.ParamsOneOf)
}

func TestStoryTool_InvokableRun(t *testing.T) {
	ctx := context.Background()

	t.Run("valid arguments", func(t *testing.T) {
		stories := &mockStories{}
		stories.On("GenerateStory", ctx, mock.MatchedBy(func(r model.StoryRequest) bool {
			return r.Name == "Leo" && r.ChapterCount == model.ChapterTwo
		}), []byte(nil)).Return(model.GenerationResult{Success: true, Message: "ok"}).Once()

		out, err := NewStoryTool(stories).InvokableRun(ctx,
			`{"gender":"Male","name":" Leo ","age":7,"style":"Simple","language":"French","story_idea":"a dragon learns to share","chapter_number":"Two"}`)

		require.NoError(t, err)
		stories.AssertExpectations(t)
		var res model.GenerationResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.True(t, res.Success)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		stories := &mockStories{}
		tool := NewStoryTool(stories)

		_, err := tool.InvokableRun(ctx, `{"gender":"Male","name":"Leo","age":0}`)
		assert.ErrorIs(t, err, model.ErrValidation)

		_, err = tool.InvokableRun(ctx, `not json`)
		assert.Error(t, err)

		stories.AssertNotCalled(t, "GenerateStory", mock.Anything, mock.Anything, mock.Anything)
	})
}
