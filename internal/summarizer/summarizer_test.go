package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/topicd/internal/topic"
)

func TestParseTopicInfo(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     TopicInfo
		wantErr  error
	}{
		{
			name:     "plain JSON",
			response: `{"name": "go concurrency", "description": "channels and goroutines"}`,
			want:     TopicInfo{Name: "go concurrency", Description: "channels and goroutines"},
		},
		{
			name: "fenced JSON",
			response: "```json\n" +
				`{"name": "deployment", "description": "rolling out the new release"}` +
				"\n```",
			want: TopicInfo{Name: "deployment", Description: "rolling out the new release"},
		},
		{
			name:     "near-JSON falls back to quoted-field scan",
			response: `{name: "databases", description: "postgres tuning",}`,
			want:     TopicInfo{Name: "databases", Description: "postgres tuning"},
		},
		{
			name:     "empty response",
			response: "",
			wantErr:  ErrEmptyResponse,
		},
		{
			name:     "empty after fence stripping",
			response: "```json\n```",
			wantErr:  ErrEmptyResponse,
		},
		{
			name:     "unparsable prose",
			response: "I could not determine a topic for this conversation.",
			wantErr:  ErrMalformedResponse,
		},
		{
			name:     "missing description",
			response: `{"name": "only a name"}`,
			wantErr:  ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTopicInfo(tt.response)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopicInfoPrompt(t *testing.T) {
	history := []topic.Message{
		{Role: topic.RoleUser, Content: "how do I tune postgres?"},
		{Role: topic.RoleAssistant, Content: "start with shared_buffers"},
	}

	prompt := TopicInfoPrompt(history)
	require.Len(t, prompt, 2)
	assert.Equal(t, topic.RoleSystem, prompt[0].Role)
	assert.Equal(t, topic.RoleUser, prompt[1].Role)
	assert.Contains(t, prompt[1].Content, "user: how do I tune postgres?")
	assert.Contains(t, prompt[1].Content, "assistant: start with shared_buffers")
}
