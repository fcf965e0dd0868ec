package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(context.Background(), Config{})
	assert.Error(t, err)

	s, err := NewLLMService(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.NoError(t, s.Close())
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			name: "joins parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "Paris "}, {Text: "is the capital."}}},
			}}},
			want: "Paris is the capital.",
		},
		{
			name: "skips empty candidates",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: ""}}}},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "second"}}}},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "third"}}}},
			}},
			want: "second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, responseText(tt.resp))
		})
	}
}
