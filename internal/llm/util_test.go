package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON untouched",
			input:    `{"term_1m": 3.1}`,
			expected: `{"term_1m": 3.1}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"term_1m\": 3.1}\n```",
			expected: `{"term_1m": 3.1}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"term_1m\": 3.1}\n```",
			expected: `{"term_1m": 3.1}`,
		},
		{
			name:     "fence with language id",
			input:    "```javascript\n{\"term_1m\": 3.1}\n```",
			expected: `{"term_1m": 3.1}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n```json\n{\"items\": []}\n```\n ",
			expected: `{"items": []}`,
		},
		{
			name:     "fence glued to content",
			input:    "```{\"term_1m\": 3.1}```",
			expected: `{"term_1m": 3.1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestGetModelFallsBackToStandard(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(ModelTier("unknown")))

	empty := &Config{Models: map[ModelTier]string{}}
	assert.Empty(t, empty.GetModel(TierLite))
}
