package utils_test

import (
	"strings"
	"testing"

	"github.com/askstack/askstack/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "simple title",
			title:    "How do I use channels",
			expected: "how-do-i-use-channels",
		},
		{
			name:     "punctuation collapsed",
			title:    "What's the deal with nil maps?!",
			expected: "what-s-the-deal-with-nil-maps",
		},
		{
			name:     "digits kept",
			title:    "Go 1.24 generics",
			expected: "go-1-24-generics",
		},
		{
			name:     "leading and trailing noise",
			title:    "  ...weird title...  ",
			expected: "weird-title",
		},
		{
			name:     "empty",
			title:    "",
			expected: "",
		},
		{
			name:     "only punctuation",
			title:    "???",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, utils.Slugify(tt.title))
		})
	}
}

func TestSlugifyLength(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 100)
	slug := utils.Slugify(long)

	assert.LessOrEqual(t, len(slug), utils.MaxSlugLength)
	assert.False(t, strings.HasSuffix(slug, "-"))
	assert.True(t, strings.HasSuffix(slug, "word"), "should cut on a word boundary")
}
