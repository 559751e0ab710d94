package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Soften(t *testing.T) {
	f := New()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase word replaced",
			input:    "where is the fucking usb",
			expected: "where is the damn usb",
		},
		{
			name:     "all caps preserved",
			input:    "this is BULLSHIT",
			expected: "this is NONSENSE",
		},
		{
			name:     "title case preserved",
			input:    "Bullshit, Lola.",
			expected: "Nonsense, Lola.",
		},
		{
			name:     "word boundaries respected",
			input:    "the shitake mushrooms",
			expected: "the shitake mushrooms",
		},
		{
			name:     "clean text untouched",
			input:    "Tell me about the power outage.",
			expected: "Tell me about the power outage.",
		},
		{
			name:     "multiple words",
			input:    "you goddamn bastard",
			expected: "you damn crook",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Soften(tt.input))
		})
	}
}

func TestFilter_Flags(t *testing.T) {
	f := New()
	assert.True(t, f.Flags("cut the bullshit"))
	assert.True(t, f.Flags("CUT THE BULLSHIT"))
	assert.False(t, f.Flags("tell me the truth"))
	assert.False(t, f.Flags(""))
}
