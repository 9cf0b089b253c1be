package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "lowercase and punctuation",
			in:   "Environmentally-Conscious Millennials, with HIGH income!",
			want: []string{"environmentally", "conscious", "millennials", "high", "income"},
		},
		{
			name: "stopwords dropped",
			in:   "people who live in the city",
			want: []string{"people", "live", "city"},
		},
		{
			name: "apostrophe collapses",
			in:   "don't commute",
			want: []string{"dont", "commute"},
		},
		{
			name: "digits kept",
			in:   "aged 18 to 24",
			want: []string{"aged", "18", "24"},
		},
		{
			name: "whitespace only",
			in:   "  \t \n ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, append([]string{}, Tokenize(tt.in)...))
		})
	}
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("the"))
	assert.False(t, IsStopword("income"))
}
