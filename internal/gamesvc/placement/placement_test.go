package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	tests := []struct {
		name    string
		content string
		word    string
		want    bool
	}{
		{"plain", "I really like apple pie", "apple", true},
		{"case insensitive", "APPLE season", "apple", true},
		{"inside word", "pineapples are great", "apple", true},
		{"absent", "nothing to see", "apple", false},
		{"in link", "look https://example.com/apple.png", "apple", false},
		{"link and text", "https://example.com/x.png apple", "apple", true},
		{"code block language", "```apple\nfmt.Println()\n```", "apple", false},
		{"code block body", "```go\napple := 1\n```", "apple", true},
		{"custom emoji", "nice <:apple:123456789012345678>", "apple", false},
		{"animated emoji", "<a:apple:12345678901234567890>", "apple", false},
		{"empty word", "anything", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(tt.content, tt.word))
		})
	}
}
