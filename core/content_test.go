package core

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		limit int
		want  string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"cut inside a rune backs off", "ab世界", 3, "ab"},
		{"cut at a rune boundary", "ab世界", 5, "ab世"},
		{"zero limit", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncateLongMultibyte(t *testing.T) {
	s := strings.Repeat("é", SampleLimit) // 2 bytes each

	got := Truncate(s, SampleLimit)

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), SampleLimit)
}
