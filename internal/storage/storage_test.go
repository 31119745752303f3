package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"simple", "cover.png", "cover.png"},
		{"spaces and case", "Family Portrait.JPG", "family_portrait.jpg"},
		{"special characters", "père&mère!.png", "p_re_m_re_.png"},
		{"collapses underscores", "a___b.png", "a_b.png"},
		{"empty", "", "unnamed"},
		{"only specials", "???", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.filename))
		})
	}
}

func TestSanitizeFilenameLimitsLength(t *testing.T) {
	long := strings.Repeat("a", 300) + ".png"
	got := SanitizeFilename(long)
	assert.LessOrEqual(t, len(got), 200)
}

func TestMediaKeyShape(t *testing.T) {
	key := MediaKey("covers", "fam-123", "My Cover.png")
	parts := strings.Split(key, "/")
	assert.Len(t, parts, 3)
	assert.Equal(t, "covers", parts[0])
	assert.Equal(t, "fam-123", parts[1])
	assert.True(t, strings.HasSuffix(parts[2], "-my_cover.png"))
}
