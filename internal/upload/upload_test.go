package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("images"))
	assert.True(t, ValidCategory("videos"))
	assert.True(t, ValidCategory("documents"))
	assert.False(t, ValidCategory("audio"))
	assert.False(t, ValidCategory(""))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		category string
		filename string
		size     int64
		want     error
	}{
		{"jpeg image ok", "images", "hall.JPG", 1 << 20, nil},
		{"webp image ok", "images", "hall.webp", 1 << 20, nil},
		{"image too large", "images", "hall.png", 6 << 20, ErrTooLarge},
		{"exe rejected", "images", "hall.exe", 1024, ErrBadExtension},
		{"no extension rejected", "images", "hall", 1024, ErrBadExtension},
		{"video ok", "videos", "tour.mp4", 50 << 20, nil},
		{"video too large", "videos", "tour.mp4", 101 << 20, ErrTooLarge},
		{"pdf ok", "documents", "license.pdf", 1 << 20, nil},
		{"doc size cap", "documents", "license.pdf", 11 << 20, ErrTooLarge},
		{"unknown category", "audio", "song.mp3", 1024, ErrUnknownCategory},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.category, tc.filename, tc.size)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}
