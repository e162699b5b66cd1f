package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageKey(t *testing.T) {
	k := imageKey("/projects/", "image/png")
	assert.True(t, strings.HasPrefix(k, "projects/"))
	assert.True(t, strings.HasSuffix(k, ".png"))
	assert.NotEqual(t, k, imageKey("projects", "image/png"))

	assert.False(t, strings.Contains(imageKey("avatars", "image/x-unknown"), "."))
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "http://cdn.local/bucket/avatars/a.jpg", imageURL("http://cdn.local/", "bucket", "avatars/a.jpg"))
}
