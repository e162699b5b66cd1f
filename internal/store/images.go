package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// imageKey builds a fresh object key under folder. The key doubles as the
// image's public id.
func imageKey(folder, contentType string) string {
	return fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.NewString(), imageExt[contentType])
}

func imageURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, key)
}
