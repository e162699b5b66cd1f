package httpx

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
)

// Upload is an image read from a multipart form.
type Upload struct {
	Data        []byte
	ContentType string
}

// ReadImage parses a multipart form and returns the file in field. The file
// must be at most maxBytes and sniff as an image.
func ReadImage(r *http.Request, field string, maxBytes int64) (*Upload, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, apperr.Validation("Image is too large")
		}
		return nil, apperr.Validation("Please upload an image").Wrap(err)
	}
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, apperr.Validation("Please upload an image").Wrap(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperr.Validation("Image is too large")
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, apperr.Validation("Please upload an image")
	}
	return &Upload{Data: data, ContentType: ct}, nil
}
