package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/imgprefs/internal/providers"
)

// ErrUnsupportedType is returned by Load for extensions no provider accepts.
var ErrUnsupportedType = errors.New("unsupported image type")

var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// MIMEType returns the MIME type for a supported image path.
func MIMEType(path string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	mime, ok := mimeTypes[ext]
	return mime, ok
}

// Load reads an image and encodes it for transport
func Load(path string) (*providers.Image, error) {
	mime, ok := MIMEType(path)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrUnsupportedType, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return &providers.Image{
		MIMEType: mime,
		Data:     data,
		Base64:   base64.StdEncoding.EncodeToString(data),
	}, nil
}
