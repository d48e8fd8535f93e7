package images

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
)

const base64Marker = ";base64,"

// IsBase64Image reports whether s is an inline data:image/...;base64 string.
func IsBase64Image(s string) bool {
	return strings.HasPrefix(s, "data:image/") && strings.Contains(s, "base64,")
}

// EncodeDataURI returns data as a data:<mime>;base64,<payload> string.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + base64Marker + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into its media type and payload.
func DecodeDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, errors.Wrap(apperrors.ErrInvalidImage, "not a data URI")
	}
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, errors.Wrap(apperrors.ErrInvalidImage, "data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Wrap(apperrors.ErrInvalidImage, err.Error())
	}
	return strings.TrimSuffix(header, ";base64"), data, nil
}

// FileToDataURI reads an image file and returns it inline. The media type is sniffed
// from the content, not the extension.
func FileToDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "[FileToDataURI] read image")
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", errors.Wrapf(apperrors.ErrInvalidImage, "%s is %s", path, mime.String())
	}
	return EncodeDataURI(mime.String(), data), nil
}

// Dimensions returns the pixel size of an inline image.
func Dimensions(uri string) (width, height int, err error) {
	_, data, err := DecodeDataURI(uri)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, errors.Wrap(apperrors.ErrInvalidImage, err.Error())
	}
	return cfg.Width, cfg.Height, nil
}
