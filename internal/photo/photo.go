// Package photo encodes uploaded profile pictures as data URIs.
package photo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxBytes = 2 << 20

var (
	ErrEmpty    = errors.New("photo is empty")
	ErrTooLarge = errors.New("photo is too large")
	ErrNotImage = errors.New("photo is not an image")
)

// EncodeDataURI sniffs the content type of raw and returns it as a base64
// data URI. Only image types are accepted.
func EncodeDataURI(raw []byte, maxBytes int) (string, error) {
	if len(raw) == 0 {
		return "", ErrEmpty
	}
	if maxBytes > 0 && len(raw) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(raw), maxBytes)
	}

	detected := mimetype.Detect(raw)
	mime := strings.SplitN(detected.String(), ";", 2)[0]
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
