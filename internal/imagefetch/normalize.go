package imagefetch

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/disintegration/imaging"
)

// Normalize makes downloaded bytes safe to embed in a deck. PNG, JPEG and GIF
// pass through untouched; other formats imaging can decode (BMP, TIFF) are
// re-encoded as PNG. Anything else is an error.
func Normalize(data []byte) ([]byte, error) {
	switch http.DetectContentType(data) {
	case "image/png", "image/jpeg", "image/gif":
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
