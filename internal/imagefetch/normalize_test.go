package imagefetch

import (
	"bytes"
	"image"
	"image/color"
	"net/http"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, format imaging.Format) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestNormalize_PassThrough(t *testing.T) {
	for _, format := range []imaging.Format{imaging.PNG, imaging.JPEG, imaging.GIF} {
		data := encode(t, format)
		got, err := Normalize(data)
		require.NoError(t, err, format.String())
		assert.Equal(t, data, got, format.String())
	}
}

func TestNormalize_ConvertsToPNG(t *testing.T) {
	for _, format := range []imaging.Format{imaging.BMP, imaging.TIFF} {
		got, err := Normalize(encode(t, format))
		require.NoError(t, err, format.String())
		assert.Equal(t, "image/png", http.DetectContentType(got), format.String())

		img, err := imaging.Decode(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	}
}

func TestNormalize_NotAnImage(t *testing.T) {
	_, err := Normalize([]byte("<html>login</html>"))
	assert.Error(t, err)
}
