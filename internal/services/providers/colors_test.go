package providers

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDominantColorsSolidImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	colors, width, height, err := DominantColors(encodePNG(t, img), 3)
	require.NoError(t, err)
	assert.Equal(t, 32, width)
	assert.Equal(t, 32, height)
	require.NotEmpty(t, colors)
	assert.Equal(t, "#ff0000", colors[0])
}

func TestDominantColorsRespectsMax(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	palette := []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, palette[(x/16)%len(palette)])
		}
	}

	colors, _, _, err := DominantColors(encodePNG(t, img), 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(colors), 2)
}

func TestDominantColorsRejectsGarbage(t *testing.T) {
	_, _, _, err := DominantColors([]byte("not an image"), 5)
	assert.Error(t, err)
}
