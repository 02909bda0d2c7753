package providers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sort"
)

// DominantColors decodes an image and returns up to max dominant colors as
// hex strings. Pixels are quantized into coarse RGB buckets so that noise
// does not fragment the histogram.
func DominantColors(data []byte, max int) ([]string, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Sample a grid rather than every pixel; large images don't need more
	stepX := width / 64
	if stepX < 1 {
		stepX = 1
	}
	stepY := height / 64
	if stepY < 1 {
		stepY = 1
	}

	type bucket struct {
		r, g, b uint32
		count   int
	}
	counts := make(map[[3]uint8]*bucket)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			// Quantize to 32 levels per channel
			key := [3]uint8{uint8(r >> 11), uint8(g >> 11), uint8(b >> 11)}
			bk, ok := counts[key]
			if !ok {
				bk = &bucket{}
				counts[key] = bk
			}
			bk.r += r >> 8
			bk.g += g >> 8
			bk.b += b >> 8
			bk.count++
		}
	}

	buckets := make([]*bucket, 0, len(counts))
	for _, bk := range counts {
		buckets = append(buckets, bk)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].count > buckets[j].count })

	if max <= 0 {
		max = 5
	}
	colors := make([]string, 0, max)
	for _, bk := range buckets {
		if len(colors) >= max {
			break
		}
		colors = append(colors, fmt.Sprintf("#%02x%02x%02x",
			bk.r/uint32(bk.count), bk.g/uint32(bk.count), bk.b/uint32(bk.count)))
	}

	return colors, width, height, nil
}
