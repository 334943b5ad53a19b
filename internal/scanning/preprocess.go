package scanning

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

const (
	// pagePadding keeps a white margin around the receipt so the engine
	// does not crop text at the image edge.
	pagePadding = 20

	// contrastFactor is the linear contrast applied after grayscaling.
	contrastFactor = 2.0
)

// Preprocess normalizes a raw receipt into a high-contrast, padded,
// losslessly encoded image tuned for text recognition. The input bytes are
// never modified.
func Preprocess(data []byte, contentType string) ([]byte, error) {
	src, err := decodeReceipt(data, contentType)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx()+2*pagePadding, bounds.Dy()+2*pagePadding))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	target := image.Rect(pagePadding, pagePadding, pagePadding+bounds.Dx(), pagePadding+bounds.Dy())
	draw.Draw(canvas, target, src, bounds.Min, draw.Src)

	enhance(canvas)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encoding preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

// enhance grayscales and contrast-stretches the canvas in place. After the
// linear transform, dark pixels are pushed darker and light pixels lighter;
// the extra separation between ink and paper helps small receipt fonts.
func enhance(canvas *image.RGBA) {
	factor := 259 * (contrastFactor + 255) / (255 * (259 - contrastFactor))

	pix := canvas.Pix
	for i := 0; i < len(pix); i += 4 {
		gray := 0.299*float64(pix[i]) + 0.587*float64(pix[i+1]) + 0.114*float64(pix[i+2])
		enhanced := factor*(gray-128) + 128
		if enhanced < 128 {
			enhanced *= 0.7
			if enhanced < 0 {
				enhanced = 0
			}
		} else {
			enhanced *= 1.2
			if enhanced > 255 {
				enhanced = 255
			}
		}
		v := uint8(enhanced)
		pix[i], pix[i+1], pix[i+2] = v, v, v
	}
}
