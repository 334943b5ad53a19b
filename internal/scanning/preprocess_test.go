package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// encodePNG builds a small receipt-like test bitmap: dark "ink" pixels on a
// light background.
func encodePNG(width, height int, ink []image.Point) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 230, G: 228, B: 225, A: 255})
		}
	}
	for _, p := range ink {
		img.Set(p.X, p.Y, color.RGBA{R: 20, G: 20, B: 25, A: 255})
	}
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Preprocess", func() {
	When("given a valid image", func() {
		var out image.Image

		BeforeEach(func() {
			data := encodePNG(30, 12, []image.Point{{X: 5, Y: 5}, {X: 6, Y: 5}})
			encoded, err := Preprocess(data, "image/png")
			Expect(err).NotTo(HaveOccurred())

			var decodeErr error
			out, decodeErr = png.Decode(bytes.NewReader(encoded))
			Expect(decodeErr).NotTo(HaveOccurred())
		})

		It("pads each side by 20 pixels", func() {
			Expect(out.Bounds().Dx()).To(Equal(30 + 40))
			Expect(out.Bounds().Dy()).To(Equal(12 + 40))
		})

		It("fills the padding with white", func() {
			r, g, b, _ := out.At(0, 0).RGBA()
			Expect(r >> 8).To(Equal(uint32(255)))
			Expect(g >> 8).To(Equal(uint32(255)))
			Expect(b >> 8).To(Equal(uint32(255)))
		})

		It("produces a grayscale result", func() {
			bounds := out.Bounds()
			for y := bounds.Min.Y; y < bounds.Max.Y; y += 3 {
				for x := bounds.Min.X; x < bounds.Max.X; x += 3 {
					r, g, b, _ := out.At(x, y).RGBA()
					Expect(r).To(Equal(g))
					Expect(g).To(Equal(b))
				}
			}
		})

		It("pushes ink toward black and paper toward white", func() {
			// Ink pixel lands at the padding offset.
			r, _, _, _ := out.At(25, 25).RGBA()
			Expect(r >> 8).To(BeNumerically("<", 30))

			r, _, _, _ = out.At(22, 22).RGBA()
			Expect(r >> 8).To(BeNumerically(">", 225))
		})
	})

	When("the image cannot be decoded", func() {
		It("returns ErrImageLoad", func() {
			_, err := Preprocess([]byte("definitely not an image"), "image/png")
			Expect(err).To(MatchError(ErrImageLoad))
		})

		It("returns ErrImageLoad for empty input with no content type", func() {
			_, err := Preprocess(nil, "")
			Expect(err).To(MatchError(ErrImageLoad))
		})
	})
})

var _ = Describe("isHEIC", func() {
	It("detects the ftyp brands iPhones write", func() {
		header := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		Expect(isHEIC(header, "image/jpeg")).To(BeTrue())
	})

	It("trusts an explicit HEIC content type", func() {
		Expect(isHEIC(nil, "image/heic")).To(BeTrue())
	})

	It("rejects other containers", func() {
		Expect(isHEIC([]byte("\x89PNG\r\n\x1a\nxxxx"), "image/png")).To(BeFalse())
	})
})
