// Package imaging holds the OS-independent half of the capture path: the
// captured pixel buffer, its lossless encoding, and the OCR pre-processing
// pipeline.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"

	apperrors "freezeframe/internal/infrastructure/errors"
)

// BytesPerPixel is the size of one captured pixel (R, G, B, A)
const BytesPerPixel = 4

// PixelBuffer is a row-major RGBA capture of a window's client area
type PixelBuffer struct {
	Width  int
	Height int
	Pixels []byte
}

// Validate checks len(Pixels) == Width*Height*BytesPerPixel.
// A mismatch means the capture is unusable, so it is a capture error rather
// than something to trim or pad.
func (b PixelBuffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return apperrors.NewOperationErrorWithContext("validate_pixel_buffer",
			fmt.Errorf("empty capture area %dx%d", b.Width, b.Height),
			apperrors.ErrCodeCapture,
			b.context())
	}

	want := b.Width * b.Height * BytesPerPixel
	if len(b.Pixels) != want {
		ctx := b.context()
		ctx["expected_bytes"] = strconv.Itoa(want)
		ctx["actual_bytes"] = strconv.Itoa(len(b.Pixels))
		return apperrors.NewOperationErrorWithContext("validate_pixel_buffer",
			fmt.Errorf("pixel buffer size mismatch"),
			apperrors.ErrCodeCapture,
			ctx)
	}
	return nil
}

func (b PixelBuffer) context() map[string]string {
	return map[string]string{
		"width":  strconv.Itoa(b.Width),
		"height": strconv.Itoa(b.Height),
	}
}

// Image wraps the buffer without copying. The pixels are straight
// (non-premultiplied) alpha, so colour survives even where GDI leaves A at 0.
func (b PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pixels,
		Stride: b.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FromBGRA converts a top-down 32-bit BGRA DIB into an RGBA PixelBuffer.
// Alpha is carried through untouched.
func FromBGRA(width, height int, bgra []byte) (PixelBuffer, error) {
	buf := PixelBuffer{Width: width, Height: height, Pixels: bgra}
	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, err
	}

	pixels := make([]byte, len(bgra))
	for i := 0; i < len(bgra); i += BytesPerPixel {
		pixels[i+0] = bgra[i+2] // R
		pixels[i+1] = bgra[i+1] // G
		pixels[i+2] = bgra[i+0] // B
		pixels[i+3] = bgra[i+3] // A
	}

	return PixelBuffer{Width: width, Height: height, Pixels: pixels}, nil
}

// FromImage copies any image into a PixelBuffer
func FromImage(img image.Image) PixelBuffer {
	b := img.Bounds()
	// opaque RGBA is byte-identical to NRGBA
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == b.Dx()*BytesPerPixel && rgba.Opaque() {
		pixels := make([]byte, len(rgba.Pix))
		copy(pixels, rgba.Pix)
		return PixelBuffer{Width: b.Dx(), Height: b.Dy(), Pixels: pixels}
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			nrgba.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return PixelBuffer{Width: b.Dx(), Height: b.Dy(), Pixels: nrgba.Pix}
}

// EncodePNG validates the buffer and encodes it losslessly
func EncodePNG(b PixelBuffer) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := png.Encode(&out, b.Image()); err != nil {
		return nil, apperrors.NewOperationErrorWithContext("encode_png", err, apperrors.ErrCodeEncoding, b.context())
	}
	return out.Bytes(), nil
}
