package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strconv"

	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/infrastructure/logging"

	"golang.org/x/image/draw"
)

// DefaultJPEGQuality is used when Options.JPEGQuality is unset
const DefaultJPEGQuality = 90

const (
	// MaxDimension is the largest side JPEG can encode
	MaxDimension = 65535
	// MaxPixels bounds both the decoded source and the scaled output
	MaxPixels = 1 << 26
)

// Options configure the OCR pre-processing pipeline
type Options struct {
	JPEGQuality int
	Logger      logging.Logger
}

// Pipeline rescales captured PNG screenshots and re-encodes them for the
// recognition engine. It is stateless and safe for concurrent use.
type Pipeline struct {
	quality int
	logger  logging.Logger
}

// NewPipeline creates a pipeline, filling in defaults
func NewPipeline(opts Options) *Pipeline {
	quality := opts.JPEGQuality
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Pipeline{quality: quality, logger: logger}
}

// PrepareForRecognition runs the default pipeline
func PrepareForRecognition(pngBytes []byte, targetHeight uint32) (string, error) {
	return NewPipeline(Options{}).Prepare(pngBytes, targetHeight)
}

// Prepare decodes a PNG, drops alpha, scales it to targetHeight preserving the
// aspect ratio, re-encodes it as JPEG and returns the standard base64 text.
// Output is byte-identical for identical inputs.
func (p *Pipeline) Prepare(pngBytes []byte, targetHeight uint32) (string, error) {
	const op = "prepare_for_recognition"

	if targetHeight == 0 {
		err := apperrors.NewOperationError(op, fmt.Errorf("target height must be positive"), apperrors.ErrCodeValidation)
		logging.LogError(p.logger, err, op, nil)
		return "", err
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(pngBytes))
	if err != nil {
		opErr := apperrors.NewOperationErrorWithContext(op, err, apperrors.ErrCodeDecode, map[string]string{
			"input_bytes": strconv.Itoa(len(pngBytes)),
		})
		logging.LogError(p.logger, opErr, op, nil)
		return "", opErr
	}
	if err := checkSize(op, "source", cfg.Width, cfg.Height); err != nil {
		logging.LogError(p.logger, err, op, nil)
		return "", err
	}

	src, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		opErr := apperrors.NewOperationErrorWithContext(op, err, apperrors.ErrCodeDecode, map[string]string{
			"input_bytes": strconv.Itoa(len(pngBytes)),
		})
		logging.LogError(p.logger, opErr, op, nil)
		return "", opErr
	}

	rgb := toOpaque(src)
	width, height := ScaledSize(rgb.Bounds().Dx(), rgb.Bounds().Dy(), targetHeight)
	if err := checkSize(op, "output", width, height); err != nil {
		logging.LogError(p.logger, err, op, map[string]interface{}{"target_height": targetHeight})
		return "", err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), rgb, rgb.Bounds(), draw.Src, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		opErr := apperrors.NewOperationErrorWithContext(op, err, apperrors.ErrCodeEncoding, map[string]string{
			"width":  strconv.Itoa(width),
			"height": strconv.Itoa(height),
		})
		logging.LogError(p.logger, opErr, op, nil)
		return "", opErr
	}

	p.logger.Debug("Prepared screenshot for recognition",
		"source_width", src.Bounds().Dx(),
		"source_height", src.Bounds().Dy(),
		"width", width,
		"height", height,
		"jpeg_bytes", out.Len(),
	)

	return base64.StdEncoding.EncodeToString(out.Bytes()), nil
}

// checkSize rejects images whose pixels could not be allocated or encoded
func checkSize(op, which string, width, height int) error {
	if width <= MaxDimension && height <= MaxDimension && width*height <= MaxPixels {
		return nil
	}
	return apperrors.NewOperationErrorWithContext(op,
		fmt.Errorf("%s image %dx%d exceeds size limit", which, width, height),
		apperrors.ErrCodeValidation,
		map[string]string{
			"width":  strconv.Itoa(width),
			"height": strconv.Itoa(height),
		})
}

// ScaledSize divides both dimensions by height/targetHeight, truncating.
// The epsilon absorbs float error so height/(height/t) lands on t, and
// neither side is allowed to collapse to zero.
func ScaledSize(width, height int, targetHeight uint32) (int, int) {
	scale := float64(height) / float64(targetHeight)

	w := int(math.Floor(float64(width)/scale + 1e-6))
	h := int(math.Floor(float64(height)/scale + 1e-6))

	return max(w, 1), max(h, 1)
}

// toOpaque copies an image into an RGBA image with alpha forced to 0xff.
// Colour channels are taken un-premultiplied, so alpha is dropped rather than
// composited onto a background.
func toOpaque(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			off := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
			srcRow := nrgba.Pix[off : off+b.Dx()*4]
			dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()*4]
			for i := 0; i < len(srcRow); i += 4 {
				dstRow[i+0] = srcRow[i+0]
				dstRow[i+1] = srcRow[i+1]
				dstRow[i+2] = srcRow[i+2]
				dstRow[i+3] = 0xff
			}
		}
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}
