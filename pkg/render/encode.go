package render

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"

	"github.com/DavideDeMarchi/geodash/pkg/errors"
)

// Raster output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// ValidFormats is the set of supported raster output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatJPEG: true,
}

// ValidateFormat checks that a raster format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, jpeg)", format)
	}
	return nil
}

// Encode serializes an image in the given format.
// JPEG drops the alpha channel since the format has no transparency.
func Encode(img image.Image, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	f := imaging.PNG
	if format == FormatJPEG {
		f = imaging.JPEG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return buf.Bytes(), nil
}
