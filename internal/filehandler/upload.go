// Package filehandler validates and prepares uploaded waste images before
// they are sent to Gemini: content-type sniffing, downscaling oversized
// photos, and best-effort EXIF extraction for logging.
package filehandler

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// MaxUploadDimension is the longest edge, in pixels, sent to Gemini.
// Phone photos are routinely 4000px+; classification does not need that,
// and downscaling cuts upload latency and input tokens.
const MaxUploadDimension = 1024

// jpegQuality for re-encoded downscaled uploads.
const jpegQuality = 85

// SniffImage detects the content type of uploaded bytes and reports whether
// it is an accepted image format (JPEG, PNG, or WebP).
func SniffImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	mimeType := http.DetectContentType(data)
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp":
		return mimeType, nil
	}
	return "", fmt.Errorf("unsupported content type %s (expected JPEG, PNG, or WebP)", mimeType)
}

// PrepareImage downscales a JPEG/PNG upload whose longest edge exceeds
// MaxUploadDimension, re-encoding as JPEG. WebP and already-small images
// pass through unchanged. Decode failures also pass the original through:
// Gemini may still cope, and the normalizer handles whatever comes back.
func PrepareImage(data []byte, mimeType string) ([]byte, string) {
	var img image.Image
	var err error

	switch mimeType {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	default:
		// WebP passes through; stdlib has no decoder and the files are
		// already compact.
		return data, mimeType
	}
	if err != nil {
		log.Warn().Err(err).Str("mime_type", mimeType).Msg("Failed to decode upload, sending original to Gemini")
		return data, mimeType
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	if origWidth <= MaxUploadDimension && origHeight <= MaxUploadDimension {
		return data, mimeType
	}

	newWidth, newHeight := scaledDimensions(origWidth, origHeight, MaxUploadDimension)
	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		log.Warn().Err(err).Msg("Failed to encode downscaled upload, sending original to Gemini")
		return data, mimeType
	}

	log.Debug().
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Int("orig_bytes", len(data)).
		Int("new_bytes", buf.Len()).
		Msg("Upload downscaled for classification")

	return buf.Bytes(), "image/jpeg"
}

// scaledDimensions fits (width, height) inside maxDim preserving aspect
// ratio. Assumes at least one edge exceeds maxDim.
func scaledDimensions(width, height, maxDim int) (int, int) {
	if width >= height {
		return maxDim, max(1, height*maxDim/width)
	}
	return max(1, width*maxDim/height), maxDim
}
