package filehandler

import (
	"bytes"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// CaptureMetadata is the EXIF subset logged alongside classifications:
// when and on what device the waste photo was taken. Useful when auditing a
// disputed disposal decision against the facility's intake log.
type CaptureMetadata struct {
	DateTaken   time.Time
	HasDate     bool
	CameraMake  string
	CameraModel string
}

// ExtractCaptureMetadata reads EXIF from an in-memory upload. The library
// reads only the metadata segments, so this is cheap even for large photos.
// Errors are expected (PNG screenshots and WebP rarely carry EXIF) and the
// caller should treat them as "no metadata".
func ExtractCaptureMetadata(data []byte) (*CaptureMetadata, error) {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	meta := &CaptureMetadata{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}

	// Date fallback chain: DateTimeOriginal > CreateDate > ModifyDate
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		meta.DateTaken = exifData.DateTimeOriginal()
		meta.HasDate = true
	case !exifData.CreateDate().IsZero():
		meta.DateTaken = exifData.CreateDate()
		meta.HasDate = true
	case !exifData.ModifyDate().IsZero():
		meta.DateTaken = exifData.ModifyDate()
		meta.HasDate = true
	}

	log.Debug().
		Bool("has_date", meta.HasDate).
		Str("camera_make", meta.CameraMake).
		Str("camera_model", meta.CameraModel).
		Msg("Capture metadata extracted from upload")

	return meta, nil
}
