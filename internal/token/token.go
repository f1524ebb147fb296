// Package token builds disposal tracking tokens from classification records
// and renders them as scannable QR images. Tokens are write-only: they are
// never looked up again by id. The operator scans them into the facility's
// external disposal log.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/sortyx/sortyx-backend/internal/waste"
)

// ErrEncodingFailed wraps QR rendering failures. Unlike classification,
// rendering has no safe visual default, so callers must surface the error.
var ErrEncodingFailed = fmt.Errorf("tracking token encoding failed")

// qrImageSize is the rendered QR edge length in pixels.
const qrImageSize = 256

// Token is one disposal tracking event. Serialized as a compact JSON
// payload inside the QR image.
type Token struct {
	ID           string         `json:"id"`
	Category     waste.Category `json:"classification"`
	ItemLabel    string         `json:"item"`
	BinColor     string         `json:"bin_color"`
	DisposalCode string         `json:"disposal_code"`
	Timestamp    string         `json:"timestamp"`
	Confidence   float64        `json:"confidence"`
}

// Encoder stamps classification records into tokens. The id and clock
// sources are injectable so encoding is deterministic under test.
type Encoder struct {
	newID func() string
	now   func() time.Time
}

// NewEncoder returns an Encoder backed by random UUIDs and the wall clock.
func NewEncoder() *Encoder {
	return &Encoder{newID: uuid.NewString, now: time.Now}
}

// NewEncoderWithSources returns an Encoder with explicit id and clock
// sources.
func NewEncoderWithSources(newID func() string, now func() time.Time) *Encoder {
	return &Encoder{newID: newID, now: now}
}

// Encode mints a token for rec: a fresh unique id, the current time, and
// the bin attributes resolved from the category table. No other inputs
// affect the result.
func (e *Encoder) Encode(rec waste.Record) Token {
	info := rec.Category.Info()
	return Token{
		ID:           e.newID(),
		Category:     rec.Category,
		ItemLabel:    rec.ItemLabel,
		BinColor:     info.BinColor,
		DisposalCode: info.DisposalCode,
		Timestamp:    e.now().Format(time.RFC3339),
		Confidence:   rec.Confidence,
	}
}

// Payload returns the compact JSON form embedded in the QR image.
func (t Token) Payload() ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload: %v", ErrEncodingFailed, err)
	}
	return data, nil
}

// Render encodes the token payload into a PNG QR image at medium error
// correction. Capacity overflow is reported rather than swallowed.
func Render(t Token) ([]byte, error) {
	payload, err := t.Payload()
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, qrImageSize)
	if err != nil {
		log.Error().Err(err).Str("token_id", t.ID).Int("payload_bytes", len(payload)).Msg("QR render failed")
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}

	log.Debug().Str("token_id", t.ID).Int("payload_bytes", len(payload)).Int("png_bytes", len(png)).Msg("Tracking token rendered")
	return png, nil
}

// RenderDataURL renders the token and wraps the PNG in a base64 data URL,
// the form the web client drops straight into an <img> tag.
func RenderDataURL(t Token) (string, error) {
	png, err := Render(t)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
