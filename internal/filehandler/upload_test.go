package filehandler

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestSniffImage(t *testing.T) {
	if mime, err := SniffImage(encodePNG(t, 4, 4)); err != nil || mime != "image/png" {
		t.Errorf("SniffImage(png) = (%s, %v)", mime, err)
	}

	var jpegBuf bytes.Buffer
	if err := jpeg.Encode(&jpegBuf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("encode test JPEG: %v", err)
	}
	if mime, err := SniffImage(jpegBuf.Bytes()); err != nil || mime != "image/jpeg" {
		t.Errorf("SniffImage(jpeg) = (%s, %v)", mime, err)
	}

	if _, err := SniffImage([]byte("just some text, definitely not an image")); err == nil {
		t.Error("text accepted as image")
	}
	if _, err := SniffImage(nil); err == nil {
		t.Error("empty upload accepted")
	}
}

func TestPrepareImage_SmallPassthrough(t *testing.T) {
	data := encodePNG(t, 100, 80)
	out, mime := PrepareImage(data, "image/png")

	if !bytes.Equal(out, data) {
		t.Error("small image should pass through unchanged")
	}
	if mime != "image/png" {
		t.Errorf("mime = %s, want image/png", mime)
	}
}

func TestPrepareImage_Downscales(t *testing.T) {
	data := encodePNG(t, 2048, 1024)
	out, mime := PrepareImage(data, "image/png")

	if mime != "image/jpeg" {
		t.Fatalf("mime = %s, want image/jpeg after downscale", mime)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode downscaled output: %v", err)
	}
	if cfg.Width != MaxUploadDimension {
		t.Errorf("width = %d, want %d", cfg.Width, MaxUploadDimension)
	}
	if cfg.Height != MaxUploadDimension/2 {
		t.Errorf("height = %d, want %d", cfg.Height, MaxUploadDimension/2)
	}
}

func TestPrepareImage_UndecodablePassthrough(t *testing.T) {
	data := []byte("\x89PNG\r\n\x1a\ntruncated garbage")
	out, mime := PrepareImage(data, "image/png")

	if !bytes.Equal(out, data) {
		t.Error("undecodable upload should pass through to the model")
	}
	if mime != "image/png" {
		t.Errorf("mime = %s, want original", mime)
	}
}

func TestScaledDimensions(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{2048, 1024, 1024, 1024, 512},
		{1024, 2048, 1024, 512, 1024},
		{3000, 3000, 1024, 1024, 1024},
	}
	for _, tt := range tests {
		w, h := scaledDimensions(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("scaledDimensions(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}
