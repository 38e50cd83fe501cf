package utils

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"
)

func TestGenerateQRCodeDataURI(t *testing.T) {
	uri, err := GenerateQRCodeDataURI("https://thriftcircle.app/register?ref=ADAE-K4TQ2M", 300)
	if err != nil {
		t.Fatalf("GenerateQRCodeDataURI failed: %v", err)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("data URI missing PNG prefix: %.40s", uri)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload does not decode as PNG: %v", err)
	}
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 300 {
		t.Errorf("image is %dx%d, want 300x300", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestGenerateQRCodeDataURI_TooSmall(t *testing.T) {
	if _, err := GenerateQRCodeDataURI("https://thriftcircle.app/register?ref=ADAE-K4TQ2M", 10); err == nil {
		t.Fatal("expected an error for a size smaller than the code")
	}
}
