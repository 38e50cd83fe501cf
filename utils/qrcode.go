package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// GenerateQRCodeDataURI encodes content as a QR code and returns it as a
// base64 PNG data URI suitable for an <img> tag.
func GenerateQRCodeDataURI(content string, size int) (string, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %v", err)
	}

	code, err = barcode.Scale(code, size, size)
	if err != nil {
		return "", fmt.Errorf("failed to scale QR code: %v", err)
	}

	buffer := new(bytes.Buffer)
	if err := png.Encode(buffer, code); err != nil {
		return "", fmt.Errorf("failed to encode QR code as PNG: %v", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buffer.Bytes()), nil
}
