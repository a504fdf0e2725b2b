package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the PNG edge length in pixels.
const DefaultQRSize = 300

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// QRPNG renders code as a PNG with high error correction.
func QRPNG(code string, size int) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("empty qr code")
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(code, qrcode.Highest, size)
}

// QRFileName is the download name for a code, QR-<code>.png.
func QRFileName(code string) string {
	return "QR-" + unsafeName.ReplaceAllString(code, "_") + ".png"
}

// ExportQR writes the PNG for code into dir and returns the file path.
func ExportQR(dir, code string, size int) (string, error) {
	png, err := QRPNG(code, size)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, QRFileName(code))
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", err
	}
	return path, nil
}
