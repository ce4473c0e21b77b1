package utils

import (
	"bytes"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// TicketQRSize is the edge length in pixels of ticket QR images.
const TicketQRSize = 256

// QRCodePNG encodes content as a QR code and returns the PNG bytes.
func QRCodePNG(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
