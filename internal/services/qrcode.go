package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

const pngDataURLPrefix = "data:image/png;base64,"

// PNGQREncoder renders QR codes as base64 PNG data URLs
type PNGQREncoder struct {
	// Size is the width and height of the image in pixels
	Size int
	// Margin is the quiet zone around the code, in modules
	Margin int
	Level  qrcode.RecoveryLevel
}

// NewPNGQREncoder creates an encoder producing size×size images with a margin of margin modules
func NewPNGQREncoder(size, margin int) *PNGQREncoder {
	if size <= 0 {
		size = 200
	}
	if margin < 0 {
		margin = 0
	}
	return &PNGQREncoder{Size: size, Margin: margin, Level: qrcode.Medium}
}

// Encode renders content and returns it as a data URL
func (e *PNGQREncoder) Encode(content string) (string, error) {
	q, err := qrcode.New(content, e.Level)
	if err != nil {
		return "", fmt.Errorf("failed to build QR code: %w", err)
	}
	q.DisableBorder = true

	modules := 17 + 4*q.VersionNumber
	modulePx := e.Size / (modules + 2*e.Margin)
	if modulePx < 1 {
		modulePx = 1
	}

	code := q.Image(modules * modulePx)

	side := e.Size
	if needed := code.Bounds().Dx() + 2*e.Margin*modulePx; needed > side {
		side = needed
	}
	canvas := imaging.PasteCenter(imaging.New(side, side, color.White), code)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode QR image: %w", err)
	}

	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
