package service

import (
	"crypto/sha1"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/chestno/chestno-api/internal/config"

	qrcode "github.com/skip2/go-qrcode"
)

// QRImageService renders printable QR images for registered codes.
// Callers pick colors; the service enforces a readable contrast so
// printed labels stay scannable.
type QRImageService struct {
	cfg *config.Config
}

// NewQRImageService creates the image renderer.
func NewQRImageService(cfg *config.Config) *QRImageService {
	return &QRImageService{cfg: cfg}
}

// RenderInput selects what to render.
type RenderInput struct {
	Slug       string
	Size       int
	Foreground string
	Background string
}

// RenderedImage is an encoded PNG with its cache validator.
type RenderedImage struct {
	PNG  []byte
	ETag string
}

// Render encodes the scan URL for a slug as a PNG. The ETag is derived
// from every render input, so any change busts client caches.
func (s *QRImageService) Render(input RenderInput) (*RenderedImage, error) {
	size := input.Size
	if size <= 0 {
		size = s.cfg.QR.DefaultImageSize
	}
	if limit := s.cfg.QR.MaxImageSize; limit > 0 && size > limit {
		size = limit
	}

	fgHex := input.Foreground
	if strings.TrimSpace(fgHex) == "" {
		fgHex = "#000000"
	}
	bgHex := input.Background
	if strings.TrimSpace(bgHex) == "" {
		bgHex = "#FFFFFF"
	}
	fg, err := ParseHexColor(fgHex)
	if err != nil {
		return nil, err
	}
	bg, err := ParseHexColor(bgHex)
	if err != nil {
		return nil, err
	}

	if required := s.cfg.QR.MinContrastRatio; required > 0 {
		if ratio := ContrastRatio(fg, bg); ratio < required {
			return nil, fmt.Errorf("%w: contrast ratio %.2f below required %.2f", ErrValidation, ratio, required)
		}
	}

	scanURL := fmt.Sprintf("%s/q/%s", strings.TrimRight(s.cfg.QR.BaseURL, "/"), input.Slug)
	code, err := qrcode.New(scanURL, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	code.ForegroundColor = fg
	code.BackgroundColor = bg
	code.DisableBorder = false

	png, err := code.PNG(size)
	if err != nil {
		return nil, err
	}

	etag := fmt.Sprintf(`"%x"`, sha1.Sum([]byte(fmt.Sprintf("%s|%d|%s|%s", scanURL, size, fgHex, bgHex))))
	return &RenderedImage{PNG: png, ETag: etag}, nil
}

// ParseHexColor parses #RGB or #RRGGBB, with or without the hash.
func ParseHexColor(raw string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrValidation, raw)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.ToLower(hex), "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrValidation, raw)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// ContrastRatio computes the WCAG 2.x contrast between two colors.
// Black on white yields 21, identical colors yield 1.
func ContrastRatio(a, b color.RGBA) float64 {
	la := relativeLuminance(a)
	lb := relativeLuminance(b)
	lighter := math.Max(la, lb)
	darker := math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05)
}

func relativeLuminance(c color.RGBA) float64 {
	r := linearize(float64(c.R) / 255)
	g := linearize(float64(c.G) / 255)
	b := linearize(float64(c.B) / 255)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func linearize(channel float64) float64 {
	if channel <= 0.03928 {
		return channel / 12.92
	}
	return math.Pow((channel+0.055)/1.055, 2.4)
}
