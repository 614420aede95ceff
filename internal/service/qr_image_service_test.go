package service

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/chestno/chestno-api/internal/config"
)

func newQRImageConfig() *config.Config {
	return &config.Config{
		QR: config.QRConfig{
			BaseURL:          "https://chestno.ru",
			DefaultImageSize: 256,
			MaxImageSize:     512,
			MinContrastRatio: 4.5,
		},
	}
}

func TestContrastRatioKnownValues(t *testing.T) {
	black, err := ParseHexColor("#000000")
	if err != nil {
		t.Fatalf("parse black failed: %v", err)
	}
	white, err := ParseHexColor("#FFFFFF")
	if err != nil {
		t.Fatalf("parse white failed: %v", err)
	}

	if ratio := ContrastRatio(black, white); math.Abs(ratio-21.0) > 0.01 {
		t.Fatalf("expected 21.0 for black on white, got %f", ratio)
	}
	if ratio := ContrastRatio(white, white); math.Abs(ratio-1.0) > 0.001 {
		t.Fatalf("expected 1.0 for identical colors, got %f", ratio)
	}
	// Symmetric in its arguments.
	if ContrastRatio(black, white) != ContrastRatio(white, black) {
		t.Fatalf("contrast ratio must not depend on argument order")
	}
}

func TestParseHexColorForms(t *testing.T) {
	long, err := ParseHexColor("#1A2B3C")
	if err != nil {
		t.Fatalf("parse long form failed: %v", err)
	}
	if long.R != 0x1A || long.G != 0x2B || long.B != 0x3C {
		t.Fatalf("unexpected long form value: %+v", long)
	}

	short, err := ParseHexColor("fff")
	if err != nil {
		t.Fatalf("parse short form failed: %v", err)
	}
	if short.R != 0xFF || short.G != 0xFF || short.B != 0xFF {
		t.Fatalf("unexpected short form value: %+v", short)
	}

	for _, raw := range []string{"", "#12345", "#GGGGGG", "not-a-color"} {
		if _, err := ParseHexColor(raw); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", raw, err)
		}
	}
}

func TestRenderRejectsLowContrast(t *testing.T) {
	svc := NewQRImageService(newQRImageConfig())

	_, err := svc.Render(RenderInput{
		Slug:       "demo",
		Foreground: "#777777",
		Background: "#888888",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for low contrast, got %v", err)
	}
}

func TestRenderProducesPNGWithStableETag(t *testing.T) {
	svc := NewQRImageService(newQRImageConfig())

	first, err := svc.Render(RenderInput{Slug: "demo"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(first.PNG, []byte("\x89PNG")) {
		t.Fatalf("expected png payload")
	}
	if first.ETag == "" {
		t.Fatalf("expected etag")
	}

	again, err := svc.Render(RenderInput{Slug: "demo"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if again.ETag != first.ETag {
		t.Fatalf("etag must be stable for identical inputs")
	}

	other, err := svc.Render(RenderInput{Slug: "demo", Size: 300})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if other.ETag == first.ETag {
		t.Fatalf("etag must change when inputs change")
	}
}

func TestRenderClampsSizeToLimit(t *testing.T) {
	svc := NewQRImageService(newQRImageConfig())

	// Oversized requests are clamped rather than refused.
	if _, err := svc.Render(RenderInput{Slug: "demo", Size: 10000}); err != nil {
		t.Fatalf("render with oversized request failed: %v", err)
	}
}
