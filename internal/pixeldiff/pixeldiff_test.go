package pixeldiff

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	black = color.RGBA{0, 0, 0, 255}
	white = color.RGBA{255, 255, 255, 255}
	gray  = color.RGBA{128, 128, 128, 255}
)

func TestCountIdentical(t *testing.T) {
	a := filled(8, 6, gray)
	b := filled(8, 6, gray)
	got, err := Count(a, b, Options{Threshold: DefaultThreshold})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("Count(identical) = %d, want 0", got)
	}
}

func TestCountOpposite(t *testing.T) {
	a := filled(4, 4, black)
	b := filled(4, 4, white)
	got, err := Count(a, b, Options{Threshold: DefaultThreshold})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if got != 16 {
		t.Fatalf("Count(black, white) = %d, want 16", got)
	}
}

func TestCountSinglePixel(t *testing.T) {
	a := filled(10, 10, white)
	b := filled(10, 10, white)
	b.SetRGBA(5, 5, black)
	got, err := Count(a, b, Options{Threshold: DefaultThreshold})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if got != 1 {
		t.Fatalf("Count(single pixel) = %d, want 1", got)
	}
}

func TestCountThresholdOneIgnoresEverything(t *testing.T) {
	a := filled(3, 3, black)
	b := filled(3, 3, white)
	got, err := Count(a, b, Options{Threshold: 1})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("Count(threshold=1) = %d, want 0", got)
	}
}

func TestCountTransparentBlendsOnWhite(t *testing.T) {
	a := filled(2, 2, color.RGBA{0, 0, 0, 0})
	b := filled(2, 2, white)
	got, err := Count(a, b, Options{Threshold: DefaultThreshold})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("transparent vs white = %d, want 0", got)
	}
}

// edgeImage draws black columns 0-1, a gray column 2 and white columns 3-4.
func edgeImage() *image.RGBA {
	img := filled(5, 5, white)
	for y := 0; y < 5; y++ {
		img.SetRGBA(0, y, black)
		img.SetRGBA(1, y, black)
		img.SetRGBA(2, y, gray)
	}
	return img
}

func TestCountAntialiasing(t *testing.T) {
	a := edgeImage()
	b := edgeImage()
	b.SetRGBA(2, 2, white)

	skipped, err := Count(a, b, Options{Threshold: DefaultThreshold, IncludeAA: false})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("expected anti-aliased pixel to be skipped, got %d", skipped)
	}

	counted, err := Count(a, b, Options{Threshold: DefaultThreshold, IncludeAA: true})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if counted != 1 {
		t.Fatalf("expected anti-aliased pixel to be counted, got %d", counted)
	}
}

func TestCountSubImage(t *testing.T) {
	a := filled(6, 6, white)
	b := filled(6, 6, white)
	b.SetRGBA(0, 0, black) // outside the compared region
	b.SetRGBA(3, 3, black)

	subA := a.SubImage(image.Rect(2, 2, 5, 5)).(*image.RGBA)
	subB := b.SubImage(image.Rect(2, 2, 5, 5)).(*image.RGBA)
	got, err := Count(subA, subB, Options{Threshold: DefaultThreshold})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if got != 1 {
		t.Fatalf("Count(sub-images) = %d, want 1", got)
	}
}

func TestCountRejectsBadInput(t *testing.T) {
	a := filled(4, 4, white)
	b := filled(4, 5, white)
	if _, err := Count(a, b, Options{Threshold: DefaultThreshold}); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
	if _, err := Count(a, a, Options{Threshold: 1.5}); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
	if _, err := Count(nil, a, Options{}); err == nil {
		t.Fatal("expected error for nil image")
	}
}

func TestDifferAdapter(t *testing.T) {
	a := filled(2, 2, black)
	b := filled(2, 2, white)
	got, err := Differ{}.CountMismatched(a, b, DefaultThreshold, true)
	if err != nil {
		t.Fatalf("CountMismatched returned error: %v", err)
	}
	if got != 4 {
		t.Fatalf("CountMismatched = %d, want 4", got)
	}
}

func TestCountSubImagesAtDifferentOrigins(t *testing.T) {
	a := filled(8, 8, white)
	b := filled(8, 8, white)
	a.SetRGBA(1, 2, black)
	b.SetRGBA(4, 5, black)

	// Both regions are 3x3 with the black pixel at the same relative spot.
	subA := a.SubImage(image.Rect(0, 1, 3, 4)).(*image.RGBA)
	subB := b.SubImage(image.Rect(3, 4, 6, 7)).(*image.RGBA)
	got, err := Count(subA, subB, Options{Threshold: DefaultThreshold})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("Count(aligned sub-images) = %d, want 0", got)
	}

	b.SetRGBA(3, 4, black)
	got, err = Count(subA, subB, Options{Threshold: DefaultThreshold, IncludeAA: true})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if got != 1 {
		t.Fatalf("Count(sub-images, one change) = %d, want 1", got)
	}
}

func TestCompactSharesPackedImages(t *testing.T) {
	img := filled(4, 3, gray)
	if compact(img) != img {
		t.Fatal("packed zero-origin image should be used as is")
	}
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	out := compact(sub)
	if out.Bounds() != image.Rect(0, 0, 2, 2) || out.Stride != 8 {
		t.Fatalf("compact bounds=%v stride=%d", out.Bounds(), out.Stride)
	}
	if out.RGBAAt(1, 1) != gray {
		t.Fatalf("compact pixel = %v, want %v", out.RGBAAt(1, 1), gray)
	}
}
