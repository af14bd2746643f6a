package pagecost

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"pagecompare/internal/document"
	"pagecompare/internal/pixeldiff"
)

const eps = 1e-9

var (
	black = color.RGBA{0, 0, 0, 255}
	white = color.RGBA{255, 255, 255, 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// leftHalfBlack is white with the left half of its columns black.
func leftHalfBlack(w, h int) *image.RGBA {
	img := solid(w, h, white)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.SetRGBA(x, y, black)
		}
	}
	return img
}

func TestDownscaleCapsLargerSide(t *testing.T) {
	got, err := Downscale(solid(1000, 500, white), MaxDimension)
	if err != nil {
		t.Fatalf("Downscale returned error: %v", err)
	}
	if got.Bounds().Dx() != 420 || got.Bounds().Dy() != 210 {
		t.Fatalf("Downscale size = %v, want 420x210", got.Bounds())
	}

	small, err := Downscale(solid(100, 50, white), MaxDimension)
	if err != nil {
		t.Fatalf("Downscale returned error: %v", err)
	}
	if small.Bounds().Dx() != 100 || small.Bounds().Dy() != 50 {
		t.Fatalf("small image should keep its size, got %v", small.Bounds())
	}

	if _, err := Downscale(image.NewRGBA(image.Rect(0, 0, 0, 0)), MaxDimension); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}

func TestContentBandDropsMargins(t *testing.T) {
	band := ContentBand(solid(10, 100, white))
	if band.Bounds().Min.Y != 12 || band.Bounds().Max.Y != 88 {
		t.Fatalf("band bounds = %v, want rows 12..88", band.Bounds())
	}
	if band.Bounds().Dx() != 10 {
		t.Fatalf("band should keep full width, got %d", band.Bounds().Dx())
	}

	tiny := solid(3, 4, white)
	if ContentBand(tiny) != tiny {
		t.Fatal("images too short for a margin should be returned whole")
	}
}

func TestPixelCost(t *testing.T) {
	differ := pixeldiff.Differ{}
	tests := []struct {
		name string
		a, b image.Image
		want float64
	}{
		{"identical", solid(50, 50, white), solid(50, 50, white), 0},
		{"opposite", solid(50, 50, black), solid(50, 50, white), 1},
		{"half", solid(50, 50, white), leftHalfBlack(50, 50), 0.5},
		{"different widths", solid(40, 50, white), solid(60, 50, white), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PixelCost(tt.a, tt.b, pixeldiff.DefaultThreshold, false, differ)
			if err != nil {
				t.Fatalf("PixelCost returned error: %v", err)
			}
			if math.Abs(got-tt.want) > eps {
				t.Fatalf("PixelCost = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPixelCostIgnoresHeaderChanges(t *testing.T) {
	a := solid(50, 100, white)
	b := solid(50, 100, white)
	for x := 0; x < 50; x++ {
		b.SetRGBA(x, 2, black)  // header row
		b.SetRGBA(x, 97, black) // footer row
	}
	got, err := PixelCost(a, b, pixeldiff.DefaultThreshold, false, pixeldiff.Differ{})
	if err != nil {
		t.Fatalf("PixelCost returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("header and footer changes should be ignored, got %v", got)
	}
}

func TestPixelCostPropagatesDifferError(t *testing.T) {
	boom := errors.New("boom")
	failing := DifferFunc(func(a, b *image.RGBA, threshold float64, includeAA bool) (int, error) {
		return 0, boom
	})
	_, err := PixelCost(solid(10, 10, white), solid(10, 10, white), 0.1, false, failing)
	if !errors.Is(err, boom) {
		t.Fatalf("expected differ error to propagate, got %v", err)
	}
}

func TestPixelCostPassesCroppedRegions(t *testing.T) {
	var gotA, gotB image.Rectangle
	spy := DifferFunc(func(a, b *image.RGBA, threshold float64, includeAA bool) (int, error) {
		gotA, gotB = a.Bounds(), b.Bounds()
		if threshold != 0.3 || !includeAA {
			t.Fatalf("unexpected settings threshold=%v includeAA=%v", threshold, includeAA)
		}
		return 0, nil
	})
	if _, err := PixelCost(solid(30, 100, white), solid(20, 50, white), 0.3, true, spy); err != nil {
		t.Fatalf("PixelCost returned error: %v", err)
	}
	if gotA.Dx() != gotB.Dx() || gotA.Dy() != gotB.Dy() {
		t.Fatalf("differ received unequal regions %v and %v", gotA, gotB)
	}
	if gotA.Dx() != 20 || gotA.Dy() != 38 {
		t.Fatalf("expected 20x38 common band, got %v", gotA)
	}
}

func TestTextCost(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 0.5},
		{"only short tokens", "a b 12", "- -", 0.5},
		{"one empty", "quarterly revenue report", "", 1},
		{"identical", "Quarterly Revenue Report", "quarterly, revenue; report!", 0},
		{"disjoint", "alpha beta gamma", "delta epsilon zeta", 1},
		{"partial", "alpha beta gamma delta", "alpha beta omega sigma", 1 - 2.0/6.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TextCost(tt.a, tt.b)
			if math.Abs(got-tt.want) > eps {
				t.Fatalf("TextCost = %v, want %v", got, tt.want)
			}
			if back := TextCost(tt.b, tt.a); math.Abs(back-got) > eps {
				t.Fatalf("TextCost not symmetric: %v vs %v", got, back)
			}
			if got < 0 || got > 1 {
				t.Fatalf("TextCost out of range: %v", got)
			}
		})
	}
}

func TestIsTextBearing(t *testing.T) {
	if IsTextBearing("Page 3 of 10") {
		t.Fatal("short footer text should not be text-bearing")
	}
	if !IsTextBearing("This agreement is entered into by the parties below.") {
		t.Fatal("sentence should be text-bearing")
	}
	// 20 characters exactly is not enough.
	if IsTextBearing("abcdefghij klmnopqrs") {
		t.Fatal("text of exactly 20 normalized characters should not be text-bearing")
	}
}

func page(idx int, img image.Image, text string) document.Page {
	return document.Page{Index: idx, Image: img, Text: text}
}

const longText = "The quick brown fox jumps over the lazy dog near the river bank"

func TestModelCostWeights(t *testing.T) {
	differ := pixeldiff.Differ{}
	m, err := New(Options{PixelThreshold: 0.1}, differ)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// Both text-bearing, identical text, opposite pixels: 0.75*0 + 0.25*1.
	got, err := m.Cost(page(0, solid(20, 20, black), longText), page(0, solid(20, 20, white), longText))
	if err != nil {
		t.Fatalf("Cost returned error: %v", err)
	}
	if math.Abs(got-0.25) > eps {
		t.Fatalf("rich-text cost = %v, want 0.25", got)
	}

	// Sparse text on one side: 0.25*1 + 0.75*0.
	got, err = m.Cost(page(1, solid(20, 20, white), "Fig"), page(1, solid(20, 20, white), longText))
	if err != nil {
		t.Fatalf("Cost returned error: %v", err)
	}
	if math.Abs(got-0.25) > eps {
		t.Fatalf("sparse-text cost = %v, want 0.25", got)
	}

	// Image-only pages that match pixel for pixel keep the neutral text share.
	got, err = m.Cost(page(2, solid(20, 20, white), ""), page(2, solid(20, 20, white), ""))
	if err != nil {
		t.Fatalf("Cost returned error: %v", err)
	}
	if math.Abs(got-SparseTextWeight*NeutralTextCost) > eps {
		t.Fatalf("image-only cost = %v, want %v", got, SparseTextWeight*NeutralTextCost)
	}
}

func TestModelScannedModeUsesPixelsOnly(t *testing.T) {
	differ := pixeldiff.Differ{}
	m, err := New(Options{PixelThreshold: 0.1, ScannedMode: true}, differ)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	a := page(0, solid(50, 50, white), longText)
	b := page(0, leftHalfBlack(50, 50), "completely different words entirely unrelated")

	combined, err := m.Cost(a, b)
	if err != nil {
		t.Fatalf("Cost returned error: %v", err)
	}
	pixel, err := PixelCost(a.Image, b.Image, 0.1, false, differ)
	if err != nil {
		t.Fatalf("PixelCost returned error: %v", err)
	}
	if combined != pixel {
		t.Fatalf("scanned cost %v should equal pixel cost %v", combined, pixel)
	}
}

func TestModelIdentityForTextPages(t *testing.T) {
	m, err := New(Options{PixelThreshold: 0.1}, pixeldiff.Differ{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	p := page(0, leftHalfBlack(30, 40), longText)
	got, err := m.Cost(p, p)
	if err != nil {
		t.Fatalf("Cost returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("self cost = %v, want 0", got)
	}
}

func TestModelCachesPreparedPages(t *testing.T) {
	m, err := New(Options{PixelThreshold: 0.1}, pixeldiff.Differ{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	a := []document.Page{page(0, solid(10, 10, white), ""), page(1, solid(10, 10, black), "")}
	b := []document.Page{page(0, solid(10, 10, white), ""), page(1, solid(10, 10, black), ""), page(2, solid(10, 10, white), "")}
	for _, pa := range a {
		for _, pb := range b {
			if _, err := m.Cost(pa, pb); err != nil {
				t.Fatalf("Cost returned error: %v", err)
			}
		}
	}
	na, nb := m.PreparedPages()
	if na != 2 || nb != 3 {
		t.Fatalf("PreparedPages = (%d, %d), want (2, 3)", na, nb)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{PixelThreshold: 1.2}, pixeldiff.Differ{}); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
	if _, err := New(Options{PixelThreshold: 0.1}, nil); err == nil {
		t.Fatal("expected error for nil differ")
	}
}

func TestModelCostReportsEmptyPage(t *testing.T) {
	m, err := New(Options{PixelThreshold: 0.1}, pixeldiff.Differ{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	empty := page(0, image.NewRGBA(image.Rect(0, 0, 0, 0)), "")
	if _, err := m.Cost(empty, page(0, solid(5, 5, white), "")); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}
