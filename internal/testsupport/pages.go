package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// PageSpec describes one page written by WriteDocument.
type PageSpec struct {
	// Name is the image file name without extension.
	Name string
	// Image defaults to a blank white page.
	Image image.Image
	// Text, when set, is written as a .txt sidecar.
	Text string
}

// BlankPage returns a white page of the given size.
func BlankPage(w, h int) *image.RGBA {
	return SolidPage(w, h, color.RGBA{R: 255, G: 255, B: 255, A: 255})
}

// SolidPage returns a page filled with c.
func SolidPage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// StripedPage returns a white page with a black horizontal bar at row offset
// bar, giving otherwise blank pages distinguishable content.
func StripedPage(w, h, bar int) *image.RGBA {
	img := BlankPage(w, h)
	for y := bar; y < min(bar+h/10+1, h); y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	return img
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// WriteDocument writes pages as PNG files with optional text sidecars into
// dir and returns dir.
func WriteDocument(t testing.TB, dir string, pages ...PageSpec) string {
	t.Helper()

	for _, page := range pages {
		img := page.Image
		if img == nil {
			img = BlankPage(60, 80)
		}
		WritePNG(t, filepath.Join(dir, page.Name+".png"), img)
		if strings.TrimSpace(page.Text) != "" {
			if err := os.WriteFile(filepath.Join(dir, page.Name+".txt"), []byte(page.Text), 0o644); err != nil {
				t.Fatalf("write text for %s: %v", page.Name, err)
			}
		}
	}
	return dir
}
