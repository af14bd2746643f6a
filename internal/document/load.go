package document

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pagecompare/internal/logging"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// IsImageFile reports whether name has a supported page image extension.
func IsImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// pageSource describes one page before its image is decoded.
type pageSource struct {
	image    string
	text     string
	textFile string
	hasText  bool
}

// Load reads a document from a directory of page images or a YAML manifest.
// Cancellation is checked between pages.
func Load(ctx context.Context, path string, logger *slog.Logger) (*Document, error) {
	logger = logging.NewComponentLogger(logger, "document")

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", path, err)
	}

	var (
		name    string
		sources []pageSource
		hocr    string
	)
	switch {
	case info.IsDir():
		name = filepath.Base(filepath.Clean(path))
		sources, hocr, err = scanDirectory(path)
	case IsManifestFile(path):
		var m *Manifest
		m, err = ReadManifest(path)
		if err == nil {
			name, sources, hocr = m.resolve(path)
		}
	case IsImageFile(path):
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		sources = []pageSource{{image: path}}
		sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
		if fileExists(sidecar) {
			sources[0].textFile = sidecar
		}
	default:
		return nil, fmt.Errorf("open document %s: unsupported file type %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPages)
	}

	var hocrPages []string
	if hocr != "" {
		hocrPages, err = readHOCRFile(hocr)
		if err != nil {
			return nil, err
		}
		if len(hocrPages) != len(sources) {
			logging.WarnWithContext(logger, "hocr page count differs from image count", "hocr_page_mismatch",
				logging.String("hocr", hocr),
				logging.Int("hocr_pages", len(hocrPages)),
				logging.Int("images", len(sources)),
				logging.String(logging.FieldErrorHint, "regenerate the hocr file from the same page images"),
				logging.String(logging.FieldImpact, "pages without hocr text compare on pixels only"),
			)
		}
	}

	doc := &Document{Name: name, Path: path, Pages: make([]Page, 0, len(sources))}
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := decodeImage(src.image)
		if err != nil {
			return nil, err
		}
		text, err := src.resolveText()
		if err != nil {
			return nil, err
		}
		if !src.hasText && src.textFile == "" && i < len(hocrPages) {
			text = hocrPages[i]
		}
		doc.Pages = append(doc.Pages, Page{Index: i, Image: img, Text: text, Source: src.image})
		logger.Debug("page loaded",
			logging.Int("page", i),
			logging.String("source", src.image),
			logging.Int("width", img.Bounds().Dx()),
			logging.Int("height", img.Bounds().Dy()),
			logging.Int("text_chars", len([]rune(text))),
		)
	}

	logger.Info("document loaded",
		logging.String("name", doc.Name),
		logging.Int("pages", len(doc.Pages)),
		logging.Bool("has_text", doc.HasText()),
	)
	return doc, nil
}

func scanDirectory(dir string) ([]pageSource, string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, "", fmt.Errorf("read document directory %s: %w", dir, err)
	}

	var images, hocrFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch ext := strings.ToLower(filepath.Ext(name)); {
		case IsImageFile(name):
			images = append(images, name)
		case ext == ".hocr" || ext == ".html" || ext == ".htm":
			hocrFiles = append(hocrFiles, name)
		}
	}
	slices.SortFunc(images, compareNatural)
	slices.SortFunc(hocrFiles, compareNatural)

	sources := make([]pageSource, 0, len(images))
	for _, name := range images {
		src := pageSource{image: filepath.Join(dir, name)}
		sidecar := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+".txt")
		if fileExists(sidecar) {
			src.textFile = sidecar
		}
		sources = append(sources, src)
	}

	hocr := ""
	if len(hocrFiles) > 0 {
		hocr = filepath.Join(dir, hocrFiles[0])
	}
	return sources, hocr, nil
}

func (s pageSource) resolveText() (string, error) {
	if s.hasText {
		return s.text, nil
	}
	if s.textFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.textFile)
	if err != nil {
		return "", fmt.Errorf("read page text %s: %w", s.textFile, err)
	}
	return string(data), nil
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode page image %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode page image %s: empty image", path)
	}
	return img, nil
}

func readHOCRFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hocr %s: %w", path, err)
	}
	defer file.Close()

	pages, err := ParseHOCR(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pages, nil
}

func compareNatural(a, b string) int {
	switch {
	case naturalLess(a, b):
		return -1
	case naturalLess(b, a):
		return 1
	default:
		return 0
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
