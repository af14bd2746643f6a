package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest lists a document's pages explicitly. Relative paths resolve
// against the manifest's directory.
type Manifest struct {
	Name  string         `yaml:"name"`
	HOCR  string         `yaml:"hocr"`
	Pages []ManifestPage `yaml:"pages"`
}

// ManifestPage describes one page. Text wins over TextFile; when neither is
// set the page takes its text from the manifest's hOCR file, if any.
type ManifestPage struct {
	Image    string  `yaml:"image"`
	Text     *string `yaml:"text"`
	TextFile string  `yaml:"text_file"`
}

// IsManifestFile reports whether path names a YAML manifest.
func IsManifestFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// ReadManifest parses and validates a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks that every page names an image.
func (m *Manifest) Validate() error {
	if len(m.Pages) == 0 {
		return ErrNoPages
	}
	for i, p := range m.Pages {
		if strings.TrimSpace(p.Image) == "" {
			return fmt.Errorf("pages[%d].image must be set", i)
		}
		if p.Text != nil && strings.TrimSpace(p.TextFile) != "" {
			return fmt.Errorf("pages[%d]: text and text_file are mutually exclusive", i)
		}
	}
	return nil
}

func (m *Manifest) resolve(manifestPath string) (string, []pageSource, string) {
	base := filepath.Dir(manifestPath)
	name := strings.TrimSpace(m.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(manifestPath), filepath.Ext(manifestPath))
	}

	sources := make([]pageSource, 0, len(m.Pages))
	for _, p := range m.Pages {
		src := pageSource{image: resolvePath(base, p.Image)}
		switch {
		case p.Text != nil:
			src.text = *p.Text
			src.hasText = true
		case strings.TrimSpace(p.TextFile) != "":
			src.textFile = resolvePath(base, p.TextFile)
		}
		sources = append(sources, src)
	}

	hocr := ""
	if strings.TrimSpace(m.HOCR) != "" {
		hocr = resolvePath(base, m.HOCR)
	}
	return name, sources, hocr
}

func resolvePath(base, p string) string {
	p = strings.TrimSpace(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
