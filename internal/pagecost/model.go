package pagecost

import (
	"errors"
	"fmt"
	"image"
	"math"

	"pagecompare/internal/document"
	"pagecompare/internal/textutil"
)

// Weights applied by Model.Cost outside scanned mode.
const (
	RichTextWeight    = 0.75
	SparseTextWeight  = 0.25
	RichPixelWeight   = 1 - RichTextWeight
	SparsePixelWeight = 1 - SparseTextWeight
)

// Side identifies which document a page belongs to.
type Side int

const (
	SideA Side = iota
	SideB
)

// Options are the comparison settings a Model applies to every pair.
type Options struct {
	PixelThreshold      float64
	IncludeAntialiasing bool
	// ScannedMode ignores page text and scores pixels only.
	ScannedMode bool
}

type preparedText struct {
	tokens  textutil.TokenSet
	bearing bool
}

// Model scores page pairs for one alignment run. It caches each page's
// prepared content band and token set by side and page index, so pages must
// keep stable indexes for the Model's lifetime. A Model is not safe for
// concurrent use.
type Model struct {
	opts   Options
	differ Differ
	bands  [2]map[int]*image.RGBA
	texts  [2]map[int]preparedText
}

// New returns a Model for opts using differ for pixel comparison.
func New(opts Options, differ Differ) (*Model, error) {
	if differ == nil {
		return nil, errors.New("pagecost: nil differ")
	}
	if math.IsNaN(opts.PixelThreshold) || opts.PixelThreshold < 0 || opts.PixelThreshold > 1 {
		return nil, fmt.Errorf("pagecost: pixel threshold %v outside [0,1]", opts.PixelThreshold)
	}
	m := &Model{opts: opts, differ: differ}
	for i := range m.bands {
		m.bands[i] = make(map[int]*image.RGBA)
		m.texts[i] = make(map[int]preparedText)
	}
	return m, nil
}

// Options returns the settings the model was built with.
func (m *Model) Options() Options {
	return m.opts
}

// Cost returns the combined dissimilarity of page a from document A and page
// b from document B.
func (m *Model) Cost(a, b document.Page) (float64, error) {
	pixel, err := m.PixelCost(a, b)
	if err != nil {
		return 0, err
	}
	if m.opts.ScannedMode {
		return pixel, nil
	}

	ta := m.text(SideA, a)
	tb := m.text(SideB, b)
	text := tokenCost(ta.tokens, tb.tokens)
	if ta.bearing && tb.bearing {
		return RichTextWeight*text + RichPixelWeight*pixel, nil
	}
	return SparseTextWeight*text + SparsePixelWeight*pixel, nil
}

// PixelCost returns the pixel cost of a and b using cached content bands.
func (m *Model) PixelCost(a, b document.Page) (float64, error) {
	bandA, err := m.band(SideA, a)
	if err != nil {
		return 0, err
	}
	bandB, err := m.band(SideB, b)
	if err != nil {
		return 0, err
	}
	return bandCost(bandA, bandB, m.opts.PixelThreshold, m.opts.IncludeAntialiasing, m.differ)
}

func (m *Model) band(side Side, p document.Page) (*image.RGBA, error) {
	if band, ok := m.bands[side][p.Index]; ok {
		return band, nil
	}
	band, err := prepareBand(p.Image)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", p.Index, err)
	}
	m.bands[side][p.Index] = band
	return band, nil
}

func (m *Model) text(side Side, p document.Page) preparedText {
	if t, ok := m.texts[side][p.Index]; ok {
		return t
	}
	t := preparedText{tokens: textutil.Tokens(p.Text), bearing: IsTextBearing(p.Text)}
	m.texts[side][p.Index] = t
	return t
}

// PreparedPages returns how many page bands have been prepared per side.
func (m *Model) PreparedPages() (a, b int) {
	return len(m.bands[SideA]), len(m.bands[SideB])
}
