// Package pixeldiff counts mismatched pixels between two equally sized rasters.
//
// Counting is delegated to github.com/orisano/pixelmatch: colour differences
// are measured in YIQ space after blending onto white, a pixel mismatches when
// its delta exceeds 35215·threshold², and anti-aliased pixels are skipped
// unless IncludeAA is set. This package validates inputs, rebases sub-images
// to a common origin and maps size errors to ErrSizeMismatch.
//
// Differ adapts Count to the interface the page cost model expects.
package pixeldiff
