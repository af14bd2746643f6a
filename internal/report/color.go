package report

import "github.com/lucasb-eyer/go-colorful"

var (
	lowSimilarity  = colorful.Color{R: 0.85, G: 0.25, B: 0.22}
	highSimilarity = colorful.Color{R: 0.26, G: 0.71, B: 0.32}
	gapColor       = colorful.Color{R: 0.86, G: 0.86, B: 0.86}
)

// SimilarityColor maps a similarity percentage onto a red to green scale,
// blended in Lab space so the midpoint stays readable.
func SimilarityColor(similarity float64) colorful.Color {
	t := min(max(similarity/100, 0), 1)
	return lowSimilarity.BlendLab(highSimilarity, t).Clamped()
}

// SimilarityHex returns SimilarityColor as a #rrggbb string.
func SimilarityHex(similarity float64) string {
	return SimilarityColor(similarity).Hex()
}
