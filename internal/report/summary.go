package report

import (
	"fmt"

	"pagecompare/internal/align"
)

// Summary condenses an edit script into headline numbers.
type Summary struct {
	Matches  int `json:"matches"`
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
	// MeanSimilarity is the average similarity percentage over matches, 0
	// when nothing matched.
	MeanSimilarity float64 `json:"mean_similarity"`
	// Identical is true when every page matched at zero cost.
	Identical bool `json:"identical"`
}

// Summarize tallies res.
func Summarize(res *align.Result) Summary {
	if res == nil {
		return Summary{}
	}
	counts := res.Counts()
	s := Summary{
		Matches:   counts.Matches,
		Inserted:  counts.Inserted,
		Deleted:   counts.Deleted,
		Identical: counts.Inserted == 0 && counts.Deleted == 0,
	}
	total := 0.0
	for _, step := range res.Steps {
		if step.Kind != align.Match {
			continue
		}
		total += step.Similarity()
		if step.Cost != 0 {
			s.Identical = false
		}
	}
	if s.Matches > 0 {
		s.MeanSimilarity = total / float64(s.Matches)
	}
	return s
}

// Row is one edit script step prepared for display.
type Row struct {
	Number int        `json:"number"`
	Kind   string     `json:"kind"`
	PageA  string     `json:"page_a"`
	PageB  string     `json:"page_b"`
	Step   align.Step `json:"-"`
}

// Similarity returns the display similarity for matches and false for gaps.
func (r Row) Similarity() (float64, bool) {
	if r.Step.Kind != align.Match {
		return 0, false
	}
	return r.Step.Similarity(), true
}

// SimilarityText formats the row's similarity, or "-" for gaps.
func (r Row) SimilarityText() string {
	sim, ok := r.Similarity()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", sim)
}

// Rows converts res into display rows. sourcesA and sourcesB optionally
// label pages by their source file.
func Rows(res *align.Result, sourcesA, sourcesB []string) []Row {
	if res == nil {
		return nil
	}
	rows := make([]Row, 0, len(res.Steps))
	for i, step := range res.Steps {
		row := Row{Number: i + 1, Step: step, PageA: "-", PageB: "-"}
		switch step.Kind {
		case align.Match:
			row.Kind = "match"
		case align.DeleteA:
			row.Kind = "only in A"
		case align.InsertB:
			row.Kind = "only in B"
		default:
			row.Kind = string(step.Kind)
		}
		if step.AIndex >= 0 {
			row.PageA = PageLabel(step.AIndex, sourcesA)
		}
		if step.BIndex >= 0 {
			row.PageB = PageLabel(step.BIndex, sourcesB)
		}
		rows = append(rows, row)
	}
	return rows
}

// PageLabel renders a zero-based page index as a 1-based page number, with
// the page's source name when one is known.
func PageLabel(index int, sources []string) string {
	if index >= 0 && index < len(sources) && sources[index] != "" {
		return fmt.Sprintf("%d (%s)", index+1, sources[index])
	}
	return fmt.Sprintf("%d", index+1)
}
