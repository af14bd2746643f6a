package align

import "fmt"

// StepKind tags an edit script step.
type StepKind string

const (
	// Match pairs a page of A with a page of B.
	Match StepKind = "match"
	// DeleteA marks a page found only in A.
	DeleteA StepKind = "delete"
	// InsertB marks a page found only in B.
	InsertB StepKind = "insert"
)

// Step is one entry of an edit script. The index of the absent side is -1
// for DeleteA and InsertB steps; Cost is only meaningful for Match.
type Step struct {
	Kind   StepKind `json:"kind"`
	AIndex int      `json:"a_index"`
	BIndex int      `json:"b_index"`
	Cost   float64  `json:"cost"`
}

func matchStep(a, b int, cost float64) Step { return Step{Kind: Match, AIndex: a, BIndex: b, Cost: cost} }

func deleteStep(a int) Step { return Step{Kind: DeleteA, AIndex: a, BIndex: -1} }

func insertStep(b int) Step { return Step{Kind: InsertB, AIndex: -1, BIndex: b} }

// Similarity returns the display percentage for a step: 100 - cost*100 for
// matches, floored at 0, and 0 for gaps.
func (s Step) Similarity() float64 {
	if s.Kind != Match {
		return 0
	}
	return Similarity(s.Cost)
}

func (s Step) String() string {
	switch s.Kind {
	case Match:
		return fmt.Sprintf("Match(%d,%d)", s.AIndex, s.BIndex)
	case DeleteA:
		return fmt.Sprintf("DeleteA(%d)", s.AIndex)
	case InsertB:
		return fmt.Sprintf("InsertB(%d)", s.BIndex)
	default:
		return fmt.Sprintf("Step(%s)", string(s.Kind))
	}
}

// Similarity converts a match cost to a percentage: max(0, 100 - cost*100).
func Similarity(cost float64) float64 {
	return max(0, 100-cost*100)
}

// Counts tallies the steps of an edit script by kind.
type Counts struct {
	Matches  int `json:"matches"`
	Deleted  int `json:"deleted"`
	Inserted int `json:"inserted"`
}

// Result is the output of one alignment run.
type Result struct {
	Steps  []Step `json:"steps"`
	Params Params `json:"params"`
	// Evaluations is the number of distinct page pairs scored.
	Evaluations int `json:"evaluations"`
}

// Counts tallies r's steps by kind.
func (r *Result) Counts() Counts {
	var c Counts
	for _, s := range r.Steps {
		switch s.Kind {
		case Match:
			c.Matches++
		case DeleteA:
			c.Deleted++
		case InsertB:
			c.Inserted++
		}
	}
	return c
}
