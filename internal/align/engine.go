package align

import (
	"context"
	"fmt"
	"math"
	"slices"

	"pagecompare/internal/document"
	"pagecompare/internal/pagecost"
)

// CostFunc returns the dissimilarity in [0,1] of page i of A and page j of B.
type CostFunc func(i, j int) (float64, error)

// pairCache is a read-through memo of page-pair costs for one run.
type pairCache struct {
	m     int
	costs []float64
	known []bool
	fn    CostFunc
	evals int
}

func newPairCache(n, m int, fn CostFunc) *pairCache {
	return &pairCache{
		m:     m,
		costs: make([]float64, n*m),
		known: make([]bool, n*m),
		fn:    fn,
	}
}

func (c *pairCache) cost(ctx context.Context, i, j int) (float64, error) {
	k := i*c.m + j
	if c.known[k] {
		return c.costs[k], nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := c.fn(i, j)
	if err != nil {
		return 0, fmt.Errorf("cost of pair (%d,%d): %w", i, j, err)
	}
	c.costs[k] = v
	c.known[k] = true
	c.evals++
	return v, nil
}

// move records which candidate won a DP cell.
type move uint8

const (
	moveNone move = iota
	moveDiag
	moveUp
	moveLeft
)

// AlignCosts aligns a sequence of n pages against one of m pages using cost
// for page-pair dissimilarity. Either a complete edit script is returned or an
// error, never a partial script.
func AlignCosts(ctx context.Context, n, m int, params Params, cost CostFunc) (*Result, error) {
	if n < 0 || m < 0 {
		return nil, fmt.Errorf("%w: negative page count (%d, %d)", ErrInvalidSettings, n, m)
	}
	if cost == nil {
		return nil, fmt.Errorf("%w: nil cost function", ErrInvalidSettings)
	}
	cache := newPairCache(n, m, cost)

	var (
		steps []Step
		err   error
	)
	if params.MaxConsecutiveGaps == 0 {
		steps, err = alignPositional(ctx, n, m, cache)
	} else {
		steps, err = alignBounded(ctx, n, m, params, cache)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Steps: steps, Params: params, Evaluations: cache.evals}, nil
}

// alignPositional pairs pages by index up to min(n,m), then emits the
// remainder of the longer sequence as trailing deletions or insertions.
func alignPositional(ctx context.Context, n, m int, cache *pairCache) ([]Step, error) {
	steps := make([]Step, 0, max(n, m))
	for k := range min(n, m) {
		c, err := cache.cost(ctx, k, k)
		if err != nil {
			return nil, err
		}
		steps = append(steps, matchStep(k, k, c))
	}
	for i := m; i < n; i++ {
		steps = append(steps, deleteStep(i))
	}
	for j := n; j < m; j++ {
		steps = append(steps, insertStep(j))
	}
	return steps, nil
}

// alignBounded runs the gap-bounded edit-distance DP. runA and runB hold the
// length of the consecutive up (delete) or left (insert) run ending at each
// cell; a gap move is legal only while that run is below the limit. Ties
// prefer diagonal, then up, then left.
func alignBounded(ctx context.Context, n, m int, params Params, cache *pairCache) ([]Step, error) {
	rows, cols := n+1, m+1
	dp := make([]float64, rows*cols)
	runA := make([]int, rows*cols)
	runB := make([]int, rows*cols)
	moves := make([]move, rows*cols)
	at := func(i, j int) int { return i*cols + j }

	gap := params.GapPenalty
	for i := 1; i <= n; i++ {
		dp[at(i, 0)] = dp[at(i-1, 0)] + gap
		runA[at(i, 0)] = runA[at(i-1, 0)] + 1
		moves[at(i, 0)] = moveUp
	}
	for j := 1; j <= m; j++ {
		dp[at(0, j)] = dp[at(0, j-1)] + gap
		runB[at(0, j)] = runB[at(0, j-1)] + 1
		moves[at(0, j)] = moveLeft
	}

	inf := math.Inf(1)
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			c, err := cache.cost(ctx, i-1, j-1)
			if err != nil {
				return nil, err
			}
			if c > params.BadMatchCutoff {
				c += params.BadMatchPenalty
			}

			best, bestMove := dp[at(i-1, j-1)]+c, moveDiag
			up := inf
			if runA[at(i-1, j)] < params.MaxConsecutiveGaps {
				up = dp[at(i-1, j)] + gap
			}
			if up < best {
				best, bestMove = up, moveUp
			}
			left := inf
			if runB[at(i, j-1)] < params.MaxConsecutiveGaps {
				left = dp[at(i, j-1)] + gap
			}
			if left < best {
				best, bestMove = left, moveLeft
			}

			k := at(i, j)
			dp[k] = best
			moves[k] = bestMove
			switch bestMove {
			case moveUp:
				runA[k] = runA[at(i-1, j)] + 1
			case moveLeft:
				runB[k] = runB[at(i, j-1)] + 1
			}
		}
	}

	steps := make([]Step, 0, n+m)
	for i, j := n, m; i > 0 || j > 0; {
		switch moves[at(i, j)] {
		case moveDiag:
			c, err := cache.cost(ctx, i-1, j-1)
			if err != nil {
				return nil, err
			}
			steps = append(steps, matchStep(i-1, j-1, c))
			i--
			j--
		case moveUp:
			steps = append(steps, deleteStep(i-1))
			i--
		case moveLeft:
			steps = append(steps, insertStep(j-1))
			j--
		default:
			return nil, fmt.Errorf("align: no move recorded at (%d,%d)", i, j)
		}
	}
	slices.Reverse(steps)
	return steps, nil
}

// Align compares two page sequences under settings, scoring page pairs with
// a per-run cost model built on differ.
func Align(ctx context.Context, a, b []document.Page, settings Settings, differ pagecost.Differ) (*Result, error) {
	settings, err := settings.Normalize()
	if err != nil {
		return nil, err
	}
	model, err := pagecost.New(pagecost.Options{
		PixelThreshold:      settings.PixelThreshold,
		IncludeAntialiasing: settings.IncludeAntialiasing,
		ScannedMode:         settings.ScannedMode,
	}, differ)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	cost := func(i, j int) (float64, error) {
		pa, pb := a[i], b[j]
		pa.Index, pb.Index = i, j
		return model.Cost(pa, pb)
	}
	return AlignCosts(ctx, len(a), len(b), DeriveParams(settings.Tolerance), cost)
}
