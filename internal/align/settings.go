package align

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// MaxTolerance is the largest tolerance; higher values are clamped to it.
const MaxTolerance = 5

// ErrInvalidSettings is returned for settings outside their documented ranges.
var ErrInvalidSettings = errors.New("invalid alignment settings")

// Settings are the per-run comparison settings.
type Settings struct {
	PixelThreshold      float64 `json:"pixel_threshold"`
	IncludeAntialiasing bool    `json:"include_antialiasing"`
	Tolerance           int     `json:"tolerance"`
	ScannedMode         bool    `json:"scanned_mode"`
}

// Normalize validates s and clamps Tolerance to MaxTolerance.
func (s Settings) Normalize() (Settings, error) {
	if s.Tolerance < 0 {
		return s, fmt.Errorf("%w: tolerance %d is negative", ErrInvalidSettings, s.Tolerance)
	}
	if math.IsNaN(s.PixelThreshold) || s.PixelThreshold < 0 || s.PixelThreshold > 1 {
		return s, fmt.Errorf("%w: pixel threshold %v outside [0,1]", ErrInvalidSettings, s.PixelThreshold)
	}
	if s.Tolerance > MaxTolerance {
		s.Tolerance = MaxTolerance
	}
	return s, nil
}

// Params are the alignment parameters derived from a tolerance.
type Params struct {
	Tolerance          int
	MaxConsecutiveGaps int
	// GapPenalty is +Inf at tolerance 0.
	GapPenalty      float64
	BadMatchCutoff  float64
	BadMatchPenalty float64
}

// Coefficients of the tolerance-to-parameter mapping, in hundredths so that
// every derived value is the nearest float64 to its decimal form.
const (
	baseGapPenalty      = 60
	gapPenaltyStep      = 8
	baseBadMatchCutoff  = 60
	badMatchCutoffStep  = 5
	badMatchPenaltyStep = 15
)

func hundredths(v int) float64 {
	return float64(v) / 100
}

// DeriveParams maps tolerance, clamped to [0, MaxTolerance], to alignment
// parameters. Higher tolerance allows longer gap runs, makes each gap cheaper,
// lowers the cutoff for an acceptable match and raises the surcharge on
// matches above it.
func DeriveParams(tolerance int) Params {
	t := min(max(tolerance, 0), MaxTolerance)
	p := Params{
		Tolerance:          t,
		MaxConsecutiveGaps: t,
		GapPenalty:         math.Inf(1),
		BadMatchCutoff:     hundredths(baseBadMatchCutoff - badMatchCutoffStep*t),
		BadMatchPenalty:    hundredths(badMatchPenaltyStep * t),
	}
	if t > 0 {
		p.GapPenalty = hundredths(baseGapPenalty - gapPenaltyStep*(t-1))
	}
	return p
}

type paramsJSON struct {
	Tolerance          int      `json:"tolerance"`
	MaxConsecutiveGaps int      `json:"max_consecutive_gaps"`
	GapPenalty         *float64 `json:"gap_penalty"`
	BadMatchCutoff     float64  `json:"bad_match_cutoff"`
	BadMatchPenalty    float64  `json:"bad_match_penalty"`
}

// MarshalJSON encodes an infinite gap penalty as null.
func (p Params) MarshalJSON() ([]byte, error) {
	out := paramsJSON{
		Tolerance:          p.Tolerance,
		MaxConsecutiveGaps: p.MaxConsecutiveGaps,
		BadMatchCutoff:     p.BadMatchCutoff,
		BadMatchPenalty:    p.BadMatchPenalty,
	}
	if !math.IsInf(p.GapPenalty, 0) {
		gap := p.GapPenalty
		out.GapPenalty = &gap
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a null gap penalty as +Inf.
func (p *Params) UnmarshalJSON(data []byte) error {
	var in paramsJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Params{
		Tolerance:          in.Tolerance,
		MaxConsecutiveGaps: in.MaxConsecutiveGaps,
		GapPenalty:         math.Inf(1),
		BadMatchCutoff:     in.BadMatchCutoff,
		BadMatchPenalty:    in.BadMatchPenalty,
	}
	if in.GapPenalty != nil {
		p.GapPenalty = *in.GapPenalty
	}
	return nil
}
