package compare

import (
	"context"
	"log/slog"
	"time"

	"pagecompare/internal/align"
	"pagecompare/internal/config"
	"pagecompare/internal/history"
	"pagecompare/internal/logging"
	"pagecompare/internal/pagecost"
	"pagecompare/internal/pixeldiff"
)

// Recorder persists finished runs. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// Service runs comparisons using the configured defaults.
type Service struct {
	cfg      *config.Config
	base     *slog.Logger
	logger   *slog.Logger
	differ   pagecost.Differ
	recorder Recorder
	now      func() time.Time
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithDiffer replaces the pixel-difference implementation.
func WithDiffer(differ pagecost.Differ) Option {
	return func(s *Service) {
		if differ != nil {
			s.differ = differ
		}
	}
}

// WithRecorder enables run history.
func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a comparison service.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...Option) *Service {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Service{
		cfg:    cfg,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "compare"),
		differ: pixeldiff.Differ{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultSettings returns the alignment settings from configuration.
func (s *Service) DefaultSettings() align.Settings {
	return align.Settings{
		PixelThreshold:      s.cfg.Alignment.PixelThreshold,
		IncludeAntialiasing: s.cfg.Alignment.IncludeAntialiasing,
		Tolerance:           s.cfg.Alignment.Tolerance,
		ScannedMode:         s.cfg.Alignment.ScannedMode,
	}
}
