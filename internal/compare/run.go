package compare

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pagecompare/internal/align"
	"pagecompare/internal/document"
	"pagecompare/internal/fileutil"
	"pagecompare/internal/history"
	"pagecompare/internal/logging"
	"pagecompare/internal/report"
	"pagecompare/internal/services"
	"pagecompare/internal/textutil"
)

// Pipeline phases attached to the context and to wrapped errors.
const (
	PhaseLoad    = "load"
	PhaseAlign   = "align"
	PhaseReport  = "report"
	PhaseHistory = "history"
)

// Request describes one comparison.
type Request struct {
	PathA string
	PathB string
	// Settings overrides the configured alignment settings when set.
	Settings *align.Settings
	// Report requests a PDF export. ReportPath names it; when empty a name is
	// derived from the document names inside the report directory.
	Report     bool
	ReportPath string
	// SkipHistory leaves this run out of the history database.
	SkipHistory bool
}

// Outcome is the result of a successful comparison.
type Outcome struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	DocumentA  *document.Document
	DocumentB  *document.Document
	Settings   align.Settings
	Result     *align.Result
	Summary    report.Summary
	ReportPath string
	// Recorded reports whether the run reached the history database.
	Recorded bool
}

// SourcesA returns page source file names of document A, by page index.
func (o *Outcome) SourcesA() []string { return pageSources(o.DocumentA) }

// SourcesB returns page source file names of document B, by page index.
func (o *Outcome) SourcesB() []string { return pageSources(o.DocumentB) }

// ImagesOnly reports whether neither document carries page text while
// scanned mode is off. Text cost then stays neutral and pixel-identical pages
// do not reach 100% similarity.
func (o *Outcome) ImagesOnly() bool {
	return !o.Settings.ScannedMode && !o.DocumentA.HasText() && !o.DocumentB.HasText()
}

// Rows returns the edit script as display rows.
func (o *Outcome) Rows() []report.Row {
	return report.Rows(o.Result, o.SourcesA(), o.SourcesB())
}

func pageSources(doc *document.Document) []string {
	if doc == nil {
		return nil
	}
	out := make([]string, len(doc.Pages))
	for i, p := range doc.Pages {
		out[i] = filepath.Base(p.Source)
	}
	return out
}

// Run executes req. Loading, alignment and requested report failures are
// returned; a history failure is logged and leaves Outcome.Recorded false.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	if strings.TrimSpace(req.PathA) == "" || strings.TrimSpace(req.PathB) == "" {
		return nil, services.Wrap(services.ErrValidation, PhaseLoad, "Run", "two document paths are required", nil)
	}
	settings := s.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}
	settings, err := settings.Normalize()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, PhaseAlign, "Run", "invalid comparison settings", err)
	}

	out := &Outcome{RunID: uuid.NewString(), StartedAt: s.now(), Settings: settings}
	ctx = services.WithRunID(ctx, out.RunID)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("comparison started",
		logging.String("document_a", req.PathA),
		logging.String("document_b", req.PathB),
		logging.Any("settings", settings),
	)

	if out.DocumentA, err = s.load(ctx, "a", req.PathA); err != nil {
		return nil, err
	}
	if out.DocumentB, err = s.load(ctx, "b", req.PathB); err != nil {
		return nil, err
	}

	alignCtx := services.WithPhase(ctx, PhaseAlign)
	out.Result, err = align.Align(alignCtx, out.DocumentA.Pages, out.DocumentB.Pages, settings, s.differ)
	if err != nil {
		marker := services.ErrComparison
		if errors.Is(err, align.ErrInvalidSettings) {
			marker = services.ErrValidation
		}
		return nil, services.Wrap(marker, PhaseAlign, "Align", "page alignment failed", err)
	}
	out.Summary = report.Summarize(out.Result)
	out.Duration = s.now().Sub(out.StartedAt)
	logging.WithContext(alignCtx, s.logger).Info("alignment complete",
		logging.String(logging.FieldEventType, "alignment_complete"),
		logging.Int("matches", out.Summary.Matches),
		logging.Int("only_in_a", out.Summary.Deleted),
		logging.Int("only_in_b", out.Summary.Inserted),
		logging.Float64("mean_similarity", out.Summary.MeanSimilarity),
		logging.Bool("identical", out.Summary.Identical),
		logging.Int("pair_evaluations", out.Result.Evaluations),
		logging.Int64("page_pairs", int64(out.DocumentA.Len())*int64(out.DocumentB.Len())),
		logging.Group("params",
			logging.Int("max_consecutive_gaps", out.Result.Params.MaxConsecutiveGaps),
			logging.Float64("bad_match_cutoff", out.Result.Params.BadMatchCutoff),
			logging.Float64("bad_match_penalty", out.Result.Params.BadMatchPenalty),
		),
		logging.Duration("elapsed", out.Duration),
	)

	if req.Report || req.ReportPath != "" {
		if err := s.writeReport(ctx, req, out); err != nil {
			return nil, err
		}
	}

	if s.recorder != nil && !req.SkipHistory {
		s.record(ctx, out)
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, side, path string) (*document.Document, error) {
	ctx = services.WithDocument(services.WithPhase(ctx, PhaseLoad), side)
	doc, err := document.Load(ctx, path, logging.WithContext(ctx, s.base))
	if err != nil {
		return nil, services.Wrap(services.ErrInput, PhaseLoad, "Load", "document "+strings.ToUpper(side)+" "+path, err)
	}
	return doc, nil
}

func (s *Service) writeReport(ctx context.Context, req Request, out *Outcome) error {
	ctx = services.WithPhase(ctx, PhaseReport)
	name := req.ReportPath
	if name == "" {
		name = textutil.ReportFileName(out.DocumentA.Name, out.DocumentB.Name, "pdf")
	}
	path := s.cfg.ReportPath(name)

	rep := report.Report{
		Title:       s.cfg.Report.Title,
		RunID:       out.RunID,
		GeneratedAt: out.StartedAt,
		DocumentA:   report.DocumentInfo{Name: out.DocumentA.Name, Pages: out.DocumentA.Len(), Sources: out.SourcesA()},
		DocumentB:   report.DocumentInfo{Name: out.DocumentB.Name, Pages: out.DocumentB.Len(), Sources: out.SourcesB()},
		Settings:    out.Settings,
		Result:      out.Result,
	}
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return report.WritePDF(w, rep)
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, PhaseReport, "WritePDF", path, err)
	}
	out.ReportPath = path
	logging.WithContext(ctx, s.logger).Info("report written",
		logging.String(logging.FieldEventType, "report_written"),
		logging.String("path", path),
	)
	return nil
}

func (s *Service) record(ctx context.Context, out *Outcome) {
	ctx = services.WithPhase(ctx, PhaseHistory)
	run := &history.Run{
		ID:         out.RunID,
		CreatedAt:  out.StartedAt,
		DocumentA:  out.DocumentA.Name,
		DocumentB:  out.DocumentB.Name,
		PagesA:     out.DocumentA.Len(),
		PagesB:     out.DocumentB.Len(),
		Settings:   out.Settings,
		Params:     out.Result.Params,
		Summary:    out.Summary,
		Steps:      out.Result.Steps,
		Duration:   out.Duration,
		ReportPath: out.ReportPath,
	}
	if err := s.recorder.Record(ctx, run); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path permissions or disable history"),
			logging.String(logging.FieldImpact, "run will not appear in history list"),
		)
		return
	}
	out.Recorded = true
}
