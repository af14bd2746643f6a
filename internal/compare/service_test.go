package compare_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagecompare/internal/align"
	"pagecompare/internal/compare"
	"pagecompare/internal/history"
	"pagecompare/internal/logging"
	"pagecompare/internal/pagecost"
	"pagecompare/internal/services"
	"pagecompare/internal/testsupport"
)

const (
	textIntro     = "Introduction to the annual shareholder meeting agenda"
	textFinancial = "Financial statements including revenue expenses and margins"
	textAppendix  = "Appendix listing board members committee chairs and advisors"
	textBrochure  = "Completely unrelated marketing brochure about holiday cruises"
)

func writeDocuments(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	a := testsupport.WriteDocument(t, filepath.Join(base, "draft"),
		testsupport.PageSpec{Name: "p1", Text: textIntro},
		testsupport.PageSpec{Name: "p2", Text: textFinancial},
		testsupport.PageSpec{Name: "p3", Text: textAppendix},
	)
	b := testsupport.WriteDocument(t, filepath.Join(base, "final"),
		testsupport.PageSpec{Name: "p1", Text: textIntro},
		testsupport.PageSpec{Name: "p2", Text: textBrochure},
		testsupport.PageSpec{Name: "p3", Text: textFinancial},
		testsupport.PageSpec{Name: "p4", Text: textAppendix},
	)
	return a, b
}

func stepString(steps []align.Step) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

func TestRunDetectsInsertedPage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	svc := compare.NewService(cfg, logging.NewNop(), compare.WithRecorder(store))
	pathA, pathB := writeDocuments(t)

	out, err := svc.Run(context.Background(), compare.Request{PathA: pathA, PathB: pathB, Report: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := "Match(0,0) InsertB(1) Match(1,2) Match(2,3)"
	if got := stepString(out.Result.Steps); got != want {
		t.Fatalf("steps = %s, want %s", got, want)
	}
	if out.Summary.Inserted != 1 || out.Summary.Matches != 3 || out.Summary.Identical {
		t.Fatalf("unexpected summary: %+v", out.Summary)
	}
	if out.Settings.Tolerance != cfg.Alignment.Tolerance {
		t.Fatalf("expected configured tolerance, got %d", out.Settings.Tolerance)
	}
	if got := out.SourcesB(); len(got) != 4 || got[1] != "p2.png" {
		t.Fatalf("unexpected sources: %v", got)
	}

	wantReport := filepath.Join(cfg.Paths.ReportDir, "compare_draft_vs_final.pdf")
	if out.ReportPath != wantReport {
		t.Fatalf("report path = %q, want %q", out.ReportPath, wantReport)
	}
	data, err := os.ReadFile(wantReport)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("report is not a PDF")
	}

	if !out.Recorded {
		t.Fatal("expected run to be recorded")
	}
	run, err := store.Get(context.Background(), out.RunID)
	if err != nil {
		t.Fatalf("history Get failed: %v", err)
	}
	if run.DocumentA != "draft" || run.PagesB != 4 || run.ReportPath != wantReport {
		t.Fatalf("unexpected history run: %+v", run)
	}
	if stepString(run.Steps) != want {
		t.Fatalf("history steps = %s", stepString(run.Steps))
	}
}

func TestRunSettingsOverride(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	svc := compare.NewService(cfg, nil)
	pathA, pathB := writeDocuments(t)

	out, err := svc.Run(context.Background(), compare.Request{
		PathA:    pathA,
		PathB:    pathB,
		Settings: &align.Settings{PixelThreshold: 0.1, Tolerance: 0},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := stepString(out.Result.Steps); got != "Match(0,0) Match(1,1) Match(2,2) InsertB(3)" {
		t.Fatalf("positional steps = %s", got)
	}
	if out.ReportPath != "" || out.Recorded {
		t.Fatalf("no report or history expected: %+v", out)
	}
}

func TestRunIdenticalDocuments(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory(), testsupport.WithScannedMode())
	svc := compare.NewService(cfg, nil)
	dir := testsupport.WriteDocument(t, filepath.Join(t.TempDir(), "scan"),
		testsupport.PageSpec{Name: "001", Image: testsupport.StripedPage(60, 80, 20)},
		testsupport.PageSpec{Name: "002", Image: testsupport.StripedPage(60, 80, 40)},
	)

	out, err := svc.Run(context.Background(), compare.Request{PathA: dir, PathB: dir})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !out.Summary.Identical || out.Summary.MeanSimilarity != 100 {
		t.Fatalf("expected identical documents, got %+v", out.Summary)
	}
	if out.ImagesOnly() {
		t.Fatal("scanned mode runs are not flagged as image-only")
	}
}

func TestRunImageOnlyDocumentsWithoutScannedMode(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	svc := compare.NewService(cfg, nil)
	dir := testsupport.WriteDocument(t, filepath.Join(t.TempDir(), "scan"),
		testsupport.PageSpec{Name: "001", Image: testsupport.StripedPage(60, 80, 20)},
		testsupport.PageSpec{Name: "002", Image: testsupport.StripedPage(60, 80, 40)},
	)

	out, err := svc.Run(context.Background(), compare.Request{PathA: dir, PathB: dir})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !out.ImagesOnly() {
		t.Fatal("expected documents without text to be flagged image-only")
	}
	if out.Summary.Identical || out.Summary.Matches != 2 || out.Summary.MeanSimilarity != 87.5 {
		t.Fatalf("expected neutral text cost on every match, got %+v", out.Summary)
	}
}

func TestRunErrorsMapToExitCodes(t *testing.T) {
	pathA, pathB := writeDocuments(t)
	failing := pagecost.DifferFunc(func(a, b *image.RGBA, threshold float64, includeAA bool) (int, error) {
		return 0, errors.New("raster backend unavailable")
	})

	tests := []struct {
		name   string
		req    compare.Request
		opts   []compare.Option
		marker error
		code   int
	}{
		{
			name:   "missing document",
			req:    compare.Request{PathA: filepath.Join(t.TempDir(), "missing"), PathB: pathB},
			marker: services.ErrInput,
			code:   services.ExitInput,
		},
		{
			name:   "missing path",
			req:    compare.Request{PathA: pathA},
			marker: services.ErrValidation,
			code:   services.ExitUsage,
		},
		{
			name:   "negative tolerance",
			req:    compare.Request{PathA: pathA, PathB: pathB, Settings: &align.Settings{Tolerance: -1, PixelThreshold: 0.1}},
			marker: services.ErrValidation,
			code:   services.ExitUsage,
		},
		{
			name:   "differ failure",
			req:    compare.Request{PathA: pathA, PathB: pathB},
			opts:   []compare.Option{compare.WithDiffer(failing)},
			marker: services.ErrComparison,
			code:   services.ExitFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
			svc := compare.NewService(cfg, nil, tt.opts...)
			out, err := svc.Run(context.Background(), tt.req)
			if !errors.Is(err, tt.marker) {
				t.Fatalf("Run error = %v, want %v", err, tt.marker)
			}
			if out != nil {
				t.Fatalf("expected no outcome, got %+v", out)
			}
			if code := services.ExitCode(err); code != tt.code {
				t.Fatalf("ExitCode = %d, want %d", code, tt.code)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	svc := compare.NewService(cfg, nil)
	pathA, pathB := writeDocuments(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Run(ctx, compare.Request{PathA: pathA, PathB: pathB})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if services.ExitCode(err) != services.ExitCancelled {
		t.Fatalf("unexpected exit code %d", services.ExitCode(err))
	}
}

type failingRecorder struct{ calls int }

func (r *failingRecorder) Record(context.Context, *history.Run) error {
	r.calls++
	return errors.New("disk full")
}

func TestRunHistoryFailureIsLogged(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	recorder := &failingRecorder{}
	svc := compare.NewService(cfg, logger, compare.WithRecorder(recorder))
	pathA, pathB := writeDocuments(t)

	out, err := svc.Run(context.Background(), compare.Request{PathA: pathA, PathB: pathB})
	if err != nil {
		t.Fatalf("history failure must not fail the run: %v", err)
	}
	if out.Recorded || recorder.calls != 1 {
		t.Fatalf("expected one failed record attempt, recorded=%v calls=%d", out.Recorded, recorder.calls)
	}

	var sawWarning, sawComplete bool
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", scanner.Text(), err)
		}
		switch entry["event_type"] {
		case "history_record_failed":
			sawWarning = true
			if entry["run_id"] != out.RunID || entry["phase"] != compare.PhaseHistory {
				t.Fatalf("warning missing run context: %v", entry)
			}
		case "alignment_complete":
			sawComplete = true
			if entry["run_id"] != out.RunID || entry["component"] != "compare" {
				t.Fatalf("alignment log missing context: %v", entry)
			}
			params, ok := entry["params"].(map[string]any)
			if !ok || params["max_consecutive_gaps"] != float64(2) || params["bad_match_cutoff"] != 0.5 {
				t.Fatalf("alignment log missing params group: %v", entry)
			}
			if entry["page_pairs"] != float64(12) {
				t.Fatalf("page_pairs = %v, want 12", entry["page_pairs"])
			}
		case nil:
			if entry["msg"] == "comparison started" {
				settings, ok := entry["settings"].(map[string]any)
				if !ok || settings["tolerance"] != float64(2) {
					t.Fatalf("start log missing settings: %v", entry)
				}
			}
		}
	}
	if !sawWarning || !sawComplete {
		t.Fatalf("expected warning and completion logs, got:\n%s", buf.String())
	}
}

func TestRunSkipHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	svc := compare.NewService(cfg, nil, compare.WithRecorder(store))
	pathA, pathB := writeDocuments(t)

	out, err := svc.Run(context.Background(), compare.Request{PathA: pathA, PathB: pathB, SkipHistory: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.Recorded {
		t.Fatal("run should not be recorded")
	}
	runs, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty history, got %d runs", len(runs))
	}
}
