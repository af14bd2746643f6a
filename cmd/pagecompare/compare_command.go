package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pagecompare/internal/align"
	"pagecompare/internal/compare"
	"pagecompare/internal/logging"
	"pagecompare/internal/report"
)

type compareFlags struct {
	tolerance  int
	threshold  float64
	includeAA  bool
	scanned    bool
	jsonOutput bool
	pdfPath    string
	report     bool
	noHistory  bool
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var flags compareFlags

	cmd := &cobra.Command{
		Use:   "compare <document-a> <document-b>",
		Short: "Align the pages of two documents",
		Long: `Align the pages of two documents and list matched, inserted and deleted pages.

A document is a directory of page images (natural name order, optional .txt
sidecars or one .hocr file for page text), a YAML manifest, or a single image.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			opts := []compare.Option{}
			if cfg.History.Enabled && !flags.noHistory {
				store, err := ctx.openHistory()
				if err != nil {
					logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check history.path or pass --no-history"),
						logging.String(logging.FieldImpact, "run will not be recorded"),
					)
				} else {
					defer store.Close()
					opts = append(opts, compare.WithRecorder(store))
				}
			}

			svc := compare.NewService(cfg, logger, opts...)
			settings := svc.DefaultSettings()
			if cmd.Flags().Changed("tolerance") {
				settings.Tolerance = flags.tolerance
			}
			if cmd.Flags().Changed("threshold") {
				settings.PixelThreshold = flags.threshold
			}
			if cmd.Flags().Changed("include-aa") {
				settings.IncludeAntialiasing = flags.includeAA
			}
			if cmd.Flags().Changed("scanned") {
				settings.ScannedMode = flags.scanned
			}

			out, err := svc.Run(cmd.Context(), compare.Request{
				PathA:       args[0],
				PathB:       args[1],
				Settings:    &settings,
				Report:      flags.report,
				ReportPath:  flags.pdfPath,
				SkipHistory: flags.noHistory,
			})
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return writeJSON(cmd, newCompareView(out))
			}
			printOutcome(cmd.OutOrStdout(), out, colorEnabled(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&flags.tolerance, "tolerance", "t", 0, "Consecutive inserted/deleted pages to allow (0-5, default from config)")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "Per-pixel colour sensitivity in [0,1] (default from config)")
	cmd.Flags().BoolVar(&flags.includeAA, "include-aa", false, "Count anti-aliased pixels as differences")
	cmd.Flags().BoolVar(&flags.scanned, "scanned", false, "Ignore page text and compare images only")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().StringVar(&flags.pdfPath, "pdf", "", "Write a PDF report to this path (bare names go to paths.report_dir)")
	cmd.Flags().BoolVar(&flags.report, "report", false, "Write a PDF report with a generated name")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in history")
	return cmd
}

type documentView struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Pages int    `json:"pages"`
}

type stepView struct {
	align.Step
	Similarity *float64 `json:"similarity,omitempty"`
	SourceA    string   `json:"source_a,omitempty"`
	SourceB    string   `json:"source_b,omitempty"`
}

type compareView struct {
	RunID      string         `json:"run_id"`
	DocumentA  documentView   `json:"document_a"`
	DocumentB  documentView   `json:"document_b"`
	Settings   align.Settings `json:"settings"`
	Params     align.Params   `json:"params"`
	Summary    report.Summary `json:"summary"`
	Steps      []stepView     `json:"steps"`
	ReportPath string         `json:"report_path,omitempty"`
	Recorded   bool           `json:"recorded"`
	Hint       string         `json:"hint,omitempty"`
}

const scannedHint = "neither document has page text; rerun with --scanned to compare images only"

func outcomeHint(out *compare.Outcome) string {
	if out.ImagesOnly() {
		return scannedHint
	}
	return ""
}

func newCompareView(out *compare.Outcome) compareView {
	view := compareView{
		RunID:      out.RunID,
		DocumentA:  documentView{Name: out.DocumentA.Name, Path: out.DocumentA.Path, Pages: out.DocumentA.Len()},
		DocumentB:  documentView{Name: out.DocumentB.Name, Path: out.DocumentB.Path, Pages: out.DocumentB.Len()},
		Settings:   out.Settings,
		Params:     out.Result.Params,
		Summary:    out.Summary,
		Steps:      make([]stepView, 0, len(out.Result.Steps)),
		ReportPath: out.ReportPath,
		Recorded:   out.Recorded,
		Hint:       outcomeHint(out),
	}
	sourcesA, sourcesB := out.SourcesA(), out.SourcesB()
	for _, step := range out.Result.Steps {
		sv := stepView{Step: step}
		if step.Kind == align.Match {
			sim := step.Similarity()
			sv.Similarity = &sim
		}
		if step.AIndex >= 0 && step.AIndex < len(sourcesA) {
			sv.SourceA = sourcesA[step.AIndex]
		}
		if step.BIndex >= 0 && step.BIndex < len(sourcesB) {
			sv.SourceB = sourcesB[step.BIndex]
		}
		view.Steps = append(view.Steps, sv)
	}
	return view
}

func printOutcome(w io.Writer, out *compare.Outcome, color bool) {
	fmt.Fprintf(w, "Comparing %s (%d pages) with %s (%d pages), tolerance %d\n",
		out.DocumentA.Name, out.DocumentA.Len(), out.DocumentB.Name, out.DocumentB.Len(), out.Settings.Tolerance)
	fmt.Fprintln(w, stepTable(out.Rows(), color))
	printSummary(w, out.Summary)
	if hint := outcomeHint(out); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
	if out.ReportPath != "" {
		fmt.Fprintf(w, "Report: %s\n", out.ReportPath)
	}
	fmt.Fprintf(w, "Run: %s (recorded: %s)\n", out.RunID, yesNo(out.Recorded))
}

func printSummary(w io.Writer, s report.Summary) {
	if s.Identical {
		fmt.Fprintf(w, "Documents are identical (%d pages)\n", s.Matches)
		return
	}
	fmt.Fprintf(w, "Summary: %d matched, %d only in A, %d only in B, mean similarity %.1f%%\n",
		s.Matches, s.Deleted, s.Inserted, s.MeanSimilarity)
}
