package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"pagecompare/internal/align"
	"pagecompare/internal/history"
	"pagecompare/internal/report"
	"pagecompare/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded comparison runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	store, err := ctx.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return services.Wrap(services.ErrStorage, "history", "List", "list runs", err)
				}
				if jsonOutput {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, runTable(runs))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output runs as JSON")
	return cmd
}

func runTable(runs []history.Run) string {
	headers := []string{"Run", "When", "Document A", "Document B", "Pages", "Tol", "Matched", "Only A", "Only B", "Mean sim."}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.DocumentA,
			run.DocumentB,
			fmt.Sprintf("%d/%d", run.PagesA, run.PagesB),
			strconv.Itoa(run.Params.Tolerance),
			strconv.Itoa(run.Summary.Matches),
			strconv.Itoa(run.Summary.Deleted),
			strconv.Itoa(run.Summary.Inserted),
			fmt.Sprintf("%.1f%%", run.Summary.MeanSimilarity),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	return renderTable(headers, rows, aligns)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run's settings and edit script",
		Long:  "Show one run's settings and edit script. The run ID may be abbreviated to any unique prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					marker := services.ErrStorage
					if isNotFound(err) {
						marker = services.ErrNotFound
					}
					return services.Wrap(marker, "history", "Get", args[0], err)
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}
				out := cmd.OutOrStdout()
				printRun(out, run, colorEnabled(out))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run as JSON")
	return cmd
}

func printRun(w io.Writer, run *history.Run, color bool) {
	fmt.Fprintf(w, "Run:        %s\n", run.ID)
	fmt.Fprintf(w, "When:       %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Document A: %s (%d pages)\n", run.DocumentA, run.PagesA)
	fmt.Fprintf(w, "Document B: %s (%d pages)\n", run.DocumentB, run.PagesB)
	fmt.Fprintf(w, "Settings:   tolerance %d, threshold %.2f, anti-aliasing %s, scanned %s\n",
		run.Settings.Tolerance, run.Settings.PixelThreshold,
		yesNo(run.Settings.IncludeAntialiasing), yesNo(run.Settings.ScannedMode))
	fmt.Fprintf(w, "Duration:   %s\n", run.Duration)
	if run.ReportPath != "" {
		fmt.Fprintf(w, "Report:     %s\n", run.ReportPath)
	}
	res := &align.Result{Steps: run.Steps, Params: run.Params}
	fmt.Fprintln(w, stepTable(report.Rows(res, nil, nil), color))
	printSummary(w, run.Summary)
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				out := cmd.OutOrStdout()
				if runID != "" {
					run, err := store.Get(cmd.Context(), runID)
					if err == nil {
						err = store.Remove(cmd.Context(), run.ID)
					}
					if err != nil {
						marker := services.ErrStorage
						if isNotFound(err) {
							marker = services.ErrNotFound
						}
						return services.Wrap(marker, "history", "Remove", runID, err)
					}
					fmt.Fprintf(out, "Removed run %s\n", run.ID)
					return nil
				}
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return services.Wrap(services.ErrStorage, "history", "Clear", "clear runs", err)
				}
				fmt.Fprintf(out, "Removed %d run(s)\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Remove only this run (ID or unique prefix)")
	return cmd
}

func isNotFound(err error) bool {
	return errors.Is(err, history.ErrNotFound)
}
