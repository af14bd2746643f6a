// Package compare runs one end-to-end page comparison: it loads both
// documents, aligns their pages, optionally exports a PDF report and records
// the run in history.
//
// Every run gets a UUID that is attached to the context, so log lines from
// document loading and alignment carry the same run_id. The outcome is
// returned to the caller; nothing is kept in process-wide state.
package compare
