// Package report summarizes alignment results and renders them for people:
// tabular rows shared by the CLI and a PDF export with a red-to-green
// similarity scale.
package report
