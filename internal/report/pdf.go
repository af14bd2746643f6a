package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/encoding/charmap"

	"pagecompare/internal/align"
)

// DocumentInfo describes one side of a comparison.
type DocumentInfo struct {
	Name    string
	Pages   int
	Sources []string
}

// Report is everything rendered into an exported comparison report.
type Report struct {
	Title       string
	RunID       string
	GeneratedAt time.Time
	DocumentA   DocumentInfo
	DocumentB   DocumentInfo
	Settings    align.Settings
	Result      *align.Result
}

// Page geometry in millimetres.
const (
	pageMargin = 15.0
	lineHeight = 6.0
	rowHeight  = 7.0
)

var columnWidths = [...]float64{12, 30, 60, 60, 18}

var columnTitles = [...]string{"#", "Step", "Page A", "Page B", "Sim."}

// WritePDF renders r as a PDF document to w.
func WritePDF(w io.Writer, r Report) error {
	if r.Result == nil {
		return errors.New("report: nil alignment result")
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = "Page Comparison Report"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(pdfText(title), false)
	pdf.SetCreator("pagecompare", false)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin + 5)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, pdfText(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	writeOverview(pdf, r)
	pdf.Ln(4)
	writeSteps(pdf, r)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeOverview(pdf *fpdf.Fpdf, r Report) {
	summary := Summarize(r.Result)
	params := r.Result.Params

	gap := "none allowed"
	if !math.IsInf(params.GapPenalty, 0) {
		gap = fmt.Sprintf("%.2f", params.GapPenalty)
	}
	lines := [][2]string{
		{"Document A", fmt.Sprintf("%s (%d pages)", r.DocumentA.Name, r.DocumentA.Pages)},
		{"Document B", fmt.Sprintf("%s (%d pages)", r.DocumentB.Name, r.DocumentB.Pages)},
		{"Tolerance", fmt.Sprintf("%d (max %d consecutive gaps, gap penalty %s)", params.Tolerance, params.MaxConsecutiveGaps, gap)},
		{"Bad match", fmt.Sprintf("cost above %.2f adds %.2f", params.BadMatchCutoff, params.BadMatchPenalty)},
		{"Pixel threshold", fmt.Sprintf("%.2f (anti-aliasing %s)", r.Settings.PixelThreshold, onOff(r.Settings.IncludeAntialiasing))},
		{"Scanned mode", onOff(r.Settings.ScannedMode)},
		{"Result", fmt.Sprintf("%d matched, %d only in A, %d only in B, mean similarity %.1f%%",
			summary.Matches, summary.Deleted, summary.Inserted, summary.MeanSimilarity)},
	}
	if r.RunID != "" {
		lines = append(lines, [2]string{"Run", r.RunID})
	}
	if !r.GeneratedAt.IsZero() {
		lines = append(lines, [2]string{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05")})
	}

	for _, line := range lines {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, lineHeight, pdfText(line[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, lineHeight, pdfText(line[1]), "", 1, "L", false, 0, "")
	}
	if summary.Identical {
		pdf.SetFont("Helvetica", "B", 10)
		r, g, b := highSimilarity.RGB255()
		pdf.SetTextColor(int(r), int(g), int(b))
		pdf.CellFormat(0, lineHeight, "Documents are identical", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

func writeSteps(pdf *fpdf.Fpdf, r Report) {
	writeHeader(pdf)
	pdf.SetFont("Helvetica", "", 9)
	_, pageHeight := pdf.GetPageSize()

	for _, row := range Rows(r.Result, r.DocumentA.Sources, r.DocumentB.Sources) {
		if pdf.GetY()+rowHeight > pageHeight-pageMargin {
			pdf.AddPage()
			writeHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}
		pdf.SetTextColor(0, 0, 0)
		cells := []string{fmt.Sprintf("%d", row.Number), row.Kind, row.PageA, row.PageB}
		for i, cell := range cells {
			pdf.CellFormat(columnWidths[i], rowHeight, pdfText(cell), "1", 0, "L", false, 0, "")
		}
		fill := gapColor
		if sim, ok := row.Similarity(); ok {
			fill = SimilarityColor(sim)
		}
		setFill(pdf, fill)
		pdf.CellFormat(columnWidths[4], rowHeight, row.SimilarityText(), "1", 1, "R", true, 0, "")
	}
}

func writeHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetTextColor(0, 0, 0)
	for i, title := range columnTitles {
		ln := 0
		if i == len(columnTitles)-1 {
			ln = 1
		}
		pdf.CellFormat(columnWidths[i], rowHeight, title, "1", ln, "C", true, 0, "")
	}
}

func setFill(pdf *fpdf.Fpdf, c colorful.Color) {
	r, g, b := c.RGB255()
	pdf.SetFillColor(int(r), int(g), int(b))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// pdfText encodes s as Latin-1 for the PDF core fonts, replacing characters
// outside the charset with '?'.
func pdfText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = '?'
		}
		b.WriteByte(c)
	}
	return b.String()
}
