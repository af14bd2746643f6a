package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ParseHOCR extracts per-page text from an hOCR document, in document order.
// Words are taken from ocrx_word elements and grouped into lines by
// ocr_line; pages without word markup fall back to their plain text content.
func ParseHOCR(r io.Reader) ([]string, error) {
	decoded, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("detect hocr encoding: %w", err)
	}
	root, err := html.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse hocr: %w", err)
	}

	var pages []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			pages = append(pages, pageText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(pages) == 0 {
		return nil, errors.New("no ocr_page elements found in hocr data")
	}
	return pages, nil
}

func pageText(page *html.Node) string {
	var lines []string
	var current []string
	foundWords := false

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = nil
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "ocr_line"), hasClass(n, "ocrx_line"):
				flush()
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				flush()
				return
			case hasClass(n, "ocrx_word"):
				foundWords = true
				if word := strings.TrimSpace(textContent(n)); word != "" {
					current = append(current, word)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(page)
	flush()

	if !foundWords {
		return strings.Join(strings.Fields(textContent(page)), " ")
	}
	return strings.Join(lines, "\n")
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, field := range strings.Fields(a.Val) {
			if field == class {
				return true
			}
		}
	}
	return false
}
