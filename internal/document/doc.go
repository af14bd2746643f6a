// Package document holds the page model shared by the cost model and the
// aligner, and loads documents from disk.
//
// A document is either a directory of page images or a YAML manifest that
// lists them. Page text comes from inline manifest values, .txt sidecar files,
// or an hOCR file covering the whole document. Pages keep the order in which
// they were listed (manifests) or a natural file-name order (directories).
package document
