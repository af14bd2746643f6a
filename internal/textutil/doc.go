// Package textutil canonicalizes page text for comparison.
//
// The primary use cases are:
//   - Normalizing extracted page text into a lowercase, single-spaced form
//   - Splitting normalized text into token sets for overlap scoring
//   - Building filesystem-safe tokens from document names for report files
//
// Normalization folds compatibility characters (NFKC), lowercases, and collapses
// every run of non-alphanumeric characters to a single space. Tokens shorter than
// MinTokenLength characters are discarded because they are dominated by page
// numbers, list markers, and punctuation fragments.
package textutil
