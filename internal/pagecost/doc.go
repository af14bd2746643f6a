// Package pagecost scores how dissimilar two pages are, in [0,1].
//
// The pixel cost compares the central content band of both page images after
// downscaling; the text cost is the Jaccard distance of their token sets. A
// Model combines the two per comparison settings and caches each page's
// prepared band and tokens for the lifetime of one alignment run.
package pagecost
