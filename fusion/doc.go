// Package fusion merges semantic and keyword result lists into one ranking.
// Four algorithms are available behind a closed dispatch table: reciprocal
// rank fusion, weighted score combination, Borda count, and an adaptive mode
// that derives weights from query characteristics.
package fusion
