// Package text provides shared text preprocessing: tokenization with stop-word
// filtering for keyword indexing, and token counting for budget enforcement.
package text
