// Package assembly builds the final token-budgeted context from a fused
// ranking: optional secondary re-ranking, near-duplicate suppression by
// lexical similarity, and greedy whole-chunk budget packing with a reserved
// buffer for surrounding prompt tokens.
package assembly
