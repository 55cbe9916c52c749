// Package query enhances raw queries before retrieval: whitespace
// normalization, dictionary-based spell correction, rule-based intent
// classification, and bounded synonym expansion. Every stage can be toggled
// independently.
package query
