// Package mock provides a deterministic embedding.Provider test double.
// Vectors derive from an FNV hash of the input text, so the same text always
// embeds to the same vector without network calls.
package mock
