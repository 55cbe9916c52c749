// Package openai adapts OpenAI-compatible embedding APIs to the
// embedding.Provider interface via langchaingo. It works against any
// endpoint that speaks the OpenAI embeddings protocol, including local
// services.
package openai
