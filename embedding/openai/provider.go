// Copyright 2025 EthosPrompt
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/embedding"
)

// DefaultMaxBatchSize is the batch limit used when none is configured.
const DefaultMaxBatchSize = 64

// Config holds the connection settings for an OpenAI-compatible embedding
// endpoint.
type Config struct {
	// Name identifies this provider in logs and provenance. Defaults to
	// "openai" when empty.
	Name string

	// BaseURL is the endpoint of the OpenAI-compatible service.
	BaseURL string

	// Token authenticates requests. Local services that skip auth can leave
	// it empty; "none" is sent in that case.
	Token string

	// Model is the embedding model identifier.
	Model string

	// MaxBatchSize caps texts per API call. Defaults to DefaultMaxBatchSize.
	MaxBatchSize int
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: embedding base URL required", core.ErrConfiguration)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: embedding model required", core.ErrConfiguration)
	}
	return nil
}

// Provider implements embedding.Provider against OpenAI-compatible APIs.
type Provider struct {
	name      string
	model     string
	batchSize int
	embedder  embeddings.Embedder
	logger    *slog.Logger
}

var _ embedding.Provider = (*Provider)(nil)

// NewProvider creates a provider from config.
func NewProvider(config *Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.Token
	if token == "" {
		// Local OpenAI-compatible services accept any token.
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	name := config.Name
	if name == "" {
		name = "openai"
	}
	batchSize := config.MaxBatchSize
	if batchSize < 1 {
		batchSize = DefaultMaxBatchSize
	}

	return &Provider{
		name:      name,
		model:     config.Model,
		batchSize: batchSize,
		embedder:  embedder,
		logger:    slog.Default().With("component", "openai-provider", "provider", name),
	}, nil
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return p.name
}

// Model returns the embedding model identifier.
func (p *Provider) Model() string {
	return p.model
}

// MaxBatchSize returns the per-call batch limit.
func (p *Provider) MaxBatchSize() int {
	return p.batchSize
}

// Embed generates one vector per input text, in input order.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	p.logger.Debug("generating embeddings", "count", len(texts))

	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		p.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	return vectors, nil
}
