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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	ethosprompt "github.com/Uththunga/Ethos-Prompt-sub003"
	"github.com/Uththunga/Ethos-Prompt-sub003/chunking"
	"github.com/Uththunga/Ethos-Prompt-sub003/core"
	"github.com/Uththunga/Ethos-Prompt-sub003/embedding"
	"github.com/Uththunga/Ethos-Prompt-sub003/embedding/openai"
	"github.com/Uththunga/Ethos-Prompt-sub003/fusion"
)

func main() {
	app := &cli.App{
		Name:  "ethosd",
		Usage: "Hybrid document-retrieval engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Primary embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Primary embedding model name",
				Value: "nomic-embed-text",
			},
			&cli.StringFlag{
				Name:  "fallback-host",
				Usage: "Fallback embedding service host URL (optional)",
			},
			&cli.StringFlag{
				Name:  "fallback-model",
				Usage: "Fallback embedding model name",
			},
			&cli.StringFlag{
				Name:    "namespace",
				Aliases: []string{"n"},
				Usage:   "Namespace for all operations",
				Value:   "default",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Submit a text file for processing and wait for completion",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Chunking strategy (auto, fixed, semantic, hierarchical, sliding)",
						Value: "auto",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Retrieve context for a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "algorithm",
						Usage: "Fusion algorithm (rrf, weighted, borda, adaptive)",
						Value: "adaptive",
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Context token budget",
						Value: 2048,
					},
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Maximum fused results entering assembly",
						Value: 10,
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the state of a processing job",
				ArgsUsage: "<job-id>",
				Action:    statusCommand,
			},
			{
				Name:   "list",
				Usage:  "List documents in the namespace",
				Action: listCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a document with all chunks and index entries",
				ArgsUsage: "<document-id>",
				Action:    deleteCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openEngine builds the engine from global flags: persistent badger storage
// plus a one- or two-provider embedding chain.
func openEngine(c *cli.Context) (*ethosprompt.Engine, error) {
	primary, err := openai.NewProvider(&openai.Config{
		Name:    "primary",
		BaseURL: c.String("embedding-host"),
		Model:   c.String("embedding-model"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}
	providers := []embedding.Provider{primary}

	if host := c.String("fallback-host"); host != "" {
		model := c.String("fallback-model")
		if model == "" {
			model = c.String("embedding-model")
		}
		fallback, err := openai.NewProvider(&openai.Config{
			Name:    "fallback",
			BaseURL: host,
			Model:   model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create fallback provider: %w", err)
		}
		providers = append(providers, fallback)
	}

	return ethosprompt.NewEngine(c.String("db"),
		ethosprompt.WithProviders(providers...))
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	filePath := c.Args().First()

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	strategy, err := chunking.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	namespace := c.String("namespace")
	documentID := core.IDFromContent(filePath)

	jobID, err := engine.SubmitDocument(ctx, namespace, documentID, string(content), ethosprompt.SubmitConfig{
		Strategy: strategy,
		MimeType: "text/plain",
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Submitted document %d as job %s\n", documentID, jobID)
	engine.WaitForJobs()

	job, err := engine.GetJobStatus(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Stage == core.StageFailed {
		return fmt.Errorf("processing failed: %s", job.ErrorDetail)
	}

	fmt.Fprintf(os.Stderr, "Completed: document %d in namespace %q\n", documentID, namespace)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected a query argument")
	}
	queryText := strings.Join(c.Args().Slice(), " ")

	algorithm, err := fusion.ParseAlgorithm(c.String("algorithm"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Retrieve(context.Background(), c.String("namespace"), queryText, ethosprompt.RetrieveOptions{
		MaxResults: c.Int("max-results"),
		MaxTokens:  c.Int("max-tokens"),
		Algorithm:  algorithm,
	})
	if err != nil {
		return err
	}

	if result.Degraded {
		fmt.Fprintln(os.Stderr, "warning: one retrieval source was unavailable; results are single-source")
	}
	if len(result.Chunks) == 0 {
		fmt.Fprintln(os.Stderr, "no results")
		return nil
	}

	fmt.Fprintf(os.Stderr, "%d chunks, %d tokens\n\n", len(result.Chunks), result.TotalTokens)
	fmt.Println(result.Text)
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a job-id argument")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	job, err := engine.GetJobStatus(context.Background(), c.Args().First())
	if err != nil {
		return err
	}

	fmt.Printf("Job:       %s\n", job.Id)
	fmt.Printf("Document:  %d\n", job.DocumentId)
	fmt.Printf("Namespace: %s\n", job.Namespace)
	fmt.Printf("Stage:     %s\n", job.Stage)
	if job.ErrorDetail != "" {
		fmt.Printf("Error:     %s\n", job.ErrorDetail)
	}
	for _, tr := range job.Transitions {
		fmt.Printf("  %s  %s\n", tr.EnteredAt.Format("2006-01-02 15:04:05.000"), tr.Stage)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	docs, err := engine.ListDocuments(context.Background(), c.String("namespace"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "no documents")
		return nil
	}

	for _, doc := range docs {
		fmt.Printf("%d\t%s\t%d bytes\tstatus=%d\tupdated=%s\n",
			doc.Id, doc.MimeType, doc.ByteSize, doc.Status, doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a document-id argument")
	}
	var documentID uint64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &documentID); err != nil {
		return fmt.Errorf("invalid document id %q: %w", c.Args().First(), err)
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	namespace := c.String("namespace")
	if err := engine.DeleteDocument(context.Background(), namespace, core.ID(documentID)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Deleted document %d from namespace %q\n", documentID, namespace)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
