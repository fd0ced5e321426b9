// Copyright 2025 Poiesic Systems
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
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/ai/openai"
	"github.com/poiesic/docent/config"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/converse"
	"github.com/poiesic/docent/ingestion"
	"github.com/poiesic/docent/server"
	"github.com/poiesic/docent/storage/badger"
	"github.com/poiesic/docent/storage/blob"
	"github.com/poiesic/docent/watch"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docent",
		Usage: "Document knowledge store with retrieval-augmented chat",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server and optional drop-folder watcher",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides config)",
					},
					&cli.StringFlag{
						Name:  "watch-dir",
						Usage: "Drop folder to auto-ingest (overrides config)",
					},
				},
			},
			{
				Name:   "reingest",
				Usage:  "Reprocess every document synchronously",
				Action: reingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "failed-only",
						Usage: "Only reprocess documents whose last run failed",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// components holds the wired application services.
type components struct {
	documents *badger.DocumentRepository
	chats     *badger.ChatRepository
	backend   *badger.Backend
	blobs     *blob.FSStore
	provider  ai.AIProvider
	pipeline  *ingestion.Pipeline
	cfg       *config.AppConfig
}

func (c *components) close() {
	if c.pipeline != nil {
		c.pipeline.Release()
	}
	if c.provider != nil {
		c.provider.Close()
	}
	if c.chats != nil {
		c.chats.Close()
	}
	if c.documents != nil {
		c.documents.Close()
	}
	if c.backend != nil {
		c.backend.Close()
	}
}

// buildComponents opens storage and constructs the AI provider and
// ingestion pipeline from configuration.
func buildComponents(c *cli.Context) (*components, error) {
	// A missing .env is fine; values may come from the environment
	godotenv.Load()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	comps := &components{cfg: cfg}

	comps.backend, err = badger.OpenBackend(cfg.Storage.DBPath, false)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	comps.documents, err = badger.NewDocumentRepository(comps.backend)
	if err != nil {
		comps.close()
		return nil, err
	}

	comps.chats, err = badger.NewChatRepository(comps.backend)
	if err != nil {
		comps.close()
		return nil, err
	}

	comps.blobs, err = blob.NewFSStore(cfg.Storage.BlobDir)
	if err != nil {
		comps.close()
		return nil, err
	}

	var aiOpts []ai.ConfigOption
	if cfg.AI.EmbeddingHost != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingHost(cfg.AI.EmbeddingHost))
	}
	if cfg.AI.GenerationHost != "" {
		aiOpts = append(aiOpts, ai.WithGenerationHost(cfg.AI.GenerationHost))
	}
	if cfg.AI.EmbeddingModel != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingModel(cfg.AI.EmbeddingModel))
	}
	if cfg.AI.GenerationModel != "" {
		aiOpts = append(aiOpts, ai.WithGenerationModel(cfg.AI.GenerationModel))
	}
	if token := os.Getenv(cfg.AI.TokenEnv); token != "" {
		aiOpts = append(aiOpts, ai.WithToken(token))
	}

	comps.provider, err = openai.NewProvider(ai.NewConfig(aiOpts...))
	if err != nil {
		comps.close()
		return nil, fmt.Errorf("creating AI provider: %w", err)
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithMaxChunkChars(cfg.Ingestion.MaxChunkChars),
	}
	if cfg.Ingestion.PoolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(cfg.Ingestion.PoolSize))
	}

	comps.pipeline, err = ingestion.NewPipeline(
		comps.documents, comps.blobs, comps.provider, pipelineOpts...)
	if err != nil {
		comps.close()
		return nil, err
	}

	return comps, nil
}

func serveCommand(c *cli.Context) error {
	comps, err := buildComponents(c)
	if err != nil {
		return err
	}
	defer comps.close()

	cfg := comps.cfg
	addr := cfg.Server.Addr
	if c.String("addr") != "" {
		addr = c.String("addr")
	}
	watchDir := cfg.Ingestion.WatchDir
	if c.String("watch-dir") != "" {
		watchDir = c.String("watch-dir")
	}

	responder, err := converse.NewResponder(
		comps.chats, comps.documents, comps.provider,
		converse.WithTopK(cfg.Retrieval.TopK),
		converse.WithMinScore(cfg.Retrieval.MinScore),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchDir != "" {
		watcher, err := watch.NewWatcher(
			comps.documents, comps.blobs, comps.pipeline, nil, nil)
		if err != nil {
			return err
		}
		defer watcher.Stop()
		go func() {
			if err := watcher.Watch(ctx, watchDir); err != nil && ctx.Err() == nil {
				slog.Error("watcher stopped", "err", err)
			}
		}()
	}

	srv := server.NewServer(
		comps.documents, comps.chats, comps.blobs,
		comps.pipeline, responder, addr, slog.Default())

	return srv.Start(ctx)
}

func reingestCommand(c *cli.Context) error {
	comps, err := buildComponents(c)
	if err != nil {
		return err
	}
	defer comps.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := comps.documents.GetDocuments(ctx)
	if err != nil {
		return err
	}

	failedOnly := c.Bool("failed-only")
	processed := 0
	failures := 0

	for _, doc := range docs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if failedOnly && doc.Status != core.StatusFailed {
			continue
		}

		fmt.Fprintf(os.Stderr, "Processing %s (id %d)...\n", doc.Filename, doc.Id)
		if err := comps.pipeline.Process(ctx, doc.Id); err != nil {
			slog.Error("error reprocessing document", "document", doc.Id, "err", err)
			failures++
			continue
		}
		processed++
	}

	fmt.Fprintf(os.Stderr, "Reingested %d documents, %d failures\n", processed, failures)
	if failures > 0 {
		return fmt.Errorf("%d documents failed to reprocess", failures)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
