package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"solagent/internal/agent"
	"solagent/internal/config"
	openaiembed "solagent/internal/embedding/openai"
	"solagent/internal/ingest"
	"solagent/internal/llm"
	"solagent/internal/mcptools"
	"solagent/internal/rag"
	"solagent/internal/tui"
	"solagent/internal/vectorstore/memory"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file (defaults are used when absent)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("failed to load environment: %v", err)
	}

	ctx := context.Background()

	ingester, err := ingest.New(cfg.Chunker.MaxChunkSize, cfg.Chunker.SourceExtension)
	if err != nil {
		log.Fatalf("failed to create ingester: %v", err)
	}
	chunks := ingester.Ingest(env.RAGDirs)

	embedder, err := openaiembed.NewClient(openaiembed.Config{
		APIKey:    env.EmbedAPIKey,
		BaseURL:   cfg.Embedder.BaseURL,
		Model:     cfg.Embedder.Model,
		BatchSize: cfg.Embedder.BatchSize,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		log.Fatalf("failed to embed corpus: %v", err)
	}
	index, err := memory.Build(chunks, vectors)
	if err != nil {
		log.Fatalf("failed to build index: %v", err)
	}

	assembler := rag.New(embedder, index,
		cfg.Retrieval.SampleCount, cfg.Retrieval.DistanceThreshold, cfg.Retrieval.MaxContextChars)

	registry, err := mcptools.Connect(ctx, env.MCPAddress(), version)
	if err != nil {
		log.Fatalf("failed to connect to MCP server: %v", err)
	}
	defer registry.Close()

	completer, err := llm.New(llm.Config{
		APIKey:       env.ChatAPIKey,
		BaseURL:      cfg.Chat.BaseURL,
		Model:        cfg.Chat.Model,
		Preamble:     env.Preamble,
		MaxToolTurns: cfg.Chat.MaxToolTurns,
		Timeout:      time.Duration(cfg.Chat.TimeoutSecs) * time.Second,
	}, registry)
	if err != nil {
		log.Fatalf("failed to create completer: %v", err)
	}

	a := agent.New(assembler, completer, cfg.Retrieval.ClearHistory, nil, nil)
	status := fmt.Sprintf("Indexed %d chunks. %d tools bound. Type to chat.", index.Len(), len(registry.Tools()))

	if _, err := tea.NewProgram(tui.New(a, status), tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("TUI error: %v", err)
	}
}
