package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"ragchat/internal/app"
	"ragchat/internal/config"
	"ragchat/internal/conversation"
	"ragchat/internal/logger"
	"ragchat/internal/populate"
	"ragchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragchat/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	closer, err := logger.SetupFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer closer.Close()

	ctx := logger.WithSessionID(context.Background(), uuid.NewString())

	model, runtime, err := app.Runtime(ctx, cfg)
	if err != nil {
		log.Fatalf("bedrock init failed: %v", err)
	}
	emb, err := app.NewEmbedder(cfg, runtime)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}
	store, err := app.OpenStore(cfg, emb)
	if err != nil {
		log.Fatalf("vector store init failed: %v", err)
	}
	if cfg.VectorStore.Type == "memory" {
		if err := populate.InitializeAll(ctx, store, populate.DefaultSources(cfg.Populate.CollectionsPath)); err != nil {
			log.Fatalf("populate failed: %v", err)
		}
	}
	collection, err := store.Collection(cfg.VectorStore.Collection)
	if err != nil {
		log.Fatalf("open collection failed (run populate first?): %v", err)
	}
	slog.InfoContext(ctx, "Connected to vector store", "type", cfg.VectorStore.Type, "collection", collection.Name(), "count", collection.Count())

	orch, err := app.NewOrchestrator(cfg, model, collection)
	if err != nil {
		log.Fatalf("chat init failed: %v", err)
	}

	m := tui.New(ctx, orch, conversation.NewHistory())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
