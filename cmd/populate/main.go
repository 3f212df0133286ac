package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"ragchat/internal/app"
	"ragchat/internal/config"
	"ragchat/internal/logger"
	"ragchat/internal/populate"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Setup(os.Stderr, cfg.Log.Level)
	if cfg.VectorStore.Type == "memory" {
		log.Fatalf("populate needs a persistent vector store, got %q", cfg.VectorStore.Type)
	}

	ctx := context.Background()
	_, runtime, err := app.Runtime(ctx, cfg)
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
	if err := populate.InitializeAll(ctx, store, populate.DefaultSources(cfg.Populate.CollectionsPath)); err != nil {
		log.Fatalf("populate failed: %v", err)
	}
}
