package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"svcsearch/internal/cli"
	"svcsearch/internal/config"
	"svcsearch/internal/corpus"
	"svcsearch/internal/domain"
	"svcsearch/internal/embedding/local"
	"svcsearch/internal/embedding/openai"
	"svcsearch/internal/index/chromem"
	"svcsearch/internal/index/memory"
	"svcsearch/internal/index/qdrant"
	"svcsearch/internal/service"
	"svcsearch/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/svcsearch/config.yaml if not provided)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("Usage: svcsearch [--config=config.yaml] services.json")
		os.Exit(1)
	}
	corpusPath := flag.Arg(0)

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "local", "":
		emb = local.NewEmbedder(cfg.Embedder.Dimensions)
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:  cfg.Embedder.OpenAI.APIKeyEnv,
			Model:      cfg.Embedder.OpenAI.Model,
			Dimensions: cfg.Embedder.Dimensions,
			Timeout:    time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var idx domain.VectorIndex
	switch cfg.Index.Type {
	case "chromem", "":
		var path string
		if cfg.Index.Chromem != nil {
			path = cfg.Index.Chromem.Path
		}
		idx, err = chromem.NewIndex(chromem.Config{Path: path})
		if err != nil {
			log.Fatalf("chromem index init failed: %v", err)
		}
	case "memory":
		idx = memory.NewIndex()
	case "qdrant":
		idx = qdrant.NewIndex(qdrant.Config{
			URL:     cfg.Index.Qdrant.URL,
			APIKey:  cfg.Index.Qdrant.APIKey,
			Timeout: time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown index: %s", cfg.Index.Type)
	}

	records, err := corpus.Load(corpusPath)
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}

	ctx := context.Background()
	schema := domain.CatalogSchema(cfg.Index.Name, cfg.Embedder.Dimensions)
	svc := service.New(emb, idx, schema)
	n, err := svc.IngestRecords(ctx, records)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
	log.Printf("indexed %d services from %s", n, corpusPath)

	switch cfg.Search.UI {
	case "plain", "":
		loop := cli.New(svc, os.Stdin, os.Stdout, cfg.Search.TopK)
		if err := loop.Run(ctx); err != nil {
			log.Fatalf("query failed: %v", err)
		}
	case "tui":
		m := tui.New(svc, cfg.Search.TopK)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown ui: %s", cfg.Search.UI)
	}
}
