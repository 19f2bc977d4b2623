package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/joho/godotenv"

	"selekt/internal/config"
	"selekt/internal/domain"
	"selekt/internal/embedding/tfidf"
	"selekt/internal/retriever"
	"selekt/internal/sampler"
	"selekt/internal/service"
	"selekt/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var verbosity int
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/selekt/config.yaml if not provided)")
	flag.IntVar(&verbosity, "v", 0, "Log verbosity (0 disables logging)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: selekt [--config=config.yaml] file1.txt [file2.txt ...]")
		os.Exit(1)
	}

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

	logger := logr.Discard()
	if verbosity > 0 {
		logger = funcr.New(func(prefix, args string) {
			log.Println(prefix, args)
		}, funcr.Options{Verbosity: verbosity})
	}

	policy := cfg.Sampling.Policy()
	if err := policy.Validate(); err != nil {
		log.Fatalf("invalid sampling config: %v", err)
	}

	var vec domain.Vectorizer
	switch cfg.Embedder.Type {
	case "tfidf", "":
		vec = tfidf.NewVectorizer()
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	store := retriever.NewStore(retriever.WithLogger(logger.WithName("retriever")))

	samplerOpts := []sampler.Option{
		sampler.WithPolicy(policy),
		sampler.WithLogger(logger.WithName("sampler")),
	}
	if cfg.Sampling.Seed != 0 {
		rng := rand.New(rand.NewSource(cfg.Sampling.Seed))
		samplerOpts = append(samplerOpts, sampler.WithRand(rng.Float64))
	}
	smp := sampler.New(samplerOpts...)

	engine := service.NewEngine(vec, store, smp, policy, cfg.Retriever.TopK, logger.WithName("engine"))
	summary, err := engine.IngestDocuments(inputs)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}

	m := tui.New(engine, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
