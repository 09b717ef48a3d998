package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/eval"
	"document-qa/internal/generator"
	"document-qa/internal/helper"
	"document-qa/internal/loader"
	"document-qa/internal/pipeline"
	"document-qa/internal/server"
	"document-qa/internal/vectorstore"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env")
	}

	configPath := flag.String("config", defaultConfigPath, "Path to the YAML config file")
	query := flag.String("query", "", "Ask a single question and exit")
	index := flag.Bool("index", false, "Ingest and index the data directory, then exit")
	serve := flag.Bool("serve", false, "Serve the HTTP API")
	evalIn := flag.String("eval", "", "Run batch evaluation over an xlsx question sheet")
	evalOut := flag.String("eval-out", "rag_results.xlsx", "Output path for batch evaluation results")
	flag.Parse()

	cfg := loadConfig(*configPath)
	ctx := context.Background()

	rag := buildPipeline(ctx, cfg)

	switch {
	case *query != "":
		askOnce(ctx, rag, *query)
	case *evalIn != "":
		if err := eval.Run(ctx, rag, *evalIn, *evalOut); err != nil {
			log.Fatal().Err(err).Msg("Batch evaluation failed")
		}
	case *serve:
		srv := server.New(rag, buildStore(cfg))
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	default:
		// Pipeline construction already ran the bootstrap ingestion if
		// the vector store was empty, so -index (and a bare invocation)
		// only has to report the result.
		log.Info().Bool("explicit", *index).Int("chunks", buildStore(cfg).Count(ctx)).Msg("Index ready")
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Config not loaded, using defaults")
		return config.Default()
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return cfg
}

var sharedStore vectorstore.Store

// buildStore memoizes the store so the server's stats endpoint shares
// the pipeline's backend.
func buildStore(cfg *config.Config) vectorstore.Store {
	if sharedStore != nil {
		return sharedStore
	}
	if cfg.VectorStore.Type == "" || cfg.VectorStore.Type == "chromem" {
		if err := helper.CreateFolder(cfg.VectorStore.Path); err != nil {
			log.Fatal().Err(err).Msg("Error creating vector store folder")
		}
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	sharedStore, err = vectorstore.NewFromConfig(&cfg.VectorStore, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing vector store")
	}
	return sharedStore
}

func buildPipeline(ctx context.Context, cfg *config.Config) *pipeline.Pipeline {
	store := buildStore(cfg)

	gen, err := generator.NewFromConfig(&cfg.Generator)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generator")
	}

	rag, err := pipeline.New(ctx, store, gen, loader.New(cfg.DataDir), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing pipeline")
	}
	return rag
}

func askOnce(ctx context.Context, rag *pipeline.Pipeline, question string) {
	response := rag.Ask(ctx, question)

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", question)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	helper.PrettyPrint(response)
}
