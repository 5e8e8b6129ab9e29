package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"financial-qa/internal/bot"
	"financial-qa/internal/config"
	"financial-qa/internal/embedding"
	"financial-qa/internal/helper"
	"financial-qa/internal/llmservice"
	"financial-qa/internal/vectorstore"
)

const (
	defaultConfigPath = "./configs/config.yaml"
	queryTimeout      = 60 * time.Second
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a filing to ingest")
	query := flag.String("query", "", "Question to answer")
	batchPath := flag.String("batch", "", "Path to a file with one question per line")
	stats := flag.Bool("stats", false, "Print vector store statistics")
	clearStore := flag.Bool("clear", false, "Clear the persisted vector store")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := loadConfig(*configPath)
	qaBot := buildBot(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	switch {
	case *filePath != "":
		ingestFile(ctx, qaBot, *filePath)
	case *query != "":
		askQuestion(ctx, qaBot, *query)
	case *batchPath != "":
		askBatch(ctx, qaBot, *batchPath)
	case *stats:
		qaBot.LoadIndex()
		helper.PrettyPrint(qaBot.Stats())
	case *clearStore:
		res := qaBot.ClearIndex()
		fmt.Println(res.Message)
	default:
		log.Fatal().Msg("Please provide one of -file, -query, -batch, -stats or -clear")
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Msg("Error loading config")
		}
		log.Warn().Str("path", path).Msg("Config file not found, using defaults")
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	return cfg
}

func buildBot(cfg *config.Config) *bot.Bot {
	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	llm, err := llmservice.NewChatModel(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat model")
	}

	if err := helper.EnsureParentDir(cfg.Store.Path); err != nil {
		log.Fatal().Err(err).Msg("Error creating store directory")
	}

	store := vectorstore.New(embedder, cfg)
	return bot.New(cfg, store, llm)
}

func ingestFile(ctx context.Context, qaBot *bot.Bot, filePath string) {
	qaBot.LoadIndex()

	res := qaBot.ProcessDocument(ctx, filePath)
	if !res.Success {
		log.Fatal().Msg(res.Message)
	}
	fmt.Println(res.Message)

	if save := qaBot.SaveIndex(); !save.Success {
		log.Fatal().Msg(save.Message)
	}
}

func askQuestion(ctx context.Context, qaBot *bot.Bot, question string) {
	if load := qaBot.LoadIndex(); !load.Success {
		log.Warn().Msg(load.Message)
	}

	answer, res := qaBot.Ask(ctx, question)
	if !res.Success {
		log.Fatal().Msg(res.Message)
	}

	fmt.Printf("Question: %s\n\n", question)
	fmt.Printf("Answer: %s\n\n", answer.Answer)
	// heuristic relevance signal from retrieval scores, not a probability
	fmt.Printf("Relevance: %.2f (from %d context chunks)\n\n", answer.Confidence, answer.ContextUsed)

	for i, source := range answer.Sources {
		fmt.Printf("Source %d (similarity %.3f):\n", i+1, source.SimilarityScore)
		helper.PrettyPrint(source.Metadata)
		fmt.Printf("%s\n\n", source.TextPreview)
	}
}

func askBatch(ctx context.Context, qaBot *bot.Bot, batchPath string) {
	data, err := os.ReadFile(batchPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading batch file")
	}

	var questions []string
	for _, line := range strings.Split(string(data), "\n") {
		if q := strings.TrimSpace(line); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		log.Fatal().Msg("Batch file contains no questions")
	}

	if load := qaBot.LoadIndex(); !load.Success {
		log.Warn().Msg(load.Message)
	}

	results, res := qaBot.AskAll(ctx, questions)
	if !res.Success {
		log.Fatal().Msg(res.Message)
	}

	for _, result := range results {
		fmt.Printf("Question: %s\n", result.Question)
		fmt.Printf("Answer: %s\n", result.Answer)
		fmt.Printf("Relevance: %.2f\n\n", result.Confidence)
	}
}
