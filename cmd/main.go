package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"document-qa/internal/builder"
	"document-qa/internal/config"
	"document-qa/internal/helper"
	"document-qa/internal/parser"
)

const configFilePath = "./configs/config.yaml"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the YAML config file")
	dryRun := flag.Bool("dry-run", false, "Load and segment the document, print the chunks and exit")
	flag.Parse()

	if *dryRun {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error loading config")
		}
		printChunks(cfg)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	app, err := builder.Build(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building application")
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Error running application")
	}
}

func printChunks(cfg *config.Config) {
	document, err := parser.LoadDocument(cfg.Document.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading document")
	}

	chunks, err := parser.Segment(document, cfg.RAG.ChunkSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Error segmenting document")
	}

	log.Info().Int("chunks", len(chunks)).Msg("Parsed content")
	helper.PrettyPrint(chunks)

	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("%s %d chunks of up to %d characters from %s\n",
		boldCyan("Dry run:"), len(chunks), cfg.RAG.ChunkSize, cfg.Document.Path)
}
