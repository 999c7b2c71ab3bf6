package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/contentloop/enrich"
	"github.com/contentloop/enrich/pipeline"
	"github.com/contentloop/enrich/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	DB       *sqlite.DB
	Articles enrich.ArticleService

	// Pipeline collaborators, wired only for commands that need them.
	Enhancer   *pipeline.Enhancer
	Discoverer *pipeline.Discoverer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API server"`
	Scrape  ScrapeCmd  `cmd:"" help:"Import the oldest articles from the source blog"`
	Enhance EnhanceCmd `cmd:"" help:"Rewrite articles using reference search and the model"`
	List    ListCmd    `cmd:"" help:"List stored articles"`
	Show    ShowCmd    `cmd:"" help:"Show a stored article"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" help:"HTTP listen address"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct{}

// EnhanceCmd is the "enhance" subcommand. Without an ID it processes the
// oldest unenhanced articles as a batch.
type EnhanceCmd struct {
	ID string `arg:"" optional:"" help:"Article ID (omit to enhance the oldest unenhanced batch)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Limit   int  `short:"n" default:"20" help:"Maximum number of articles to list"`
	Updated bool `help:"Only show enhanced articles"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID       string `arg:"" help:"Article ID"`
	Original bool   `help:"Show the pre-enhancement snapshot"`
}
