// Copyright 2025 Kadir Pekel
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

// Command trio runs the three-agent assistant server.
//
// Usage:
//
//	trio serve --config config.yaml
//	trio serve --port 9090
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/trio/pkg/config"
	"github.com/kadirpekel/trio/pkg/docstore"
	"github.com/kadirpekel/trio/pkg/embedders"
	"github.com/kadirpekel/trio/pkg/llms"
	"github.com/kadirpekel/trio/pkg/logger"
	"github.com/kadirpekel/trio/pkg/orchestrator"
	"github.com/kadirpekel/trio/pkg/rag"
	"github.com/kadirpekel/trio/pkg/reasoning"
	"github.com/kadirpekel/trio/pkg/server"
	"github.com/kadirpekel/trio/pkg/session"
	"github.com/kadirpekel/trio/pkg/tools"
	"github.com/kadirpekel/trio/pkg/video"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Serve   ServeCmd   `cmd:"" help:"Start the assistant server."`

	Config   string `short:"c" help:"Path to config file." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile  string `help:"Log file path (empty = stderr)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("trio version %s\n", version)
	return nil
}

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	Port int `help:"Port to listen on (overrides config)." default:"0"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	llm, err := llms.NewOpenAIProvider(&cfg.LLM)
	if err != nil {
		return err
	}

	embedder, err := embedders.NewOpenAIEmbedder(&cfg.Embedder)
	if err != nil {
		return err
	}

	registry := tools.NewRegistry()
	for _, tool := range []tools.Tool{
		tools.NewDuckDuckGoTool(cfg.Search.ResultChars),
		tools.NewWikipediaTool(cfg.Search.ResultChars),
		tools.NewArxivTool(cfg.Search.ResultChars),
	} {
		if err := registry.RegisterTool(tool); err != nil {
			return err
		}
	}

	engine := reasoning.NewEngine(llm, registry, cfg.Search.MaxIterations)

	store, err := docstore.NewStore(&cfg.Documents, embedder, llm, rag.NewPDFExtractor(), session.NewHistoryStore())
	if err != nil {
		return err
	}

	orch := orchestrator.New(engine, store, video.NewSummarizer(llm))
	srv := server.New(&cfg.Server, orch)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting trio",
		"model", cfg.LLM.Model,
		"port", cfg.Server.Port)

	return srv.Start()
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("trio"),
		kong.Description("A three-agent conversational assistant: web search, document Q&A and video summaries."),
		kong.UsageOnError(),
	)

	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load env files: %v\n", err)
	}

	output := os.Stderr
	if cli.LogFile != "" {
		file, cleanup, err := logger.OpenLogFile(cli.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		output = file
	}
	logger.Init(logger.ParseLevel(cli.LogLevel), output)

	if err := kctx.Run(&cli); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
