// Copyright 2025 Poiesic Systems
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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/jobtrail/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "jobtrail",
		Usage:    "Track job applications from your mailbox",
		Metadata: map[string]any{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"JOBTRAIL_CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Environment files to load (default .env)",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Workspace directory holding the stores",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set log format (text, json)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI compatible host for embeddings and generation",
			},
			&cli.StringFlag{
				Name:  "classifier",
				Usage: "Classifier backend (http, llm)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := loadConfig(c); err != nil {
				return err
			}
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			{
				Name:  "auth",
				Usage: "Authorize mailbox access",
				Description: "Without --code prints the consent URL. With --code exchanges the code " +
					"shown after consent for a token.",
				Action: authCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "code", Usage: "Authorization code from the consent page"},
				},
			},
			{
				Name:   "sync",
				Usage:  "Fetch, classify and index new mail once",
				Action: syncCommand,
			},
			{
				Name:   "fetch",
				Usage:  "Fetch new messages into the raw store",
				Action: fetchCommand,
			},
			{
				Name:   "classify",
				Usage:  "Classify raw messages that have no label yet",
				Action: classifyCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "recompute",
						Usage: "Message ids whose labels are cleared and predicted again",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Embed accepted messages missing from the vector store",
				Action: indexCommand,
			},
			{
				Name:      "ask",
				Usage:     "Answer a question about your applications",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "k", Usage: "Number of messages to retrieve"},
					&cli.BoolFlag{Name: "sources", Usage: "Print the retrieved messages"},
				},
			},
			{
				Name:   "status",
				Usage:  "Show store sizes, label counts, checkpoints and index drift",
				Action: statusCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Reembed every indexed message with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to process in each batch",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Sync repeatedly until interrupted",
				Action: watchCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "interval", Usage: "Time between runs"},
				},
			},
		},
	}
}

// loadConfig merges the configuration file, the environment and the global
// flags, in increasing precedence.
func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), c.StringSlice("env-file")...)
	if err != nil {
		return err
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = strings.ToLower(c.String("log-level"))
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = strings.ToLower(c.String("log-format"))
	}
	if c.IsSet("host") {
		cfg.AI.EmbeddingHost = c.String("host")
		cfg.AI.GenerationHost = c.String("host")
	}
	if c.IsSet("classifier") {
		cfg.AI.ClassifierBackend = c.String("classifier")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func setupLogger(c *cli.Context) error {
	cfg := appConfig(c)

	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", cfg.Log.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Log.Format {
	case "json":
		handler = slog.NewJSONHandler(c.App.ErrWriter, opts)
	case "text", "":
		handler = slog.NewTextHandler(c.App.ErrWriter, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", cfg.Log.Format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
