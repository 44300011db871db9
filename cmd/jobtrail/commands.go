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
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/jobtrail"
	"github.com/poiesic/jobtrail/config"
	"github.com/poiesic/jobtrail/core"
	"github.com/poiesic/jobtrail/ingestion"
	"github.com/poiesic/jobtrail/query"
	"github.com/poiesic/jobtrail/reembed"
	"github.com/poiesic/jobtrail/rules"
	"github.com/poiesic/jobtrail/source"
	"github.com/poiesic/jobtrail/source/gmail"
	"github.com/urfave/cli/v2"
)

func openWorkspace(cfg *config.Config) (*jobtrail.Workspace, error) {
	ws, err := jobtrail.Open(cfg.DataDir, jobtrail.WithAIConfig(cfg.AIConfig()))
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace %s: %w", cfg.DataDir, err)
	}
	return ws, nil
}

func pipelineOptions(cfg *config.Config, ws *jobtrail.Workspace) ([]ingestion.Option, error) {
	rulesConfig, err := cfg.RulesConfig()
	if err != nil {
		return nil, err
	}
	engine, err := rules.NewEngine(rulesConfig)
	if err != nil {
		return nil, err
	}
	opts := []ingestion.Option{
		ingestion.WithRules(engine),
		ingestion.WithFilter(cfg.Source.Filter),
		ingestion.WithAccount(cfg.Source.Account),
		ingestion.WithPoolSize(cfg.Pipeline.PoolSize),
	}
	if cfg.AI.ExtractAttributes {
		opts = append(opts, ingestion.WithExtractor(ws.Provider().AttributeExtractor()))
	}
	return opts, nil
}

// withPipeline opens the workspace and runs fn with a pipeline over it.
// The mailbox is only connected when needSource is set.
func withPipeline(c *cli.Context, needSource bool, fn func(*ingestion.Pipeline) error) error {
	cfg := appConfig(c)
	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	opts, err := pipelineOptions(cfg, ws)
	if err != nil {
		return err
	}

	var src source.Source
	if needSource {
		src, err = gmail.New(c.Context, gmail.Config{
			CredentialsFile:  cfg.Source.CredentialsFile,
			TokenFile:        cfg.Source.TokenFile,
			User:             cfg.Source.User,
			MaxResults:       cfg.Source.MaxResults,
			IncludeSpamTrash: cfg.Source.IncludeSpamTrash,
		}, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to connect to mailbox: %w", err)
		}
	}

	pipeline, err := ws.NewPipeline(src, opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()
	return fn(pipeline)
}

func authCommand(c *cli.Context) error {
	cfg := appConfig(c)
	code := strings.TrimSpace(c.String("code"))
	if code == "" {
		url, err := gmail.AuthURL(cfg.Source.CredentialsFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Open this URL in a browser and authorize access:\n\n%s\n\n", url)
		fmt.Fprintln(c.App.Writer, "Then run: jobtrail auth --code <code>")
		return nil
	}
	if err := gmail.Authorize(c.Context, cfg.Source.CredentialsFile, cfg.Source.TokenFile, code); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Token saved to %s\n", cfg.Source.TokenFile)
	return nil
}

func syncCommand(c *cli.Context) error {
	return withPipeline(c, true, func(p *ingestion.Pipeline) error {
		report, err := p.Run(c.Context)
		printReport(c, report)
		return err
	})
}

func fetchCommand(c *cli.Context) error {
	return withPipeline(c, true, func(p *ingestion.Pipeline) error {
		result, err := p.RunFetch(c.Context, ingestion.NewRunID())
		if err != nil {
			return err
		}
		printReport(c, &ingestion.Report{Fetch: result})
		return nil
	})
}

func classifyCommand(c *cli.Context) error {
	recompute := parseIDs(c.StringSlice("recompute"))
	return withPipeline(c, false, func(p *ingestion.Pipeline) error {
		result, err := p.RunClassify(c.Context, ingestion.NewRunID(), recompute...)
		if err != nil {
			return err
		}
		printReport(c, &ingestion.Report{Classify: result})
		return nil
	})
}

func indexCommand(c *cli.Context) error {
	return withPipeline(c, false, func(p *ingestion.Pipeline) error {
		result, err := p.RunIndex(c.Context, ingestion.NewRunID())
		if err != nil {
			return err
		}
		printReport(c, &ingestion.Report{Index: result})
		return nil
	})
}

func watchCommand(c *cli.Context) error {
	cfg := appConfig(c)
	interval := cfg.Pipeline.WatchInterval
	if c.IsSet("interval") {
		interval = c.Duration("interval")
	}
	if interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	return withPipeline(c, true, func(p *ingestion.Pipeline) error {
		fmt.Fprintf(c.App.ErrWriter, "Watching every %s, press Ctrl+C to stop\n", interval)
		return p.Watch(c.Context, interval, func(report *ingestion.Report, err error) {
			if err != nil {
				slog.Error("run failed", "err", err)
			}
			printReport(c, report)
		})
	})
}

func askCommand(c *cli.Context) error {
	cfg := appConfig(c)
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("a question is required")
	}
	k := cfg.Query.K
	if c.IsSet("k") {
		k = c.Int("k")
	}

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	asker, err := ws.NewAsker(query.WithK(k))
	if err != nil {
		return err
	}
	answer, err := asker.Ask(c.Context, question)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, answer.Text)
	if c.Bool("sources") {
		printSources(c, answer.Sources)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	ws, err := openWorkspace(appConfig(c))
	if err != nil {
		return err
	}
	defer ws.Close()

	st, err := ws.Status(c.Context)
	if err != nil {
		return err
	}
	renderStatus(c.App.Writer, st)
	return nil
}

func reembedCommand(c *cli.Context) error {
	cfg := appConfig(c)
	reembedConfig := &reembed.Config{
		BatchSize:      cfg.Pipeline.BatchSize,
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if c.IsSet("batch-size") {
		reembedConfig.BatchSize = c.Int("batch-size")
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	reembedder, err := ws.NewReembedder(reembedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Workspace: %s\n", cfg.DataDir)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

// parseIDs normalizes ids given as repeated flags or comma separated lists.
func parseIDs(values []string) []core.ID {
	var ids []core.ID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if id := core.NormalizeID(part); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func printReport(c *cli.Context, report *ingestion.Report) {
	if report == nil {
		return
	}
	w := bufio.NewWriter(c.App.Writer)
	defer w.Flush()
	if report.RunID != "" {
		fmt.Fprintf(w, "run %s\n", report.RunID)
	}
	if r := report.Fetch; r != nil {
		fmt.Fprintf(w, "fetch:    %d listed, %d new, %d failed\n", r.Total, len(r.Items), len(r.Failed))
	}
	if r := report.Classify; r != nil {
		fmt.Fprintf(w, "classify: %d rows, %d newly labelled, %d accepted\n", r.Total, r.Classified, r.Accepted)
	}
	if r := report.Index; r != nil {
		fmt.Fprintf(w, "index:    %d candidates, %d added\n", r.Candidates, r.Added)
	}
}

func printSources(c *cli.Context, results []*core.SearchResult) {
	fmt.Fprintln(c.App.Writer)
	for i, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: [%0.3f] %s %s\n", i+1, hit.Score,
			hit.Entry.Metadata[ingestion.MetaCompanyName], hit.Entry.DocId)
	}
}
