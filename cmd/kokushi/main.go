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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/kokushi"
	"github.com/poiesic/kokushi/config"
	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/corpus"
	"github.com/poiesic/kokushi/ingestion"
	"github.com/poiesic/kokushi/search"
	"github.com/poiesic/kokushi/server"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory",
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "kokushi",
		Usage: "Search past national medical licensing exam questions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import the question and synonym assets into the database",
				Action: importCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:    "questions",
						Aliases: []string{"q"},
						Usage:   "Path to questions.json",
					},
					&cli.StringFlag{
						Name:    "synonyms",
						Aliases: []string{"s"},
						Usage:   "Path to synonyms.json",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of questions written per transaction",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Import even if the stored corpus is unchanged",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report progress on stderr",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search questions by identifier or keywords",
				ArgsUsage: "[query]",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntSliceFlag{
						Name:  "year",
						Usage: "Restrict to exam years",
					},
					&cli.StringSliceFlag{
						Name:  "session",
						Usage: "Restrict to sessions (A-D)",
					},
					&cli.StringSliceFlag{
						Name:  "category",
						Usage: "Restrict to categories",
					},
					&cli.StringSliceFlag{
						Name:  "subcategory",
						Usage: "Restrict to subcategories",
					},
					&cli.BoolFlag{
						Name:  "required",
						Usage: "Only required questions",
					},
					&cli.StringFlag{
						Name:  "image",
						Usage: "true for questions with figures, false for questions without",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results to print (0 prints all)",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Show a single question",
				ArgsUsage: "<id>",
				Action:    showCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the question as JSON",
					},
				},
			},
			{
				Name:      "categories",
				Usage:     "List categories, or the subcategories of one category",
				ArgsUsage: "[category]",
				Action:    categoriesCommand,
				Flags: []cli.Flag{
					dbFlag(),
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the JSON API",
				Action: serveCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Address to listen on",
					},
				},
			},
		},
	}
}

// loadConfig reads the --config file, if any, and applies command line
// overrides on top of it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("questions") {
		cfg.QuestionsPath = c.String("questions")
	}
	if c.IsSet("synonyms") {
		cfg.SynonymsPath = c.String("synonyms")
	}
	if c.IsSet("batch-size") {
		cfg.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("listen") {
		cfg.ListenAddr = c.String("listen")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func searchOptions(cfg *config.Config) []search.Option {
	opts := []search.Option{
		search.WithParallelThreshold(cfg.ParallelThreshold),
		search.WithCache(cfg.CacheEntries),
	}
	if cfg.PoolSize > 0 {
		opts = append(opts, search.WithPoolSize(cfg.PoolSize))
	}
	return opts
}

func importCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.QuestionsPath == "" {
		return fmt.Errorf("questions path is required")
	}

	loaded, groups, err := corpus.LoadFiles(ctx, cfg.QuestionsPath, cfg.SynonymsPath)
	if err != nil {
		return fmt.Errorf("failed to load assets: %w", err)
	}

	db, err := kokushi.NewDatabase(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	opts := []ingestion.Option{ingestion.WithBatchSize(cfg.BatchSize)}
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithProgress(os.Stderr))
	}
	importer, err := db.NewImporter(opts...)
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}
	defer importer.Release()

	report, err := importer.Import(ctx, loaded, groups, c.Bool("force"))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	out := c.App.Writer
	if report.Skipped {
		fmt.Fprintf(out, "Corpus unchanged (%016x), nothing imported\n", report.Fingerprint)
		return nil
	}
	fmt.Fprintf(out, "Imported %d questions (%d dropped, %d removed) and %d synonym groups in %s\n",
		report.Written, report.Dropped, report.Deleted, report.SynonymGroups, report.Elapsed.Round(time.Millisecond))
	return nil
}

// openCorpus opens the database and builds a searcher over the imported corpus.
func openCorpus(c *cli.Context) (*search.Searcher, *corpus.Corpus, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := kokushi.NewDatabase(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	searcher, loaded, err := db.NewSearcher(c.Context, searchOptions(cfg)...)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	// The corpus lives in memory now; the database is not needed any more.
	if err := db.Close(); err != nil {
		searcher.Close()
		return nil, nil, nil, err
	}
	return searcher, loaded, searcher.Close, nil
}

func buildQuery(c *cli.Context) (search.Query, error) {
	query := search.Query{
		Text:          strings.Join(c.Args().Slice(), " "),
		Years:         c.IntSlice("year"),
		Categories:    c.StringSlice("category"),
		Subcategories: c.StringSlice("subcategory"),
		RequiredOnly:  c.Bool("required"),
	}
	for _, v := range c.StringSlice("session") {
		session, ok := core.ParseSession(v)
		if !ok {
			return search.Query{}, fmt.Errorf("invalid session %q: must be one of A, B, C, D", v)
		}
		query.Sessions = append(query.Sessions, session)
	}
	if v := c.String("image"); v != "" {
		hasImage, err := strconv.ParseBool(v)
		if err != nil {
			return search.Query{}, fmt.Errorf("invalid image filter %q: must be true or false", v)
		}
		query.HasImage = &hasImage
	}
	return query, nil
}

func searchCommand(c *cli.Context) error {
	query, err := buildQuery(c)
	if err != nil {
		return err
	}

	searcher, _, closeFn, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer closeFn()

	results := searcher.Search(query)
	slog.Debug("search finished", "query", query.Text, "results", len(results))

	total := len(results)
	if limit := c.Int("limit"); limit > 0 && limit < total {
		results = results[:limit]
	}

	out := c.App.Writer
	if c.Bool("json") {
		return writeJSON(out, results)
	}

	fmt.Fprintf(out, "Found %d questions\n", total)
	for _, q := range results {
		fmt.Fprintf(out, "%-8s %s\n", q.ID, summary(q))
	}
	if len(results) < total {
		fmt.Fprintf(out, "... %d more\n", total-len(results))
	}
	return nil
}

func showCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one question id")
	}

	_, loaded, closeFn, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer closeFn()

	q, ok := loaded.Get(c.Args().First())
	if !ok {
		return fmt.Errorf("question %q not found", c.Args().First())
	}

	out := c.App.Writer
	if c.Bool("json") {
		return writeJSON(out, q)
	}

	fmt.Fprintf(out, "%s (%d回 %s問題 %d)\n", q.ID, q.Year, q.Session, q.Number)
	if q.Category != "" {
		fmt.Fprintf(out, "分野: %s", q.Category)
		if q.Subcategory != "" {
			fmt.Fprintf(out, " / %s", q.Subcategory)
		}
		fmt.Fprintln(out)
	}
	if core.IsRequired(q.Year, q.Session, q.Number) {
		fmt.Fprintln(out, "必修")
	}
	fmt.Fprintf(out, "\n%s\n\n", q.QuestionText)

	correct := q.CorrectChoices()
	for _, key := range q.ChoiceKeys() {
		mark := " "
		if slices.Contains(correct, key) {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s. %s\n", mark, key, q.Choices[key])
	}

	if q.IsExcluded {
		fmt.Fprintln(out, "\n採点除外")
	} else {
		fmt.Fprintf(out, "\n正解: %s\n", q.Answer)
	}
	for _, ref := range q.FigureRefs {
		fmt.Fprintf(out, "図: %s\n", ref)
	}
	for _, img := range q.Images {
		fmt.Fprintf(out, "画像: %s\n", img)
	}
	if q.Explanation != "" {
		fmt.Fprintf(out, "\n%s\n", q.Explanation)
	}
	return nil
}

func categoriesCommand(c *cli.Context) error {
	_, loaded, closeFn, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer closeFn()

	var categories []corpus.Category
	if c.NArg() > 0 {
		categories = loaded.Subcategories(c.Args().First())
	} else {
		categories = loaded.Categories()
	}

	out := c.App.Writer
	for _, cat := range categories {
		fmt.Fprintf(out, "%5d  %s\n", cat.Count, cat.Name)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	searcher, loaded, closeFn, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer closeFn()

	srv, err := server.New(loaded, searcher)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// summary is the one-line form of a question used in search listings.
func summary(q *core.Question) string {
	const maxRunes = 40
	text := []rune(strings.Join(strings.Fields(q.QuestionText), " "))
	if len(text) > maxRunes {
		text = append(text[:maxRunes], '…')
	}
	if q.Category == "" {
		return string(text)
	}
	return "[" + q.Category + "] " + string(text)
}

func setupLogger(c *cli.Context) error {
	levelStr := c.String("log-level")

	// The config file decides when the flag was left alone.
	if !c.IsSet("log-level") && c.String("config") != "" {
		cfg, err := config.LoadFile(c.String("config"))
		if err != nil {
			return err
		}
		levelStr = cfg.LogLevel
	}

	level, err := config.ParseLogLevel(levelStr)
	if err != nil {
		return err
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
