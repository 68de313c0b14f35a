package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fika-quiz/backend/internal/config"
	"github.com/fika-quiz/backend/internal/database"
	"github.com/fika-quiz/backend/internal/generator"
	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/questions"
	"gopkg.in/yaml.v3"
)

func main() {
	var (
		file       string
		replace    bool
		dryRun     bool
		flushCache bool

		draftChapter int
		draftTopic   string
		draftCount   int
	)
	flag.StringVar(&file, "file", "questions.yaml", "YAML question catalog to import, or to write with -draft-chapter")
	flag.BoolVar(&replace, "replace", false, "delete existing questions of every chapter in the file before inserting")
	flag.BoolVar(&dryRun, "dry-run", false, "validate the file without touching the database")
	flag.BoolVar(&flushCache, "flush-cache", true, "drop cached catalog reads from redis after importing")
	flag.IntVar(&draftChapter, "draft-chapter", 0, "draft questions for this chapter into -file instead of importing")
	flag.StringVar(&draftTopic, "draft-topic", "", "topic of the drafted chapter")
	flag.IntVar(&draftCount, "draft-count", 10, "number of questions to draft")
	flag.Parse()

	cfg := config.LoadStorage()
	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if draftChapter > 0 {
		if err := draft(ctx, cfg, log, file, draftChapter, draftTopic, draftCount); err != nil {
			log.Fatal("draft chapter", "chapter", draftChapter, "error", err)
		}
		return
	}

	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatal("read catalog", "file", file, "error", err)
	}

	catalog, err := questions.ParseCatalog(data)
	if err != nil {
		printValidation(err)
		log.Fatal("invalid catalog", "file", file, "error", err)
	}

	if dryRun {
		log.Info("catalog valid", "file", file, "questions", len(catalog.Questions))
		return
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("connect database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("run migrations", "error", err)
	}

	n, err := questions.NewStore(db).ReplaceChapters(ctx, catalog.Questions, replace)
	if err != nil {
		log.Fatal("import catalog", "error", err)
	}
	log.Info("catalog imported", "file", file, "questions", n, "replace", replace)

	if !flushCache {
		return
	}
	rdb, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn("skip cache flush, redis unavailable", "error", err)
		return
	}
	defer rdb.Close()

	if err := questions.NewRedisCache(rdb, cfg.CatalogCacheTTL).Flush(ctx); err != nil {
		log.Warn("flush catalog cache", "error", err)
		return
	}
	log.Info("catalog cache flushed")
}

// draft writes a model-drafted chapter to path for review. Nothing is
// imported until the file is run through the importer.
func draft(ctx context.Context, cfg *config.Config, log *logger.Logger, path string, chapter int, topic string, count int) error {
	if topic == "" {
		return errors.New("-draft-topic is required")
	}
	if !cfg.MockGenerator && cfg.AnthropicAPIKey == "" {
		return errors.New("ANTHROPIC_API_KEY is not set (or set MOCK_GENERATOR=true)")
	}

	gen := generator.NewGenerator(generator.Options{
		APIKey: cfg.AnthropicAPIKey,
		Model:  cfg.AnthropicModel,
		Mock:   cfg.MockGenerator,
	}, log)

	qs, notes, err := gen.DraftChapter(ctx, chapter, topic, count)
	if err != nil {
		printValidation(err)
		return err
	}
	for _, note := range notes {
		log.Warn("review note", "note", note)
	}

	out, err := yaml.Marshal(questions.CatalogFile{Questions: qs})
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	log.Info("draft written", "file", path, "questions", len(qs), "model", gen.ModelName())
	return nil
}

func printValidation(err error) {
	var verr *questions.ValidationError
	if errors.As(err, &verr) {
		for _, e := range verr.Errors {
			fmt.Fprintln(os.Stderr, "  "+e)
		}
	}
}
