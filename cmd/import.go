/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jjudge-oj/fps-import/config"
	"github.com/jjudge-oj/fps-import/internal/apiclient"
	"github.com/jjudge-oj/fps-import/internal/db"
	"github.com/jjudge-oj/fps-import/internal/importer"
	"github.com/jjudge-oj/fps-import/internal/mq"
	"github.com/jjudge-oj/fps-import/internal/storage"
	"github.com/jjudge-oj/fps-import/internal/store"
	"github.com/jjudge-oj/fps-import/types"
)

var (
	importFile string
	strategy   string
	unscored   bool
	totalScore int
	repairMode bool
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an FPS document",
	Long: `Import an FPS document. Usage:

	fps-import import --file problems.xml --strategy store

The store strategy writes problems into the judge database directly; the
api strategy drives the judge's admin API. A malformed document aborts the
run, while per-problem failures are reported and skipped.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "FPS XML document to import")
	importCmd.Flags().StringVarP(&strategy, "strategy", "s", "store", "delivery strategy: store or api")
	importCmd.Flags().BoolVar(&unscored, "unscored", false, "import for single-verdict judging (all case scores zero)")
	importCmd.Flags().IntVar(&totalScore, "total-score", importer.DefaultTotalScore, "total score distributed across each problem's cases")
	importCmd.Flags().BoolVar(&repairMode, "repair", false, "repair previously imported problems instead of creating new ones")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.LoadConfig()

	file, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	opts := importer.Options{
		DataDir:    cfg.TestCaseDir,
		TotalScore: totalScore,
		Unscored:   unscored,
	}

	archive, err := buildArchiveStore(ctx, cfg)
	if err != nil {
		return err
	}
	opts.Archive = archive

	events, err := buildPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	if events != nil {
		defer events.Close()
		opts.Events = events
	}

	var stats types.ImportStats

	if repairMode {
		repo, closeDB, err := openRepository(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		stats, err = importer.New(repo, opts).Repair(ctx, file, repo)
		if err != nil {
			return err
		}
		printSummary(cmd, "repaired", stats)
		return nil
	}

	var deliverer importer.Deliverer
	switch strategy {
	case "store":
		repo, closeDB, err := openRepository(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		deliverer = repo
	case "api":
		deliverer = apiclient.New(cfg.JudgeAPI)
	default:
		return fmt.Errorf("unknown strategy %q (want store or api)", strategy)
	}

	stats, err = importer.New(deliverer, opts).Run(ctx, file)
	if err != nil {
		return err
	}
	printSummary(cmd, "imported", stats)
	return nil
}

func openRepository(ctx context.Context, cfg config.Config) (*store.ProblemRepository, func(), error) {
	database, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	closeDB := func() {
		if err := database.Close(); err != nil {
			log.WithError(err).Warn("closing database")
		}
	}
	return store.NewProblemRepository(database), closeDB, nil
}

func buildArchiveStore(ctx context.Context, cfg config.Config) (*storage.ArchiveStore, error) {
	var backend storage.Backend
	switch cfg.Storage.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("connect minio: %w", err)
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("connect gcs: %w", err)
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	archive := storage.NewArchiveStore(backend)
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	return archive, nil
}

func buildPublisher(ctx context.Context, cfg config.Config) (*mq.Publisher, error) {
	var backend mq.Backend
	switch cfg.Events.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		backend = client
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
	return mq.NewPublisher(backend, cfg.Events.Channel), nil
}

func printSummary(cmd *cobra.Command, verb string, stats types.ImportStats) {
	cmd.Printf("%s %d of %d problems (%d failed, %d skipped)\n",
		verb, stats.Succeeded, stats.Total, stats.Failed, stats.Skipped)
	for _, failure := range stats.Failures {
		cmd.Printf("  item %d (%s): %s\n", failure.Ordinal, failure.Title, failure.Reason)
	}
}
