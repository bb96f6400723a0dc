// Command logindexer consumes request logs from Kafka and bulk-indexes them
// into Elasticsearch.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"

	"github.com/foodiehub/ordering-api/config"
	"github.com/foodiehub/ordering-api/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(ctx, logger); err != nil {
		logger.Error("log indexer exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		GroupID:  cfg.Kafka.GroupID,
		Topic:    cfg.Kafka.LogTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.Elastic.Addresses})
	if err != nil {
		return fmt.Errorf("elasticsearch client: %w", err)
	}

	logger.Info("indexing request logs",
		"topic", cfg.Kafka.LogTopic, "group", cfg.Kafka.GroupID, "index", cfg.Elastic.Index)
	err = utils.RunLogIndexer(ctx, reader, utils.ElasticBulkIndexer{Client: es}, cfg.Elastic.Index, logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
