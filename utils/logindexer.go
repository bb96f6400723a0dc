package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"
)

// LogMessage mirrors the entries written by the logkafka middleware.
type LogMessage struct {
	Level     string            `json:"level"`
	Module    string            `json:"module"`
	Message   string            `json:"message"`
	TraceID   string            `json:"trace_id"`
	Env       string            `json:"env"`
	Timestamp time.Time         `json:"timestamp"`
	Extra     map[string]string `json:"extra"`
}

// MessageReader is the subset of *kafka.Reader the indexer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// BulkIndexer sends an NDJSON bulk body to the search backend.
type BulkIndexer interface {
	Bulk(ctx context.Context, index string, body io.Reader) error
}

const (
	logBatchSize    = 100
	logBatchTimeout = 5 * time.Second
)

// RunLogIndexer moves request logs from Kafka into the search index in batches.
// Offsets are committed only after a batch was indexed.
func RunLogIndexer(ctx context.Context, reader MessageReader, indexer BulkIndexer, index string, logger *slog.Logger) error {
	batch := make([]LogMessage, 0, logBatchSize)
	pending := make([]kafka.Message, 0, logBatchSize)

	flush := func(ctx context.Context) error {
		if len(pending) == 0 {
			return nil
		}
		if len(batch) > 0 {
			body, err := encodeBulk(batch)
			if err != nil {
				return err
			}
			if err := indexer.Bulk(ctx, index, body); err != nil {
				return fmt.Errorf("bulk index: %w", err)
			}
			logger.Info("log batch indexed", "count", len(batch))
		}
		if err := reader.CommitMessages(ctx, pending...); err != nil {
			return fmt.Errorf("commit offsets: %w", err)
		}
		batch = batch[:0]
		pending = pending[:0]
		return nil
	}

	for {
		fetchCtx, cancel := context.WithTimeout(ctx, logBatchTimeout)
		m, err := reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				flushCtx, cancel := context.WithTimeout(context.Background(), logBatchTimeout)
				defer cancel()
				if err := flush(flushCtx); err != nil {
					return errors.Join(ctx.Err(), err)
				}
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				if err := flush(ctx); err != nil {
					logger.Error("flush failed", "error", err)
				}
				continue
			}
			logger.Error("kafka read error", "error", err)
			continue
		}

		pending = append(pending, m)
		var msg LogMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			logger.Warn("skipping undecodable log entry", "offset", m.Offset, "error", err)
		} else {
			if msg.Timestamp.IsZero() {
				msg.Timestamp = m.Time
			}
			batch = append(batch, msg)
		}

		if len(pending) >= logBatchSize {
			if err := flush(ctx); err != nil {
				logger.Error("flush failed", "error", err)
			}
		}
	}
}

func encodeBulk(batch []LogMessage) (io.Reader, error) {
	var buf bytes.Buffer
	for _, msg := range batch {
		doc, err := json.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("marshal log entry: %w", err)
		}
		buf.WriteString("{\"index\":{}}\n")
		buf.Write(doc)
		buf.WriteByte('\n')
	}
	return &buf, nil
}

// ElasticBulkIndexer indexes through the Elasticsearch bulk API.
type ElasticBulkIndexer struct {
	Client *elasticsearch.Client
}

func (e ElasticBulkIndexer) Bulk(ctx context.Context, index string, body io.Reader) error {
	res, err := e.Client.Bulk(body, e.Client.Bulk.WithIndex(index), e.Client.Bulk.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch bulk: %s", res.Status())
	}
	return nil
}
