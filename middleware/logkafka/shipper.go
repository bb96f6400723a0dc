// Package logkafka ships structured request logs to a Kafka topic.
package logkafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the shipper uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type LogEntry struct {
	Level     string            `json:"level"`
	Module    string            `json:"module"`
	Message   string            `json:"message"`
	TraceID   string            `json:"trace_id"`
	Env       string            `json:"env"`
	Timestamp string            `json:"timestamp"`
	Extra     map[string]string `json:"extra"`
}

// Shipper writes entries to Kafka. A Shipper with a nil writer only logs locally.
type Shipper struct {
	w      MessageWriter
	env    string
	logger *slog.Logger
}

// NewWriter returns an async writer; delivery errors surface through the logger.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		Async:    true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				logger.Warn("ship request logs", "count", len(msgs), "error", err)
			}
		},
	}
}

func NewShipper(w MessageWriter, env string, logger *slog.Logger) *Shipper {
	return &Shipper{w: w, env: env, logger: logger}
}

// Ship logs the entry locally and forwards it to Kafka when a writer is set.
func (s *Shipper) Ship(ctx context.Context, e LogEntry) {
	if e.Env == "" {
		e.Env = s.env
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	attrs := make([]any, 0, 2*len(e.Extra)+2)
	attrs = append(attrs, "trace_id", e.TraceID)
	for k, v := range e.Extra {
		attrs = append(attrs, k, v)
	}
	s.logger.Log(ctx, levelOf(e.Level), e.Message, attrs...)

	if s.w == nil {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := s.w.WriteMessages(ctx, kafka.Message{Key: []byte(e.TraceID), Value: b, Time: time.Now()}); err != nil {
		s.logger.Warn("ship request log", "error", err)
	}
}

func (s *Shipper) Close() error {
	if s.w == nil {
		return nil
	}
	return s.w.Close()
}

func levelOf(l string) slog.Level {
	switch l {
	case "error":
		return slog.LevelError
	case "warn":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
