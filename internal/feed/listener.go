package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/nexus/paper-discovery-service/internal/catalog"
	"github.com/nexus/paper-discovery-service/internal/domain"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Catalog is the part of *catalog.Catalog the listener needs.
type Catalog interface {
	Apply(ctx context.Context, ev catalog.Event) (*domain.Paper, error)
}

// Listener consumes insert events and prepends the papers to the catalog.
type Listener struct {
	reader  messageReader
	catalog Catalog
	logger  zerolog.Logger
}

// NewListener creates a Listener reading cfg.Topic.
func NewListener(cfg Config, cat Catalog, logger zerolog.Logger) *Listener {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.topic(),
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     3 * time.Second,
		StartOffset: kafka.LastOffset,
	})
	return newListener(reader, cat, logger)
}

func newListener(r messageReader, cat Catalog, logger zerolog.Logger) *Listener {
	return &Listener{
		reader:  r,
		catalog: cat,
		logger:  logger.With().Str("component", "feed_listener").Logger(),
	}
}

// Run starts the listener loop. Blocks until context is cancelled or the
// reader is closed.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info().Msg("starting feed listener")

	for {
		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info().Msg("feed listener stopped via context cancellation")
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				l.logger.Info().Msg("feed reader closed")
				return nil
			}
			l.logger.Error().Err(err).Msg("failed to read message from Kafka")
			continue
		}

		l.logger.Debug().
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("received insert event")

		var event PaperInsertedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			l.logger.Error().Err(err).
				Str("raw_value", string(msg.Value)).
				Msg("failed to unmarshal insert event")
			continue
		}

		if err := l.handleInserted(ctx, event); err != nil {
			l.logger.Error().Err(err).Msg("failed to handle insert event")
		}
	}
}

// handleInserted prepends the event's paper unless the catalog already has
// it. Submissions made on this instance come back through the feed and are
// skipped by the catalog intake.
func (l *Listener) handleInserted(ctx context.Context, event PaperInsertedEvent) error {
	if event.EventType != EventInsert {
		l.logger.Debug().Str("event_type", event.EventType).Msg("ignoring feed event")
		return nil
	}
	if event.Paper == nil || event.Paper.ID == "" {
		return fmt.Errorf("insert event without paper ID")
	}

	added, err := l.catalog.Apply(ctx, catalog.PrependIfAbsentEvent(event.Paper))
	if err != nil {
		return fmt.Errorf("prepending %s: %w", event.Paper.ID, err)
	}
	if added == nil {
		l.logger.Debug().Str("paper_id", event.Paper.ID).Msg("paper already in catalog, skipping")
		return nil
	}

	l.logger.Info().
		Str("paper_id", added.ID).
		Str("title", added.Title).
		Msg("added paper from feed")
	return nil
}

// Close closes the Kafka reader.
func (l *Listener) Close() error {
	l.logger.Info().Msg("closing feed listener")
	return l.reader.Close()
}
